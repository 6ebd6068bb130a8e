// Package resolve finds or creates canonical high-school identities for
// report rows. Two strategies exist: exact match on the source-system
// canonical name (preferred, unambiguous) and a fuzzy (name, city) match
// for legacy feeds that lack a canonical token.
package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/store"
)

// trailingDigits matches a numeric suffix at the end of a canonical name.
var trailingDigits = regexp.MustCompile(`^(.*?)(\d+)$`)

// NormalizeCanonical strips leading zeros from a trailing numeric suffix
// so that school codes like "Lincoln 007" and "Lincoln 7" resolve to the
// same identity. It must be applied at both creation and lookup time.
func NormalizeCanonical(name string) string {
	name = strings.TrimSpace(name)
	m := trailingDigits.FindStringSubmatch(name)
	if m == nil {
		return name
	}
	digits := strings.TrimLeft(m[2], "0")
	if digits == "" {
		digits = "0"
	}
	return m[1] + digits
}

// Outcome classifies a fuzzy resolution attempt. Ambiguous is surfaced
// distinctly from None: both make the caller create a new row, but an
// ambiguous match is the leading cause of duplicate identities and is
// worth telling apart in logs.
type Outcome int

const (
	Found Outcome = iota
	None
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case None:
		return "none"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Match is the result of a fuzzy (name, city) resolution.
type Match struct {
	Outcome Outcome
	School  store.HighSchool
}

// Locality holds the geography fields derived for a new high school.
type Locality struct {
	County  string
	State   string
	Country string
	Public  bool
}

// DefaultLocality is the fallback for feeds that carry no scope (gender,
// GPA): the reported region is kept as the county and the school defaults
// to a public US record, matching the source system's model defaults.
func DefaultLocality(reported string) Locality {
	return Locality{
		County:  strings.TrimSpace(reported),
		Country: "United States",
		Public:  true,
	}
}

// DeriveLocality maps a report scope plus the row's reported region value
// onto the mutually exclusive county/state/country fields. ScopeAll (and
// anything unrecognized) is invalid for record creation.
func DeriveLocality(scope classify.Scope, reported string) (Locality, error) {
	reported = strings.TrimSpace(reported)
	switch scope {
	case classify.ScopeCAPublic, classify.ScopeCAPrivate:
		return Locality{
			County:  reported,
			State:   "CA",
			Country: "United States",
			Public:  scope == classify.ScopeCAPublic,
		}, nil
	case classify.ScopeNonCA:
		return Locality{
			State:   reported,
			Country: "United States",
		}, nil
	case classify.ScopeForeign:
		return Locality{
			Country: reported,
		}, nil
	default:
		return Locality{}, fmt.Errorf("invalid high school type: %s", scope)
	}
}

// Resolver resolves report rows to high-school identities through a Store.
type Resolver struct {
	store store.Store
}

// New creates a resolver backed by the given store.
func New(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// ByCanonicalName looks up a high school by normalized canonical name.
func (r *Resolver) ByCanonicalName(ctx context.Context, canonical string) (store.HighSchool, bool, error) {
	return r.store.GetHighSchoolByCanonicalName(ctx, NormalizeCanonical(canonical))
}

// FindOrCreateCanonical resolves a high school by canonical name,
// creating it on first sighting with the given locality. Later files with
// the same canonical name never update the row: first writer wins.
func (r *Resolver) FindOrCreateCanonical(ctx context.Context, canonical, name, city string, loc Locality) (store.HighSchool, error) {
	normalized := NormalizeCanonical(canonical)
	if normalized == "" {
		return store.HighSchool{}, fmt.Errorf("empty canonical school name")
	}

	hs, found, err := r.store.GetHighSchoolByCanonicalName(ctx, normalized)
	if err != nil {
		return store.HighSchool{}, err
	}
	if found {
		return hs, nil
	}

	hs = store.HighSchool{
		CanonicalName: normalized,
		Name:          strings.TrimSpace(name),
		City:          strings.TrimSpace(city),
		County:        loc.County,
		State:         loc.State,
		Country:       loc.Country,
		Public:        loc.Public,
	}
	id, err := r.store.CreateHighSchool(ctx, hs)
	if err != nil {
		return store.HighSchool{}, err
	}
	hs.ID = id
	return hs, nil
}

// Create inserts a new high school without a canonical token, used by
// legacy feeds after a None or Ambiguous fuzzy match.
func (r *Resolver) Create(ctx context.Context, name, city string, loc Locality) (store.HighSchool, error) {
	hs := store.HighSchool{
		Name:    strings.TrimSpace(name),
		City:    strings.TrimSpace(city),
		County:  loc.County,
		State:   loc.State,
		Country: loc.Country,
		Public:  loc.Public,
	}
	id, err := r.store.CreateHighSchool(ctx, hs)
	if err != nil {
		return store.HighSchool{}, err
	}
	hs.ID = id
	return hs, nil
}

// ByNameAndCity resolves a high school for legacy feeds without a
// canonical token. The name match is a case-insensitive substring search;
// multiple candidates are disambiguated by exact (case-insensitive) city.
func (r *Resolver) ByNameAndCity(ctx context.Context, name, city string) (Match, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Match{Outcome: None}, nil
	}

	candidates, err := r.store.SearchHighSchoolsByName(ctx, name)
	if err != nil {
		return Match{}, err
	}

	switch len(candidates) {
	case 0:
		return Match{Outcome: None}, nil
	case 1:
		return Match{Outcome: Found, School: candidates[0]}, nil
	}

	var cityMatches []store.HighSchool
	for _, hs := range candidates {
		if strings.EqualFold(strings.TrimSpace(hs.City), strings.TrimSpace(city)) {
			cityMatches = append(cityMatches, hs)
		}
	}
	if len(cityMatches) == 1 {
		return Match{Outcome: Found, School: cityMatches[0]}, nil
	}
	return Match{Outcome: Ambiguous}, nil
}
