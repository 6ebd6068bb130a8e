package classify

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Category is the report category inferred from a filename.
type Category string

const (
	CategoryEthnicity Category = "ETHNICITY"
	CategoryGender    Category = "GENDER"
	CategoryGPA       Category = "GPA"
)

// Scope is the school-type partition of a report.
type Scope string

const (
	ScopeCAPublic  Scope = "CA_PUBLIC"
	ScopeCAPrivate Scope = "CA_PRIVATE"
	ScopeNonCA     Scope = "NON_CA"
	ScopeForeign   Scope = "FOREIGN"
	ScopeAll       Scope = "ALL"
)

// Result holds the fields derived from a filename. Fields are independent:
// an unmatched category or campus is left empty, an unmatched year is zero.
// Scope defaults to ScopeAll, not to an "unknown" value.
type Result struct {
	Category Category
	Scope    Scope
	Campus   string
	Year     int
}

// CampusKeyword maps a filename keyword to a canonical campus name.
// The table is ordered; the first matching keyword wins.
type CampusKeyword struct {
	Keyword string
	Campus  string
}

// DefaultCampusKeywords returns the built-in keyword table. Abbreviations
// sort before plain city names so that e.g. "UCSB" is tried before the
// substring-prone "LA".
func DefaultCampusKeywords() []CampusKeyword {
	return []CampusKeyword{
		{"UCLA", "Los Angeles"},
		{"UCSD", "San Diego"},
		{"UCSB", "Santa Barbara"},
		{"UCSC", "Santa Cruz"},
		{"UCR", "Riverside"},
		{"UCI", "Irvine"},
		{"UCD", "Davis"},
		{"UCB", "Berkeley"},
		{"Berkeley", "Berkeley"},
		{"Davis", "Davis"},
		{"Irvine", "Irvine"},
		{"Los Angeles", "Los Angeles"},
		{"Merced", "Merced"},
		{"Riverside", "Riverside"},
		{"San Diego", "San Diego"},
		{"San Francisco", "San Francisco"},
		{"Santa Barbara", "Santa Barbara"},
		{"Santa Cruz", "Santa Cruz"},
		{"LA", "Los Angeles"},
	}
}

// categoryKeywords is ordered; the first matching keyword wins.
var categoryKeywords = []struct {
	keyword  string
	category Category
}{
	{"Eth", CategoryEthnicity},
	{"GPA", CategoryGPA},
	{"Gdr", CategoryGender},
}

// scopeKeywords is ordered; the first matching keyword wins. Anything
// unmatched falls through to ScopeAll.
var scopeKeywords = []struct {
	keyword string
	scope   Scope
}{
	{"CA Public", ScopeCAPublic},
	{"CA Private", ScopeCAPrivate},
	{"Foreign", ScopeForeign},
	{"non-CA", ScopeNonCA},
}

// yearPattern matches an exactly-four-digit numeral immediately preceding
// the file extension. Longer trailing numerals are not years.
var yearPattern = regexp.MustCompile(`(?:^|\D)(\d{4})\.[^.]*$`)

// Classifier derives report metadata from filenames. It is a pure keyword
// matcher and never returns an error: unclassifiable fields are absent.
type Classifier struct {
	campuses []CampusKeyword
}

// New creates a classifier with the given campus keyword table. A nil or
// empty table falls back to the built-in one.
func New(campuses []CampusKeyword) *Classifier {
	if len(campuses) == 0 {
		campuses = DefaultCampusKeywords()
	}
	return &Classifier{campuses: campuses}
}

// Classify derives category, scope, campus and year from a file name or
// path. Only the base name is inspected.
func (c *Classifier) Classify(name string) Result {
	base := filepath.Base(name)

	res := Result{Scope: ScopeAll}

	for _, ck := range categoryKeywords {
		if strings.Contains(base, ck.keyword) {
			res.Category = ck.category
			break
		}
	}

	for _, sk := range scopeKeywords {
		if strings.Contains(base, sk.keyword) {
			res.Scope = sk.scope
			break
		}
	}

	for _, campus := range c.campuses {
		if strings.Contains(base, campus.Keyword) {
			res.Campus = campus.Campus
			break
		}
	}

	if m := yearPattern.FindStringSubmatch(base); m != nil {
		year, err := strconv.Atoi(m[1])
		if err == nil {
			res.Year = year
		}
	}

	return res
}
