package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ucdata/funnel/pkg/funnel/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu           sync.RWMutex
	nextCampusID int64
	nextSchoolID int64
	nextLedgerID int64

	campuses  map[string]store.Campus
	schools   []store.HighSchool
	ledger    map[string]store.FileLedgerEntry
	Ethnicity []store.EthnicityFact
	Gender    []store.GenderFact
	GPA       []store.GPAFact
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		nextCampusID: 1,
		nextSchoolID: 1,
		nextLedgerID: 1,
		campuses:     make(map[string]store.Campus),
		ledger:       make(map[string]store.FileLedgerEntry),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SeedCampuses inserts campuses that are not already present, keyed by name.
func (s *Store) SeedCampuses(ctx context.Context, campuses []store.Campus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range campuses {
		if c.Name == "" {
			continue
		}
		if _, ok := s.campuses[c.Name]; ok {
			continue
		}
		c.ID = s.nextCampusID
		s.nextCampusID++
		s.campuses[c.Name] = c
	}
	return nil
}

// ListCampuses returns all campuses ordered by name.
func (s *Store) ListCampuses(ctx context.Context) ([]store.Campus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Campus, 0, len(s.campuses))
	for _, c := range s.campuses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetCampusByName returns a campus by name.
func (s *Store) GetCampusByName(ctx context.Context, name string) (store.Campus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campuses[name]
	return c, ok, nil
}

// GetHighSchoolByCanonicalName returns a high school by canonical name.
func (s *Store) GetHighSchoolByCanonicalName(ctx context.Context, canonical string) (store.HighSchool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if canonical == "" {
		return store.HighSchool{}, false, nil
	}
	for _, hs := range s.schools {
		if hs.CanonicalName == canonical {
			return hs, true, nil
		}
	}
	return store.HighSchool{}, false, nil
}

// SearchHighSchoolsByName performs a case-insensitive substring search on
// the display name.
func (s *Store) SearchHighSchoolsByName(ctx context.Context, name string) ([]store.HighSchool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(name)
	var out []store.HighSchool
	for _, hs := range s.schools {
		if strings.Contains(strings.ToLower(hs.Name), needle) {
			out = append(out, hs)
		}
	}
	return out, nil
}

// CreateHighSchool inserts a new high school and returns its id.
func (s *Store) CreateHighSchool(ctx context.Context, hs store.HighSchool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hs.ID = s.nextSchoolID
	s.nextSchoolID++
	s.schools = append(s.schools, hs)
	return hs.ID, nil
}

// UpsertLedgerEntry records a discovered file, skipping existing paths.
func (s *Store) UpsertLedgerEntry(ctx context.Context, e store.FileLedgerEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ledger[e.Path]; ok {
		return false, nil
	}
	e.ID = s.nextLedgerID
	s.nextLedgerID++
	s.ledger[e.Path] = e
	return true, nil
}

// GetLedgerEntry returns a ledger entry by path.
func (s *Store) GetLedgerEntry(ctx context.Context, path string) (store.FileLedgerEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.ledger[path]
	return e, ok, nil
}

// ListPendingFiles returns unprocessed ledger entries ordered by path.
func (s *Store) ListPendingFiles(ctx context.Context) ([]store.FileLedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.FileLedgerEntry
	for _, e := range s.ledger {
		if !e.Processed {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// MarkProcessed flips the processed flag for a ledger entry.
func (s *Store) MarkProcessed(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.ledger[path]
	if !ok {
		return fmt.Errorf("no ledger entry for %s", path)
	}
	e.Processed = true
	s.ledger[path] = e
	return nil
}

// BulkInsertEthnicityFacts appends all facts atomically.
func (s *Store) BulkInsertEthnicityFacts(ctx context.Context, facts []store.EthnicityFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Ethnicity = append(s.Ethnicity, facts...)
	return nil
}

// BulkInsertGenderFacts appends all facts atomically.
func (s *Store) BulkInsertGenderFacts(ctx context.Context, facts []store.GenderFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Gender = append(s.Gender, facts...)
	return nil
}

// BulkInsertGPAFacts appends all facts atomically.
func (s *Store) BulkInsertGPAFacts(ctx context.Context, facts []store.GPAFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.GPA = append(s.GPA, facts...)
	return nil
}

// HighSchools returns a copy of all created high schools, for assertions.
func (s *Store) HighSchools() []store.HighSchool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.HighSchool, len(s.schools))
	copy(out, s.schools)
	return out
}
