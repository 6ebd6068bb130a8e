package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema if it does not exist yet.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS campuses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	location TEXT
);

CREATE TABLE IF NOT EXISTS high_schools (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	canonical_name TEXT,
	name TEXT NOT NULL,
	city TEXT,
	county TEXT,
	state TEXT,
	country TEXT DEFAULT 'United States',
	zip_code TEXT,
	is_public INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_high_schools_canonical ON high_schools(canonical_name);
CREATE INDEX IF NOT EXISTS idx_high_schools_name ON high_schools(name);

CREATE TABLE IF NOT EXISTS file_ledger (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT UNIQUE NOT NULL,
	category TEXT,
	scope TEXT,
	campus_id INTEGER,
	year INTEGER,
	processed INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(campus_id) REFERENCES campuses(id)
);

CREATE TABLE IF NOT EXISTS ethnicity_facts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	high_school_id INTEGER NOT NULL,
	campus_id INTEGER NOT NULL,
	stage TEXT NOT NULL,
	year INTEGER,
	ethnicity TEXT NOT NULL,
	count INTEGER NOT NULL,
	FOREIGN KEY(high_school_id) REFERENCES high_schools(id),
	FOREIGN KEY(campus_id) REFERENCES campuses(id)
);

CREATE TABLE IF NOT EXISTS gender_facts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	high_school_id INTEGER NOT NULL,
	campus_id INTEGER NOT NULL,
	stage TEXT NOT NULL,
	year INTEGER,
	total_applicants INTEGER NOT NULL,
	female_applicants INTEGER NOT NULL,
	male_applicants INTEGER NOT NULL,
	other_applicants INTEGER NOT NULL,
	unknown_gender INTEGER NOT NULL,
	FOREIGN KEY(high_school_id) REFERENCES high_schools(id),
	FOREIGN KEY(campus_id) REFERENCES campuses(id)
);

CREATE TABLE IF NOT EXISTS gpa_facts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	high_school_id INTEGER NOT NULL,
	campus_id INTEGER NOT NULL,
	stage TEXT NOT NULL,
	year INTEGER,
	mean_gpa REAL NOT NULL,
	FOREIGN KEY(high_school_id) REFERENCES high_schools(id),
	FOREIGN KEY(campus_id) REFERENCES campuses(id)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SeedCampuses inserts any campus from the reference set that is not
// already present. Existing rows are never updated.
func (s *sqliteStore) SeedCampuses(ctx context.Context, campuses []store.Campus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO campuses (name, location) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range campuses {
		if c.Name == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, c.Name, c.Location); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListCampuses returns all campuses ordered by name
func (s *sqliteStore) ListCampuses(ctx context.Context) ([]store.Campus, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, COALESCE(location, '') FROM campuses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campuses []store.Campus
	for rows.Next() {
		var c store.Campus
		if err := rows.Scan(&c.ID, &c.Name, &c.Location); err != nil {
			return nil, err
		}
		campuses = append(campuses, c)
	}
	return campuses, rows.Err()
}

// GetCampusByName retrieves a campus by its canonical name
func (s *sqliteStore) GetCampusByName(ctx context.Context, name string) (store.Campus, bool, error) {
	var c store.Campus
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(location, '') FROM campuses WHERE name = ?`, name,
	).Scan(&c.ID, &c.Name, &c.Location)
	if err == sql.ErrNoRows {
		return store.Campus{}, false, nil
	}
	if err != nil {
		return store.Campus{}, false, err
	}
	return c, true, nil
}

const highSchoolCols = `id, COALESCE(canonical_name, ''), name, COALESCE(city, ''),
	COALESCE(county, ''), COALESCE(state, ''), COALESCE(country, ''), COALESCE(zip_code, ''), is_public`

func scanHighSchool(row interface{ Scan(...any) error }) (store.HighSchool, error) {
	var hs store.HighSchool
	var public int
	err := row.Scan(&hs.ID, &hs.CanonicalName, &hs.Name, &hs.City,
		&hs.County, &hs.State, &hs.Country, &hs.ZipCode, &public)
	hs.Public = public != 0
	return hs, err
}

// GetHighSchoolByCanonicalName retrieves a high school by its canonical
// source-system name. The caller normalizes the name before lookup.
func (s *sqliteStore) GetHighSchoolByCanonicalName(ctx context.Context, canonical string) (store.HighSchool, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+highSchoolCols+` FROM high_schools WHERE canonical_name = ?`, canonical)
	hs, err := scanHighSchool(row)
	if err == sql.ErrNoRows {
		return store.HighSchool{}, false, nil
	}
	if err != nil {
		return store.HighSchool{}, false, err
	}
	return hs, true, nil
}

// SearchHighSchoolsByName performs a case-insensitive substring search on
// the display name.
func (s *sqliteStore) SearchHighSchoolsByName(ctx context.Context, name string) ([]store.HighSchool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+highSchoolCols+` FROM high_schools WHERE name LIKE '%' || ? || '%' ORDER BY id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schools []store.HighSchool
	for rows.Next() {
		hs, err := scanHighSchool(rows)
		if err != nil {
			return nil, err
		}
		schools = append(schools, hs)
	}
	return schools, rows.Err()
}

// CreateHighSchool inserts a new high school and returns its id
func (s *sqliteStore) CreateHighSchool(ctx context.Context, hs store.HighSchool) (int64, error) {
	public := 0
	if hs.Public {
		public = 1
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO high_schools (canonical_name, name, city, county, state, country, zip_code, is_public)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`,
		nullIfEmpty(hs.CanonicalName), hs.Name, hs.City, hs.County, hs.State, hs.Country, hs.ZipCode, public,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create high school %q: %w", hs.Name, err)
	}
	return id, nil
}

// UpsertLedgerEntry records a discovered file. Crawling is idempotent: an
// entry that already exists for the path is left untouched and created is
// false.
func (s *sqliteStore) UpsertLedgerEntry(ctx context.Context, e store.FileLedgerEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO file_ledger (path, category, scope, campus_id, year, processed)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO NOTHING`,
		e.Path, nullIfEmpty(string(e.Category)), string(e.Scope),
		nullIfZero(e.CampusID), nullIfZero(int64(e.Year)), boolToInt(e.Processed))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetLedgerEntry retrieves a ledger entry by absolute path
func (s *sqliteStore) GetLedgerEntry(ctx context.Context, path string) (store.FileLedgerEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, path, COALESCE(category, ''), COALESCE(scope, ''), COALESCE(campus_id, 0), COALESCE(year, 0), processed
FROM file_ledger WHERE path = ?`, path)
	e, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return store.FileLedgerEntry{}, false, nil
	}
	if err != nil {
		return store.FileLedgerEntry{}, false, err
	}
	return e, true, nil
}

// ListPendingFiles returns ledger entries not yet processed, ordered by path
func (s *sqliteStore) ListPendingFiles(ctx context.Context) ([]store.FileLedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, path, COALESCE(category, ''), COALESCE(scope, ''), COALESCE(campus_id, 0), COALESCE(year, 0), processed
FROM file_ledger WHERE processed = 0 ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []store.FileLedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanLedgerEntry(row interface{ Scan(...any) error }) (store.FileLedgerEntry, error) {
	var e store.FileLedgerEntry
	var category, scope string
	var processed int
	err := row.Scan(&e.ID, &e.Path, &category, &scope, &e.CampusID, &e.Year, &processed)
	e.Category = classify.Category(category)
	e.Scope = classify.Scope(scope)
	e.Processed = processed != 0
	return e, err
}

// MarkProcessed flips the processed flag for a ledger entry
func (s *sqliteStore) MarkProcessed(ctx context.Context, path string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE file_ledger SET processed = 1 WHERE path = ?`, path)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no ledger entry for %s", path)
	}
	return nil
}

// BulkInsertEthnicityFacts inserts all facts in one transaction. Either
// every record lands or none do.
func (s *sqliteStore) BulkInsertEthnicityFacts(ctx context.Context, facts []store.EthnicityFact) error {
	if len(facts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO ethnicity_facts (high_school_id, campus_id, stage, year, ethnicity, count)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range facts {
		if _, err := stmt.ExecContext(ctx, f.HighSchoolID, f.CampusID, string(f.Stage), nullIfZero(int64(f.Year)), f.Ethnicity, f.Count); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// BulkInsertGenderFacts inserts all facts in one transaction
func (s *sqliteStore) BulkInsertGenderFacts(ctx context.Context, facts []store.GenderFact) error {
	if len(facts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO gender_facts (high_school_id, campus_id, stage, year, total_applicants, female_applicants, male_applicants, other_applicants, unknown_gender)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range facts {
		if _, err := stmt.ExecContext(ctx, f.HighSchoolID, f.CampusID, string(f.Stage), nullIfZero(int64(f.Year)), f.Total, f.Female, f.Male, f.Other, f.Unknown); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// BulkInsertGPAFacts inserts all facts in one transaction
func (s *sqliteStore) BulkInsertGPAFacts(ctx context.Context, facts []store.GPAFact) error {
	if len(facts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO gpa_facts (high_school_id, campus_id, stage, year, mean_gpa)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range facts {
		if _, err := stmt.ExecContext(ctx, f.HighSchoolID, f.CampusID, string(f.Stage), nullIfZero(int64(f.Year)), f.MeanGPA); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
