package store

import (
	"context"
	"strings"

	"github.com/ucdata/funnel/pkg/funnel/classify"
)

// Store is the persistence interface the ingestion pipeline works against
type Store interface {
	Close() error

	// Campuses (fixed reference set, seeded once)
	SeedCampuses(ctx context.Context, campuses []Campus) error
	ListCampuses(ctx context.Context) ([]Campus, error)
	GetCampusByName(ctx context.Context, name string) (Campus, bool, error)

	// High schools (canonical identities, created lazily, first writer wins)
	GetHighSchoolByCanonicalName(ctx context.Context, canonical string) (HighSchool, bool, error)
	SearchHighSchoolsByName(ctx context.Context, name string) ([]HighSchool, error)
	CreateHighSchool(ctx context.Context, hs HighSchool) (int64, error)

	// File ledger (idempotency record of discovered files)
	UpsertLedgerEntry(ctx context.Context, e FileLedgerEntry) (created bool, err error)
	GetLedgerEntry(ctx context.Context, path string) (FileLedgerEntry, bool, error)
	ListPendingFiles(ctx context.Context) ([]FileLedgerEntry, error)
	MarkProcessed(ctx context.Context, path string) error

	// Facts (append-only, one transactional bulk insert per file)
	BulkInsertEthnicityFacts(ctx context.Context, facts []EthnicityFact) error
	BulkInsertGenderFacts(ctx context.Context, facts []GenderFact) error
	BulkInsertGPAFacts(ctx context.Context, facts []GPAFact) error
}

// Campus is one university campus from the fixed reference set
type Campus struct {
	ID       int64
	Name     string
	Location string
}

// HighSchool is the canonical identity for a secondary school.
// CanonicalName is the stable source-system token when the feed provides
// one; it is empty for legacy feeds resolved by (name, city).
type HighSchool struct {
	ID            int64
	CanonicalName string
	Name          string
	City          string
	County        string
	State         string
	Country       string
	ZipCode       string
	Public        bool
}

// FileLedgerEntry is one discovered source file, keyed by absolute path.
// CampusID is zero when the campus name could not be resolved; Year is
// zero when no year was parseable from the filename.
type FileLedgerEntry struct {
	ID        int64
	Path      string
	Category  classify.Category
	Scope     classify.Scope
	CampusID  int64
	Year      int
	Processed bool
}

// AdmissionStage is the admissions-funnel point a fact describes
type AdmissionStage string

const (
	StageApplied  AdmissionStage = "App"
	StageAdmitted AdmissionStage = "Adm"
	StageEnrolled AdmissionStage = "Enr"
)

// ParseStage normalizes a source stage label. Sources write "App", "Adm"
// and either "Enr" or "Enrl" depending on the export year.
func ParseStage(label string) (AdmissionStage, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "app":
		return StageApplied, true
	case "adm":
		return StageAdmitted, true
	case "enr", "enrl":
		return StageEnrolled, true
	}
	return "", false
}

// EthnicityFact is one (ethnicity label, count) observation
type EthnicityFact struct {
	ID           int64
	HighSchoolID int64
	CampusID     int64
	Stage        AdmissionStage
	Year         int
	Ethnicity    string
	Count        int
}

// GenderFact is one gender-count observation. Unknown may be negative
// when the source's own arithmetic is inconsistent; it is stored as-is.
type GenderFact struct {
	ID           int64
	HighSchoolID int64
	CampusID     int64
	Stage        AdmissionStage
	Year         int
	Total        int
	Female       int
	Male         int
	Other        int
	Unknown      int
}

// GPAFact is one mean-GPA observation
type GPAFact struct {
	ID           int64
	HighSchoolID int64
	CampusID     int64
	Stage        AdmissionStage
	Year         int
	MeanGPA      float64
}
