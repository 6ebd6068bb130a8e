// Package transform converts validated report tables into normalized fact
// records. Each category transformer shares the same shape: read and
// decode the file, parse it with the category's delimiter, validate the
// schema, resolve the campus, then iterate rows with per-row fault
// isolation and hand the surviving facts to the store in one batch.
package transform

import (
	"crypto/rand"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/internalerr"
	"github.com/ucdata/funnel/pkg/funnel/resolve"
	"github.com/ucdata/funnel/pkg/funnel/schema"
	"github.com/ucdata/funnel/pkg/funnel/store"
	"github.com/ucdata/funnel/pkg/funnel/tabular"
	"github.com/ucdata/funnel/pkg/funnel/textenc"
)

// Transformer runs category transforms against a store. The campus table
// is an immutable in-memory lookup built once at startup; it is never
// consulted from the database on the row path.
type Transformer struct {
	store    store.Store
	resolver *resolve.Resolver
	campuses map[string]store.Campus
	labels   []string
	logger   *log.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures a Transformer.
type Options struct {
	Store           store.Store
	Campuses        []store.Campus
	EthnicityLabels []string
	Logger          *log.Logger
}

// New creates a Transformer. A nil logger falls back to the standard one;
// empty ethnicity labels fall back to the built-in list via config at the
// call site.
func New(opts Options) *Transformer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	campuses := make(map[string]store.Campus, len(opts.Campuses))
	for _, c := range opts.Campuses {
		campuses[c.Name] = c
	}
	return &Transformer{
		store:    opts.Store,
		resolver: resolve.New(opts.Store),
		campuses: campuses,
		labels:   opts.EthnicityLabels,
		logger:   logger,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// newBatchID mints a ULID identifying one file-processing invocation.
func (t *Transformer) newBatchID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ulid.MustNew(ulid.Now(), t.entropy).String()
}

// campusByName resolves a campus against the fixed reference set.
func (t *Transformer) campusByName(name string) (store.Campus, error) {
	c, ok := t.campuses[name]
	if !ok {
		return store.Campus{}, &internalerr.UnknownCampusError{Name: name}
	}
	return c, nil
}

// delimiterFor returns the expected field delimiter for a category.
// Ethnicity and GPA exports are tab-delimited; gender exports are plain
// CSV.
func delimiterFor(cat classify.Category) rune {
	if cat == classify.CategoryGender {
		return ','
	}
	return '\t'
}

// openTable reads, decodes, parses and schema-validates one report file.
// Encoding or parse trouble is an UnreadableFileError; a missing column
// set is a SchemaValidationError. Both are fatal for the file.
func (t *Transformer) openTable(path string, cat classify.Category) (*tabular.Table, string, error) {
	data, encName, err := textenc.ReadFile(path)
	if err != nil {
		return nil, "", &internalerr.UnreadableFileError{Path: path, Err: err}
	}

	table, err := tabular.Parse(data, delimiterFor(cat))
	if err != nil {
		return nil, "", &internalerr.UnreadableFileError{Path: path, Err: err}
	}

	if err := schema.Validate(path, table, cat); err != nil {
		return nil, "", err
	}

	for _, w := range table.Warnings {
		t.logger.Printf("Warning: row %d in %s: %s", w.Row, path, w.Message)
	}

	return table, encName, nil
}

// skipRow records a row-level failure on the summary and logs it with the
// raw values. Row failures never abort the file.
func (t *Transformer) skipRow(sum *Summary, row tabular.Row, reason string) {
	sum.Skips = append(sum.Skips, RowSkip{Index: row.Index, Reason: reason})
	t.logger.Printf("Warning: skipping row %d in %s: %s (values=%v)", row.Index, sum.Path, reason, row.Fields())
}

// finish enforces the zero-accepted gate and logs the file summary.
func (t *Transformer) finish(sum *Summary, err error) (*Summary, error) {
	if err != nil {
		t.logger.Printf("Failed %s file %s (batch %s): %v", sum.Category, sum.Path, sum.BatchID, err)
		return sum, err
	}
	t.logger.Printf("Processed %s file %s (batch %s): rows=%d accepted=%d skipped=%d facts=%d encoding=%s",
		sum.Category, sum.Path, sum.BatchID, sum.Rows, sum.Accepted, len(sum.Skips), sum.Facts, sum.Encoding)
	return sum, nil
}

// parseCount coerces a count cell to an integer. Sources format counts as
// plain integers, as decimals ("12.0") and with thousands separators.
func parseCount(v string) (int, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// parseOptionalCount reads a count column that may be absent or empty,
// defaulting to zero. A present but non-numeric value is an error.
func parseOptionalCount(row tabular.Row, col string) (int, error) {
	v, ok := row.Get(col)
	if !ok || strings.TrimSpace(v) == "" {
		return 0, nil
	}
	return parseCount(v)
}
