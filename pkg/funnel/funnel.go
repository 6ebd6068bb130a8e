// Package funnel normalizes heterogeneous admissions-report files into a
// relational fact model keyed by high school, campus, admission stage and
// academic year. The Funnel facade ties the crawler, the category
// transformers and the store together behind the pipeline's external
// interface.
package funnel

import (
	"context"
	"fmt"
	"log"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/config"
	"github.com/ucdata/funnel/pkg/funnel/crawl"
	"github.com/ucdata/funnel/pkg/funnel/store"
	"github.com/ucdata/funnel/pkg/funnel/transform"
)

// Funnel is the ingestion pipeline facade. The campus reference set is
// loaded once from the store at construction time and treated as
// immutable for the life of the instance.
type Funnel struct {
	store       store.Store
	campusIndex map[string]store.Campus
	campusByID  map[int64]store.Campus
	transformer *transform.Transformer
	crawler     *crawl.Crawler
	logger      *log.Logger
}

// Options configures a Funnel instance.
type Options struct {
	Store           store.Store
	Classifier      *classify.Classifier
	EthnicityLabels []string
	Logger          *log.Logger
}

// New creates a Funnel. The store must already hold the seeded campus
// reference set (see cmd/bootstrap).
func New(ctx context.Context, opts Options) (*Funnel, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	labels := opts.EthnicityLabels
	if len(labels) == 0 {
		labels = config.DefaultEthnicities()
	}

	campuses, err := opts.Store.ListCampuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load campus reference set: %w", err)
	}
	if len(campuses) == 0 {
		return nil, fmt.Errorf("campus reference set is empty; run bootstrap first")
	}

	f := &Funnel{
		store:       opts.Store,
		campusIndex: make(map[string]store.Campus, len(campuses)),
		campusByID:  make(map[int64]store.Campus, len(campuses)),
		logger:      logger,
	}
	for _, c := range campuses {
		f.campusIndex[c.Name] = c
		f.campusByID[c.ID] = c
	}

	f.transformer = transform.New(transform.Options{
		Store:           opts.Store,
		Campuses:        campuses,
		EthnicityLabels: labels,
		Logger:          logger,
	})
	f.crawler = crawl.New(crawl.Options{
		Store:      opts.Store,
		Classifier: opts.Classifier,
		Campuses:   campuses,
		Logger:     logger,
	})

	return f, nil
}

// Close cleanly shuts down the Funnel instance.
func (f *Funnel) Close() error {
	return f.store.Close()
}

// Crawl walks a source tree and records ledger entries. Safe to re-run.
func (f *Funnel) Crawl(ctx context.Context, root string) (crawl.Summary, error) {
	return f.crawler.Crawl(ctx, root)
}

// IngestEthnicityFile processes one ethnicity report file.
func (f *Funnel) IngestEthnicityFile(ctx context.Context, path, campusName string, year int, scope classify.Scope) (*transform.Summary, error) {
	return f.transformer.IngestEthnicityFile(ctx, path, campusName, year, scope)
}

// IngestGenderFile processes one gender report file.
func (f *Funnel) IngestGenderFile(ctx context.Context, path, campusName string, year int) (*transform.Summary, error) {
	return f.transformer.IngestGenderFile(ctx, path, campusName, year)
}

// IngestGPAFile processes one GPA report file.
func (f *Funnel) IngestGPAFile(ctx context.Context, path, campusName string, year int) (*transform.Summary, error) {
	return f.transformer.IngestGPAFile(ctx, path, campusName, year)
}

// ListPendingFiles returns ledger entries not yet processed, for an
// orchestrator to drive processing.
func (f *Funnel) ListPendingFiles(ctx context.Context) ([]store.FileLedgerEntry, error) {
	return f.store.ListPendingFiles(ctx)
}

// ProcessPending processes every pending ledger entry that carries enough
// classification to dispatch. A failed file is logged and left pending;
// processing continues with the next entry.
func (f *Funnel) ProcessPending(ctx context.Context) ([]*transform.Summary, error) {
	pending, err := f.store.ListPendingFiles(ctx)
	if err != nil {
		return nil, err
	}

	var summaries []*transform.Summary
	for _, entry := range pending {
		if ctx.Err() != nil {
			return summaries, ctx.Err()
		}

		campus, ok := f.campusByID[entry.CampusID]
		if entry.Category == "" || !ok {
			f.logger.Printf("Skipping ledger entry %s: category=%q campus_id=%d not dispatchable", entry.Path, entry.Category, entry.CampusID)
			continue
		}

		var sum *transform.Summary
		switch entry.Category {
		case classify.CategoryEthnicity:
			sum, err = f.transformer.IngestEthnicityFile(ctx, entry.Path, campus.Name, entry.Year, entry.Scope)
		case classify.CategoryGender:
			sum, err = f.transformer.IngestGenderFile(ctx, entry.Path, campus.Name, entry.Year)
		case classify.CategoryGPA:
			sum, err = f.transformer.IngestGPAFile(ctx, entry.Path, campus.Name, entry.Year)
		default:
			f.logger.Printf("Skipping ledger entry %s: unknown category %q", entry.Path, entry.Category)
			continue
		}
		summaries = append(summaries, sum)
		if err != nil {
			// Already logged by the transformer; the entry stays pending
			// for a manual re-attempt.
			continue
		}

		if err := f.store.MarkProcessed(ctx, entry.Path); err != nil {
			return summaries, fmt.Errorf("mark %s processed: %w", entry.Path, err)
		}
	}
	return summaries, nil
}
