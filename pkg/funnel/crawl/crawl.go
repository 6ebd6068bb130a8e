// Package crawl walks a source tree and records discovered report files
// in the ledger. Crawling classifies filenames and links campuses but
// never opens file contents; parsing happens later, on explicit request.
package crawl

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"strings"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/store"
)

// Summary reports one crawl pass.
type Summary struct {
	Discovered int
	Created    int
	Existing   int
}

// Crawler discovers report files and upserts ledger entries.
type Crawler struct {
	store      store.Store
	classifier *classify.Classifier
	campuses   map[string]store.Campus
	logger     *log.Logger
}

// Options configures a Crawler.
type Options struct {
	Store      store.Store
	Classifier *classify.Classifier
	Campuses   []store.Campus
	Logger     *log.Logger
}

// New creates a Crawler.
func New(opts Options) *Crawler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = classify.New(nil)
	}
	campuses := make(map[string]store.Campus, len(opts.Campuses))
	for _, c := range opts.Campuses {
		campuses[c.Name] = c
	}
	return &Crawler{
		store:      opts.Store,
		classifier: classifier,
		campuses:   campuses,
		logger:     logger,
	}
}

// Crawl walks root recursively and upserts one ledger entry per file,
// keyed by absolute path. Entries that already exist are left untouched,
// so re-crawling an unchanged tree is a no-op.
func (c *Crawler) Crawl(ctx context.Context, root string) (Summary, error) {
	var sum Summary

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		sum.Discovered++

		res := c.classifier.Classify(d.Name())
		entry := store.FileLedgerEntry{
			Path:     abs,
			Category: res.Category,
			Scope:    res.Scope,
			Year:     res.Year,
		}
		if res.Campus != "" {
			if campus, ok := c.campuses[res.Campus]; ok {
				entry.CampusID = campus.ID
			} else {
				c.logger.Printf("Warning: file %s names campus %q not in the reference set", abs, res.Campus)
			}
		}

		created, err := c.store.UpsertLedgerEntry(ctx, entry)
		if err != nil {
			return err
		}
		if created {
			sum.Created++
		} else {
			sum.Existing++
		}
		return nil
	})
	if err != nil {
		return sum, err
	}

	c.logger.Printf("Crawled %s: discovered=%d created=%d existing=%d", root, sum.Discovered, sum.Created, sum.Existing)
	return sum, nil
}
