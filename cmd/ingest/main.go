// Command ingest processes report files into normalized fact tables.
// With no file flags, it drains the ledger's pending entries; with
// --file, it processes a single file using the explicit category flags.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/ucdata/funnel/pkg/funnel"
	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/config"
	"github.com/ucdata/funnel/pkg/funnel/store/sqlite"
	"github.com/ucdata/funnel/pkg/funnel/transform"
)

func main() {
	var (
		dbPath     = flag.String("db", "", "Database path (required)")
		configPath = flag.String("config", "", "Reference-data YAML (optional)")
		filePath   = flag.String("file", "", "Single file to process (optional; default drains pending)")
		category   = flag.String("category", "", "Category for --file: ethnicity, gender or gpa")
		campus     = flag.String("campus", "", "Campus name for --file")
		year       = flag.Int("year", 0, "Reporting year for --file")
		scope      = flag.String("scope", string(classify.ScopeAll), "School-type scope for --file (ethnicity only)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}

	ctx := context.Background()

	loader := config.Loader{ConfigPath: *configPath}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}

	f, err := funnel.New(ctx, funnel.Options{
		Store:           st,
		Classifier:      components.Classifier,
		EthnicityLabels: components.EthnicityLabels,
	})
	if err != nil {
		st.Close()
		log.Fatal("Failed to initialize pipeline:", err)
	}
	defer f.Close()

	if *filePath == "" {
		summaries, err := f.ProcessPending(ctx)
		if err != nil {
			log.Fatal("Processing failed:", err)
		}
		log.Printf("Processed %d pending files", len(summaries))
		return
	}

	if *campus == "" {
		log.Fatal("--campus required with --file")
	}

	var sum *transform.Summary
	switch *category {
	case "ethnicity":
		sum, err = f.IngestEthnicityFile(ctx, *filePath, *campus, *year, classify.Scope(*scope))
	case "gender":
		sum, err = f.IngestGenderFile(ctx, *filePath, *campus, *year)
	case "gpa":
		sum, err = f.IngestGPAFile(ctx, *filePath, *campus, *year)
	default:
		log.Fatalf("--category must be ethnicity, gender or gpa (got %q)", *category)
	}
	if err != nil {
		log.Fatal("Ingest failed:", err)
	}

	log.Printf("Success: batch=%s rows=%d accepted=%d skipped=%d facts=%d",
		sum.BatchID, sum.Rows, sum.Accepted, len(sum.Skips), sum.Facts)
}
