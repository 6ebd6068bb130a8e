// Command crawl walks a source tree and records discovered report files
// in the ledger without parsing them. Re-running over an unchanged tree
// is a no-op.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/ucdata/funnel/pkg/funnel"
	"github.com/ucdata/funnel/pkg/funnel/config"
	"github.com/ucdata/funnel/pkg/funnel/store/sqlite"
)

func main() {
	var (
		dbPath     = flag.String("db", "", "Database path (required)")
		root       = flag.String("root", "", "Source tree to crawl (required)")
		configPath = flag.String("config", "", "Reference-data YAML (optional)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *root == "" {
		log.Fatal("--root required")
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

	sum, err := f.Crawl(ctx, *root)
	if err != nil {
		log.Fatal("Crawl failed:", err)
	}

	log.Printf("Done: discovered=%d created=%d existing=%d", sum.Discovered, sum.Created, sum.Existing)
}
