// Command bootstrap creates the database schema and seeds the campus
// reference set. Seeding is idempotent: campuses already present are
// left untouched.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/ucdata/funnel/pkg/funnel/config"
	"github.com/ucdata/funnel/pkg/funnel/store/sqlite"
)

func main() {
	var (
		dbPath     = flag.String("db", "", "Database path (required)")
		configPath = flag.String("config", "", "Reference-data YAML (optional, defaults compiled in)")
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
	defer st.Close()

	if err := st.SeedCampuses(ctx, components.CampusSeeds); err != nil {
		log.Fatal("Failed to seed campuses:", err)
	}

	campuses, err := st.ListCampuses(ctx)
	if err != nil {
		log.Fatal("Failed to list campuses:", err)
	}

	log.Printf("Bootstrap complete: %s holds %d campuses", *dbPath, len(campuses))
	for _, c := range campuses {
		log.Printf("  %s (%s)", c.Name, c.Location)
	}
}
