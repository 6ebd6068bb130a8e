package config

import (
	"fmt"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/store"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	ConfigPath string
}

// Components holds the initialized reference-data components
type Components struct {
	Classifier      *classify.Classifier
	CampusSeeds     []store.Campus
	EthnicityLabels []string
}

// Load reads the configuration (if a path is set) and returns initialized
// components, falling back to compiled-in defaults for omitted sections.
func (l *Loader) Load() (*Components, error) {
	cfg := &Config{}
	if l.ConfigPath != "" {
		loaded, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	comp := &Components{}

	seeds := cfg.Campuses
	if len(seeds) == 0 {
		seeds = DefaultCampuses()
	}
	comp.CampusSeeds = make([]store.Campus, len(seeds))
	for i, c := range seeds {
		comp.CampusSeeds[i] = store.Campus{Name: c.Name, Location: c.Location}
	}

	if len(cfg.CampusKeywords) > 0 {
		keywords := make([]classify.CampusKeyword, len(cfg.CampusKeywords))
		for i, r := range cfg.CampusKeywords {
			keywords[i] = classify.CampusKeyword{Keyword: r.Keyword, Campus: r.Campus}
		}
		comp.Classifier = classify.New(keywords)
	} else {
		comp.Classifier = classify.New(nil)
	}

	comp.EthnicityLabels = cfg.Ethnicities
	if len(comp.EthnicityLabels) == 0 {
		comp.EthnicityLabels = DefaultEthnicities()
	}

	return comp, nil
}
