package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the reference-data configuration for the pipeline: the fixed
// campus set, the classifier's campus keyword table, and the ethnicity
// label list. Every section is optional; omitted sections fall back to
// the compiled-in defaults.
type Config struct {
	Campuses       []CampusSeed  `yaml:"campuses"`
	CampusKeywords []KeywordRule `yaml:"campus_keywords"`
	Ethnicities    []string      `yaml:"ethnicities"`
}

// CampusSeed is one campus in the fixed reference set
type CampusSeed struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

// KeywordRule maps a filename keyword to a campus name. Rules are applied
// in file order; the first match wins.
type KeywordRule struct {
	Keyword string `yaml:"keyword"`
	Campus  string `yaml:"campus"`
}

// Load reads a configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultCampuses returns the built-in campus seed list
func DefaultCampuses() []CampusSeed {
	return []CampusSeed{
		{Name: "Los Angeles", Location: "Los Angeles, CA"},
		{Name: "Berkeley", Location: "Berkeley, CA"},
		{Name: "Davis", Location: "Davis, CA"},
		{Name: "San Diego", Location: "La Jolla, CA"},
		{Name: "Irvine", Location: "Irvine, CA"},
		{Name: "Santa Barbara", Location: "Santa Barbara, CA"},
		{Name: "Riverside", Location: "Riverside, CA"},
		{Name: "Merced", Location: "Merced, CA"},
		{Name: "Santa Cruz", Location: "Santa Cruz, CA"},
	}
}

// DefaultEthnicities returns the built-in ethnicity label list, matching
// the column headers of the source reports.
func DefaultEthnicities() []string {
	return []string{
		"All",
		"African American",
		"American Indian",
		"Hispanic/ Latinx",
		"Pacific Islander",
		"Asian",
		"White",
		"Domestic Unknown",
		"Int'l",
	}
}
