package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoaderDefaults(t *testing.T) {
	comp, err := (&Loader{}).Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(comp.CampusSeeds) != 9 {
		t.Errorf("campus seeds = %d, want 9", len(comp.CampusSeeds))
	}
	if comp.Classifier == nil {
		t.Fatal("classifier not constructed")
	}
	if len(comp.EthnicityLabels) == 0 || comp.EthnicityLabels[0] != "All" {
		t.Errorf("ethnicity labels = %v", comp.EthnicityLabels)
	}
}

func TestLoaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yaml")
	content := `campuses:
  - name: Davis
    location: Davis, CA
campus_keywords:
  - keyword: UCD
    campus: Davis
ethnicities:
  - Asian
  - White
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	comp, err := (&Loader{ConfigPath: path}).Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(comp.CampusSeeds) != 1 || comp.CampusSeeds[0].Name != "Davis" || comp.CampusSeeds[0].Location != "Davis, CA" {
		t.Errorf("campus seeds = %+v", comp.CampusSeeds)
	}
	if len(comp.EthnicityLabels) != 2 {
		t.Errorf("ethnicity labels = %v", comp.EthnicityLabels)
	}

	res := comp.Classifier.Classify("UCD Eth CA Public 2022.txt")
	if res.Campus != "Davis" {
		t.Errorf("campus = %q, want Davis from the configured keyword table", res.Campus)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := (&Loader{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")}).Load()
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.yaml")
	if err := os.WriteFile(path, []byte("ethnicities: [Asian]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	comp, err := (&Loader{ConfigPath: path}).Load()
	if err != nil {
		t.Fatal(err)
	}
	// omitted sections fall back to the defaults
	if len(comp.CampusSeeds) != 9 {
		t.Errorf("campus seeds = %d, want default 9", len(comp.CampusSeeds))
	}
	if len(comp.EthnicityLabels) != 1 {
		t.Errorf("ethnicity labels = %v", comp.EthnicityLabels)
	}
}
