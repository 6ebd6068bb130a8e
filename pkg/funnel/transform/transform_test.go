package transform

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/config"
	"github.com/ucdata/funnel/pkg/funnel/internalerr"
	"github.com/ucdata/funnel/pkg/funnel/store"
	"github.com/ucdata/funnel/pkg/funnel/store/memstore"
)

// newTestTransformer seeds the default campuses into a fresh memstore and
// returns a transformer over it.
func newTestTransformer(t *testing.T) (*Transformer, *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	st := memstore.New()

	var seeds []store.Campus
	for _, c := range config.DefaultCampuses() {
		seeds = append(seeds, store.Campus{Name: c.Name, Location: c.Location})
	}
	if err := st.SeedCampuses(ctx, seeds); err != nil {
		t.Fatal(err)
	}
	campuses, err := st.ListCampuses(ctx)
	if err != nil {
		t.Fatal(err)
	}

	tr := New(Options{
		Store:           st,
		Campuses:        campuses,
		EthnicityLabels: config.DefaultEthnicities(),
		Logger:          log.New(io.Discard, "", 0),
	})
	return tr, st
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUnknownCampusFailsFile(t *testing.T) {
	tr, _ := newTestTransformer(t)
	path := writeFile(t, "eth.txt",
		"Calculation1\tSchool\tCity\tCounty/State/ Territory\tCount\tAsian\n"+
			"Lincoln 7\tLincoln High\tFresno\tFresno\tApp\t10\n")

	_, err := tr.IngestEthnicityFile(context.Background(), path, "Nowhere", 2022, classify.ScopeCAPublic)
	var uce *internalerr.UnknownCampusError
	if !errors.As(err, &uce) {
		t.Fatalf("error = %v, want UnknownCampusError", err)
	}
	if uce.Name != "Nowhere" {
		t.Errorf("Name = %q", uce.Name)
	}
}

func TestMissingFileIsUnreadable(t *testing.T) {
	tr, _ := newTestTransformer(t)

	_, err := tr.IngestEthnicityFile(context.Background(),
		filepath.Join(t.TempDir(), "absent.txt"), "Davis", 2022, classify.ScopeCAPublic)
	var ufe *internalerr.UnreadableFileError
	if !errors.As(err, &ufe) {
		t.Fatalf("error = %v, want UnreadableFileError", err)
	}
}

func TestMissingColumnsFailFile(t *testing.T) {
	tr, st := newTestTransformer(t)
	path := writeFile(t, "eth.txt", "School\tCity\nLincoln High\tFresno\n")

	_, err := tr.IngestEthnicityFile(context.Background(), path, "Davis", 2022, classify.ScopeCAPublic)
	var sve *internalerr.SchemaValidationError
	if !errors.As(err, &sve) {
		t.Fatalf("error = %v, want SchemaValidationError", err)
	}
	if len(st.Ethnicity) != 0 {
		t.Error("no facts should be written for a rejected file")
	}
}

func TestBatchIDsDistinct(t *testing.T) {
	tr, _ := newTestTransformer(t)
	content := "Calculation1\tSchool\tCity\tCounty/State/ Territory\tCount\tAsian\n" +
		"Lincoln 7\tLincoln High\tFresno\tFresno\tApp\t10\n"
	pathA := writeFile(t, "a.txt", content)
	pathB := writeFile(t, "b.txt", content)

	sumA, err := tr.IngestEthnicityFile(context.Background(), pathA, "Davis", 2022, classify.ScopeCAPublic)
	if err != nil {
		t.Fatal(err)
	}
	sumB, err := tr.IngestEthnicityFile(context.Background(), pathB, "Davis", 2022, classify.ScopeCAPublic)
	if err != nil {
		t.Fatal(err)
	}

	if sumA.BatchID == "" || sumA.BatchID == sumB.BatchID {
		t.Errorf("batch ids = %q, %q; want distinct non-empty", sumA.BatchID, sumB.BatchID)
	}
}

func TestParseCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12", 12, true},
		{"12.0", 12, true},
		{"1,234", 1234, true},
		{" 7 ", 7, true},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, err := parseCount(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("parseCount(%q) err = %v", tc.in, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("parseCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
