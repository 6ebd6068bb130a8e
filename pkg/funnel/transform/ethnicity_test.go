package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/internalerr"
	"github.com/ucdata/funnel/pkg/funnel/store"
)

const ethnicityHeader = "Calculation1\tSchool\tCity\tCounty/State/ Territory\tCount\tAsian\tWhite\n"

func TestIngestEthnicityFile(t *testing.T) {
	tr, st := newTestTransformer(t)
	path := writeFile(t, "eth.txt", ethnicityHeader+
		"Lincoln 7\tLincoln High\tFresno\tFresno\tApp\t10\t20\n"+
		"Lincoln 7\tLincoln High\tFresno\tFresno\tAdm\t5\t8\n")

	sum, err := tr.IngestEthnicityFile(context.Background(), path, "Davis", 2022, classify.ScopeCAPublic)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Rows != 2 || sum.Accepted != 2 || len(sum.Skips) != 0 {
		t.Fatalf("rows=%d accepted=%d skips=%d", sum.Rows, sum.Accepted, len(sum.Skips))
	}
	// two label columns per row
	if sum.Facts != 4 || len(st.Ethnicity) != 4 {
		t.Fatalf("facts = %d (stored %d), want 4", sum.Facts, len(st.Ethnicity))
	}

	// both rows share the canonical identity
	schools := st.HighSchools()
	if len(schools) != 1 {
		t.Fatalf("high schools = %d, want 1", len(schools))
	}
	if schools[0].CanonicalName != "Lincoln 7" {
		t.Errorf("canonical name = %q", schools[0].CanonicalName)
	}
	if !schools[0].Public || schools[0].County != "Fresno" || schools[0].Country != "United States" {
		t.Errorf("locality = %+v", schools[0])
	}

	first := st.Ethnicity[0]
	if first.Stage != store.StageApplied || first.Ethnicity != "Asian" || first.Count != 10 || first.Year != 2022 {
		t.Errorf("first fact = %+v", first)
	}
}

func TestIngestEthnicityRowIsolation(t *testing.T) {
	tr, st := newTestTransformer(t)
	path := writeFile(t, "eth.txt", ethnicityHeader+
		"Lincoln 7\tLincoln High\tFresno\tFresno\tApp\t10\t20\n"+
		"Lincoln 7\tLincoln High\tFresno\tFresno\tTotals\t15\t28\n"+ // bad stage
		"Jefferson 3\tJefferson High\tModesto\tStanislaus\tApp\tn/a\t4\n"+ // bad count
		"Jefferson 3\tJefferson High\tModesto\tStanislaus\tEnr\t2\t3\n")

	sum, err := tr.IngestEthnicityFile(context.Background(), path, "Davis", 2022, classify.ScopeCAPublic)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Accepted != 2 {
		t.Errorf("accepted = %d, want 2", sum.Accepted)
	}
	if len(sum.Skips) != 2 {
		t.Fatalf("skips = %v, want 2", sum.Skips)
	}
	if sum.Skips[0].Index != 2 || sum.Skips[1].Index != 3 {
		t.Errorf("skip indexes = %d, %d", sum.Skips[0].Index, sum.Skips[1].Index)
	}
	if len(st.Ethnicity) != 4 {
		t.Errorf("stored facts = %d, want 4", len(st.Ethnicity))
	}
}

func TestIngestEthnicityEmptyCellDropped(t *testing.T) {
	tr, st := newTestTransformer(t)
	path := writeFile(t, "eth.txt", ethnicityHeader+
		"Lincoln 7\tLincoln High\tFresno\tFresno\tApp\t\t20\n")

	sum, err := tr.IngestEthnicityFile(context.Background(), path, "Davis", 2022, classify.ScopeCAPublic)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Accepted != 1 || sum.Facts != 1 {
		t.Fatalf("accepted=%d facts=%d, want 1/1", sum.Accepted, sum.Facts)
	}
	if st.Ethnicity[0].Ethnicity != "White" {
		t.Errorf("fact label = %q, want White", st.Ethnicity[0].Ethnicity)
	}
}

func TestIngestEthnicityScopeLocality(t *testing.T) {
	tr, st := newTestTransformer(t)
	path := writeFile(t, "eth.txt", ethnicityHeader+
		"Int School 1\tInternational School\tParis\tFrance\tApp\t3\t4\n")

	_, err := tr.IngestEthnicityFile(context.Background(), path, "Davis", 2022, classify.ScopeForeign)
	if err != nil {
		t.Fatal(err)
	}

	schools := st.HighSchools()
	if len(schools) != 1 {
		t.Fatalf("high schools = %d", len(schools))
	}
	hs := schools[0]
	if hs.Country != "France" || hs.County != "" || hs.State != "" {
		t.Errorf("foreign locality = %+v", hs)
	}
}

// An aggregate-scope file must still process rows whose schools already
// exist; only rows that would create a school need a concrete scope.
func TestIngestEthnicityScopeAllUsesExistingSchools(t *testing.T) {
	tr, st := newTestTransformer(t)
	ctx := context.Background()

	seedPath := writeFile(t, "seed.txt", ethnicityHeader+
		"Lincoln 7\tLincoln High\tFresno\tFresno\tApp\t10\t20\n")
	if _, err := tr.IngestEthnicityFile(ctx, seedPath, "Davis", 2022, classify.ScopeCAPublic); err != nil {
		t.Fatal(err)
	}

	allPath := writeFile(t, "all.txt", ethnicityHeader+
		"Lincoln 007\tLincoln High\tFresno\tFresno\tAdm\t5\t8\n"+
		"Jefferson 3\tJefferson High\tModesto\tStanislaus\tApp\t1\t2\n")

	sum, err := tr.IngestEthnicityFile(ctx, allPath, "Davis", 2022, classify.ScopeAll)
	if err != nil {
		t.Fatal(err)
	}

	if sum.Accepted != 1 {
		t.Errorf("accepted = %d, want the row for the existing school", sum.Accepted)
	}
	if len(sum.Skips) != 1 || sum.Skips[0].Index != 2 {
		t.Errorf("skips = %v, want only the row needing creation", sum.Skips)
	}
	if len(st.HighSchools()) != 1 {
		t.Errorf("high schools = %d, want 1 (no creation under an aggregate scope)", len(st.HighSchools()))
	}
	if len(st.Ethnicity) != 4 {
		t.Errorf("stored facts = %d, want 4", len(st.Ethnicity))
	}
}

func TestIngestEthnicityAllRowsRejected(t *testing.T) {
	tr, st := newTestTransformer(t)
	path := writeFile(t, "eth.txt", ethnicityHeader+
		"Lincoln 7\tLincoln High\tFresno\tFresno\tTotals\t10\t20\n")

	_, err := tr.IngestEthnicityFile(context.Background(), path, "Davis", 2022, classify.ScopeCAPublic)
	if !errors.Is(err, internalerr.ErrNoRowsAccepted) {
		t.Fatalf("error = %v, want ErrNoRowsAccepted", err)
	}
	if len(st.Ethnicity) != 0 {
		t.Errorf("stored facts = %d, want 0", len(st.Ethnicity))
	}
}
