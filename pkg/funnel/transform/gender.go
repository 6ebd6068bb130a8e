package transform

import (
	"context"
	"fmt"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/internalerr"
	"github.com/ucdata/funnel/pkg/funnel/resolve"
	"github.com/ucdata/funnel/pkg/funnel/schema"
	"github.com/ucdata/funnel/pkg/funnel/store"
	"github.com/ucdata/funnel/pkg/funnel/tabular"
)

// IngestGenderFile processes one gender report. Gender exports are the
// legacy schema: no canonical school token, so rows resolve through the
// fuzzy (name, city) path and a miss creates a new, possibly duplicate,
// identity.
func (t *Transformer) IngestGenderFile(ctx context.Context, path, campusName string, year int) (*Summary, error) {
	sum := &Summary{
		BatchID:  t.newBatchID(),
		Path:     path,
		Category: classify.CategoryGender,
	}

	table, encName, err := t.openTable(path, classify.CategoryGender)
	if err != nil {
		return t.finish(sum, err)
	}
	sum.Encoding = encName
	sum.Rows = len(table.Rows)
	sum.Warnings = table.Warnings

	campus, err := t.campusByName(campusName)
	if err != nil {
		return t.finish(sum, err)
	}

	var facts []store.GenderFact
	for _, row := range table.Rows {
		stage, ok := store.ParseStage(row.Value(schema.ColStage))
		if !ok {
			t.skipRow(sum, row, fmt.Sprintf("unrecognized admission stage %q", row.Value(schema.ColStage)))
			continue
		}

		hs, err := t.resolveGenderSchool(ctx, row)
		if err != nil {
			t.skipRow(sum, row, fmt.Sprintf("resolve high school: %v", err))
			continue
		}

		fact, err := genderRowFact(row, hs.ID, campus.ID, stage, year)
		if err != nil {
			t.skipRow(sum, row, err.Error())
			continue
		}

		facts = append(facts, fact)
		sum.Accepted++
	}

	if sum.Rows > 0 && sum.Accepted == 0 {
		return t.finish(sum, fmt.Errorf("%s: %w", path, internalerr.ErrNoRowsAccepted))
	}

	if err := t.store.BulkInsertGenderFacts(ctx, facts); err != nil {
		return t.finish(sum, &internalerr.BulkWriteError{Path: path, Err: err})
	}
	sum.Facts = len(facts)

	return t.finish(sum, nil)
}

// resolveGenderSchool runs the fuzzy (name, city) resolution. None and
// Ambiguous both make a fresh record, but the two are logged distinctly:
// ambiguous matches are where duplicate identities come from.
func (t *Transformer) resolveGenderSchool(ctx context.Context, row tabular.Row) (store.HighSchool, error) {
	name := row.Value(schema.ColSchool)
	city := row.Value(schema.ColCity)
	if name == "" {
		return store.HighSchool{}, fmt.Errorf("empty school name")
	}

	match, err := t.resolver.ByNameAndCity(ctx, name, city)
	if err != nil {
		return store.HighSchool{}, err
	}
	if match.Outcome == resolve.Found {
		return match.School, nil
	}

	if match.Outcome == resolve.Ambiguous {
		t.logger.Printf("Warning: ambiguous high school match for %q / %q; creating a new record", name, city)
	}
	return t.resolver.Create(ctx, name, city, resolve.DefaultLocality(row.Value(schema.ColRegion)))
}

// genderRowFact builds a fact from one row. Total, female, male and other
// default to zero when absent; unknown is read from the source when the
// column exists and computed as the remainder otherwise. The remainder is
// not clamped: a negative unknown surfaces inconsistent source data.
func genderRowFact(row tabular.Row, highSchoolID, campusID int64, stage store.AdmissionStage, year int) (store.GenderFact, error) {
	total, err := parseOptionalCount(row, schema.ColTotal)
	if err != nil {
		return store.GenderFact{}, fmt.Errorf("bad total: %v", err)
	}
	female, err := parseOptionalCount(row, schema.ColFemale)
	if err != nil {
		return store.GenderFact{}, fmt.Errorf("bad female count: %v", err)
	}
	male, err := parseOptionalCount(row, schema.ColMale)
	if err != nil {
		return store.GenderFact{}, fmt.Errorf("bad male count: %v", err)
	}
	other, err := parseOptionalCount(row, schema.ColOther)
	if err != nil {
		return store.GenderFact{}, fmt.Errorf("bad other count: %v", err)
	}

	unknown := total - female - male - other
	if v, ok := row.Get(schema.ColUnknown); ok && v != "" {
		unknown, err = parseCount(v)
		if err != nil {
			return store.GenderFact{}, fmt.Errorf("bad unknown count: %v", err)
		}
	}

	return store.GenderFact{
		HighSchoolID: highSchoolID,
		CampusID:     campusID,
		Stage:        stage,
		Year:         year,
		Total:        total,
		Female:       female,
		Male:         male,
		Other:        other,
		Unknown:      unknown,
	}, nil
}
