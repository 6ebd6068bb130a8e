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

// IngestEthnicityFile processes one ethnicity report. Each row carries a
// canonical school token, an admission stage label in the Count column,
// and one count column per ethnicity label. A row yields one fact per
// ethnicity column present in the file with a non-empty value.
func (t *Transformer) IngestEthnicityFile(ctx context.Context, path, campusName string, year int, scope classify.Scope) (*Summary, error) {
	sum := &Summary{
		BatchID:  t.newBatchID(),
		Path:     path,
		Category: classify.CategoryEthnicity,
	}

	table, encName, err := t.openTable(path, classify.CategoryEthnicity)
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

	var facts []store.EthnicityFact
	for _, row := range table.Rows {
		stage, ok := store.ParseStage(row.Value(schema.ColStage))
		if !ok {
			t.skipRow(sum, row, fmt.Sprintf("unrecognized admission stage %q", row.Value(schema.ColStage)))
			continue
		}

		// Locality is only derived when the school has to be created, so
		// an aggregate scope like ALL still processes rows whose schools
		// already exist.
		hs, found, err := t.resolver.ByCanonicalName(ctx, row.Value(schema.ColCanonical))
		if err != nil {
			t.skipRow(sum, row, fmt.Sprintf("resolve high school: %v", err))
			continue
		}
		if !found {
			loc, err := resolve.DeriveLocality(scope, row.Value(schema.ColRegion))
			if err != nil {
				t.skipRow(sum, row, err.Error())
				continue
			}
			hs, err = t.resolver.FindOrCreateCanonical(ctx,
				row.Value(schema.ColCanonical), row.Value(schema.ColSchool), row.Value(schema.ColCity), loc)
			if err != nil {
				t.skipRow(sum, row, fmt.Sprintf("resolve high school: %v", err))
				continue
			}
		}

		rowFacts, err := t.ethnicityRowFacts(row, hs.ID, campus.ID, stage, year)
		if err != nil {
			t.skipRow(sum, row, err.Error())
			continue
		}

		facts = append(facts, rowFacts...)
		sum.Accepted++
	}

	if sum.Rows > 0 && sum.Accepted == 0 {
		return t.finish(sum, fmt.Errorf("%s: %w", path, internalerr.ErrNoRowsAccepted))
	}

	if err := t.store.BulkInsertEthnicityFacts(ctx, facts); err != nil {
		return t.finish(sum, &internalerr.BulkWriteError{Path: path, Err: err})
	}
	sum.Facts = len(facts)

	return t.finish(sum, nil)
}

// ethnicityRowFacts builds the facts for one row. Only ethnicity columns
// that exist in the source emit facts; an empty cell is treated as absent
// and silently dropped, while a non-numeric cell fails the whole row.
func (t *Transformer) ethnicityRowFacts(row tabular.Row, highSchoolID, campusID int64, stage store.AdmissionStage, year int) ([]store.EthnicityFact, error) {
	var facts []store.EthnicityFact
	for _, label := range t.labels {
		v, ok := row.Get(label)
		if !ok || v == "" {
			continue
		}
		count, err := parseCount(v)
		if err != nil {
			return nil, fmt.Errorf("bad count for %q: %v", label, err)
		}
		facts = append(facts, store.EthnicityFact{
			HighSchoolID: highSchoolID,
			CampusID:     campusID,
			Stage:        stage,
			Year:         year,
			Ethnicity:    label,
			Count:        count,
		})
	}
	return facts, nil
}
