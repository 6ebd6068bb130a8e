package transform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/internalerr"
	"github.com/ucdata/funnel/pkg/funnel/resolve"
	"github.com/ucdata/funnel/pkg/funnel/schema"
	"github.com/ucdata/funnel/pkg/funnel/store"
)

// stageColumns maps GPA column headers to admission stages, in emit order.
var stageColumns = []struct {
	column string
	stage  store.AdmissionStage
}{
	{schema.ColAppGPA, store.StageApplied},
	{schema.ColAdmGPA, store.StageAdmitted},
	{schema.ColEnrlGPA, store.StageEnrolled},
}

// IngestGPAFile processes one GPA report. Rows resolve by canonical
// school token and emit one fact per stage column holding a numeric
// value; non-numeric stage cells are skipped without failing the row.
func (t *Transformer) IngestGPAFile(ctx context.Context, path, campusName string, year int) (*Summary, error) {
	sum := &Summary{
		BatchID:  t.newBatchID(),
		Path:     path,
		Category: classify.CategoryGPA,
	}

	table, encName, err := t.openTable(path, classify.CategoryGPA)
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

	var facts []store.GPAFact
	for _, row := range table.Rows {
		hs, err := t.resolver.FindOrCreateCanonical(ctx,
			row.Value(schema.ColCanonical), row.Value(schema.ColSchool), row.Value(schema.ColCity),
			resolve.DefaultLocality(row.Value(schema.ColRegion)))
		if err != nil {
			t.skipRow(sum, row, fmt.Sprintf("resolve high school: %v", err))
			continue
		}

		var rowFacts []store.GPAFact
		for _, sc := range stageColumns {
			v := strings.TrimSpace(row.Value(sc.column))
			if v == "" {
				continue
			}
			mean, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			rowFacts = append(rowFacts, store.GPAFact{
				HighSchoolID: hs.ID,
				CampusID:     campus.ID,
				Stage:        sc.stage,
				Year:         year,
				MeanGPA:      mean,
			})
		}
		if len(rowFacts) == 0 {
			t.skipRow(sum, row, "no numeric GPA values")
			continue
		}

		facts = append(facts, rowFacts...)
		sum.Accepted++
	}

	if sum.Rows > 0 && sum.Accepted == 0 {
		return t.finish(sum, fmt.Errorf("%s: %w", path, internalerr.ErrNoRowsAccepted))
	}

	if err := t.store.BulkInsertGPAFacts(ctx, facts); err != nil {
		return t.finish(sum, &internalerr.BulkWriteError{Path: path, Err: err})
	}
	sum.Facts = len(facts)

	return t.finish(sum, nil)
}
