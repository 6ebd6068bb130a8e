// Package schema gates parsed report tables on their required column
// sets. Validation is all-or-nothing: a file missing any required column
// is rejected before row processing begins.
package schema

import (
	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/internalerr"
	"github.com/ucdata/funnel/pkg/funnel/tabular"
)

// Column names as they appear in the source report headers.
const (
	ColCanonical = "Calculation1"
	ColSchool    = "School"
	ColCity      = "City"
	ColRegion    = "County/State/ Territory"
	ColStage     = "Count"
	ColTotal     = "Total"
	ColFemale    = "Female"
	ColMale      = "Male"
	ColOther     = "Other"
	ColUnknown   = "Unknown"
	ColAppGPA    = "App GPA"
	ColAdmGPA    = "Adm GPA"
	ColEnrlGPA   = "Enrl GPA"
)

// requiredColumns maps each category to its required column set, in the
// order missing columns are reported.
var requiredColumns = map[classify.Category][]string{
	classify.CategoryEthnicity: {ColCanonical, ColSchool, ColCity, ColRegion, ColStage},
	classify.CategoryGender:    {ColSchool, ColCity, ColRegion, ColStage, ColTotal, ColFemale, ColMale},
	classify.CategoryGPA:       {ColCanonical, ColSchool, ColCity, ColRegion, ColAppGPA, ColAdmGPA, ColEnrlGPA},
}

// Required returns the required column set for a category. The returned
// slice must not be mutated.
func Required(cat classify.Category) []string {
	return requiredColumns[cat]
}

// Validate checks that the table carries every required column for the
// category. It returns a *internalerr.SchemaValidationError naming every
// missing column, or nil when the table passes.
func Validate(path string, t *tabular.Table, cat classify.Category) error {
	var missing []string
	for _, col := range requiredColumns[cat] {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &internalerr.SchemaValidationError{
			Path:     path,
			Category: string(cat),
			Missing:  missing,
		}
	}
	return nil
}
