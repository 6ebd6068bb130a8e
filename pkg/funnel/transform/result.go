package transform

import (
	"github.com/ucdata/funnel/pkg/funnel/classify"
	"github.com/ucdata/funnel/pkg/funnel/tabular"
)

// RowSkip records one row that was dropped and why. Skips are explicit
// result values, not exceptions: they accumulate on the summary and never
// affect the file-level outcome unless no row at all is accepted.
type RowSkip struct {
	Index  int
	Reason string
}

// Summary reports the outcome of one file-processing invocation. BatchID
// is a ULID minted per invocation so log lines and summaries from
// concurrent runs can be told apart.
type Summary struct {
	BatchID  string
	Path     string
	Category classify.Category
	Encoding string
	Rows     int
	Accepted int
	Facts    int
	Skips    []RowSkip
	Warnings []tabular.Warning
}
