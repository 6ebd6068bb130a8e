package tabular

import "testing"

func TestParseBasic(t *testing.T) {
	data := []byte("School\tCity\tCount\nLincoln High\tFresno\tApp\nWashington\tOakland\tAdm\n")

	table, err := Parse(data, '\t')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(table.Columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(table.Columns))
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if got := table.Rows[0].Value("School"); got != "Lincoln High" {
		t.Errorf("School = %q", got)
	}
	if got := table.Rows[1].Value("Count"); got != "Adm" {
		t.Errorf("Count = %q", got)
	}
	if table.Rows[0].Index != 1 || table.Rows[1].Index != 2 {
		t.Errorf("row indexes = %d, %d", table.Rows[0].Index, table.Rows[1].Index)
	}
}

func TestParseTrimsHeaders(t *testing.T) {
	table, err := Parse([]byte(" School , City \nLincoln,Fresno\n"), ',')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !table.HasColumn("School") || !table.HasColumn("City") {
		t.Errorf("columns = %v, want trimmed names", table.Columns)
	}
}

func TestParseRaggedRows(t *testing.T) {
	data := []byte("A,B,C\n1,2\n1,2,3,4\n")

	table, err := Parse(data, ',')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	// Short row padded
	if got := table.Rows[0].Value("C"); got != "" {
		t.Errorf("padded C = %q, want empty", got)
	}
	// Long row truncated
	if got := table.Rows[1].Value("C"); got != "3" {
		t.Errorf("C = %q, want 3", got)
	}
	if len(table.Warnings) != 2 {
		t.Errorf("got %d warnings, want 2", len(table.Warnings))
	}
}

func TestParseSkipsEmptyRows(t *testing.T) {
	data := []byte("A,B\n1,2\n,\n   ,\n3,4\n")

	table, err := Parse(data, ',')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[1].Index != 2 {
		t.Errorf("second row index = %d, want 2", table.Rows[1].Index)
	}
}

func TestParseEmptyFile(t *testing.T) {
	if _, err := Parse(nil, ','); err == nil {
		t.Error("Parse of empty input should fail")
	}
}

func TestRowGet(t *testing.T) {
	table, err := Parse([]byte("A,B\n1,2\n"), ',')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if v, ok := table.Rows[0].Get("A"); !ok || v != "1" {
		t.Errorf("Get(A) = %q, %v", v, ok)
	}
	if _, ok := table.Rows[0].Get("Missing"); ok {
		t.Error("Get of a missing column should report absent")
	}
	if table.HasColumn("Missing") {
		t.Error("HasColumn(Missing) should be false")
	}
}

func TestParseTrimsValues(t *testing.T) {
	table, err := Parse([]byte("A,B\n  1 , x \n"), ',')
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := table.Rows[0].Value("A"); got != "1" {
		t.Errorf("A = %q, want trimmed value", got)
	}
}
