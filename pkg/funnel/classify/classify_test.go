package classify

import "testing"

func TestClassifyEthnicityFilename(t *testing.T) {
	c := New(nil)

	res := c.Classify("FR Eth by Yr CA Public Berkeley 2021.txt")

	if res.Category != CategoryEthnicity {
		t.Errorf("Category = %q, want %q", res.Category, CategoryEthnicity)
	}
	if res.Scope != ScopeCAPublic {
		t.Errorf("Scope = %q, want %q", res.Scope, ScopeCAPublic)
	}
	if res.Campus != "Berkeley" {
		t.Errorf("Campus = %q, want Berkeley", res.Campus)
	}
	if res.Year != 2021 {
		t.Errorf("Year = %d, want 2021", res.Year)
	}
}

func TestClassifyCategories(t *testing.T) {
	c := New(nil)

	cases := []struct {
		name string
		want Category
	}{
		{"FR GPA by Yr UCSD 2020.csv", CategoryGPA},
		{"FR Gdr by Yr Davis 2019.csv", CategoryGender},
		{"FR Eth by Yr Foreign UCLA 2022.txt", CategoryEthnicity},
		{"random-notes.txt", ""},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.name).Category; got != tc.want {
			t.Errorf("Classify(%q).Category = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyScopes(t *testing.T) {
	c := New(nil)

	cases := []struct {
		name string
		want Scope
	}{
		{"FR Eth CA Public Davis 2020.txt", ScopeCAPublic},
		{"FR Eth CA Private Davis 2020.txt", ScopeCAPrivate},
		{"FR Eth Foreign Davis 2020.txt", ScopeForeign},
		{"FR Eth non-CA Davis 2020.txt", ScopeNonCA},
		{"FR Eth Davis 2020.txt", ScopeAll},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.name).Scope; got != tc.want {
			t.Errorf("Classify(%q).Scope = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyCampusKeywords(t *testing.T) {
	c := New(nil)

	cases := []struct {
		name string
		want string
	}{
		{"FR GPA UCSD 2020.csv", "San Diego"},
		{"FR GPA UCSB 2020.csv", "Santa Barbara"},
		{"FR GPA UCSC 2020.csv", "Santa Cruz"},
		{"FR GPA UCLA 2020.csv", "Los Angeles"},
		{"FR GPA LA 2020.csv", "Los Angeles"},
		{"FR GPA Merced 2020.csv", "Merced"},
		{"FR GPA nowhere 2020.csv", ""},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.name).Campus; got != tc.want {
			t.Errorf("Classify(%q).Campus = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// Abbreviations must win before substring-prone plain keywords: "UCSB"
// contains no "LA", but a name carrying both an abbreviation and a city
// should resolve by the abbreviation first.
func TestClassifyCampusOrdering(t *testing.T) {
	c := New(nil)

	if got := c.Classify("UCSB Santa Barbara 2020.csv").Campus; got != "Santa Barbara" {
		t.Errorf("Campus = %q, want Santa Barbara", got)
	}
	// "Santa CLArita" style traps: UCR must match before the "LA" rule sees it.
	if got := c.Classify("FR Eth UCR 2020.csv").Campus; got != "Riverside" {
		t.Errorf("Campus = %q, want Riverside", got)
	}
}

func TestClassifyYear(t *testing.T) {
	c := New(nil)

	cases := []struct {
		name string
		want int
	}{
		{"FR Eth Davis 2023.txt", 2023},
		{"FR Eth Davis 2023-v2.txt", 0}, // year not immediately before extension
		{"FR Eth Davis.txt", 0},
		{"FR Eth Davis 2023", 0},   // no extension
		{"report12345.csv", 0},     // longer numeral is not a year
		{"2022.txt", 2022},         // bare year at start of name
	}

	for _, tc := range cases {
		if got := c.Classify(tc.name).Year; got != tc.want {
			t.Errorf("Classify(%q).Year = %d, want %d", tc.name, got, tc.want)
		}
	}
}

// The classifier must be total: any string yields a result, with fields
// independently absent.
func TestClassifyTotality(t *testing.T) {
	c := New(nil)

	inputs := []string{"", ".", "..", "////", "\x00\xff", "no keywords at all", "2023.csv"}
	for _, in := range inputs {
		res := c.Classify(in)
		if res.Scope != ScopeAll && res.Scope != ScopeCAPublic && res.Scope != ScopeCAPrivate &&
			res.Scope != ScopeNonCA && res.Scope != ScopeForeign {
			t.Errorf("Classify(%q) returned invalid scope %q", in, res.Scope)
		}
	}
}

func TestClassifyUsesBaseName(t *testing.T) {
	c := New(nil)

	// Directory names must not leak into classification.
	res := c.Classify("/data/Berkeley/notes.txt")
	if res.Campus != "" {
		t.Errorf("Campus = %q, want empty (keyword only in directory)", res.Campus)
	}
}
