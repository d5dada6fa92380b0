package sheet

import "testing"

func TestDocumentValueOutOfRangeIsAbsent(t *testing.T) {
	doc := FromRows([][]string{{"a", "b"}, {"c"}})

	cases := []struct {
		name string
		col  int
		row  int
		want string
	}{
		{"present", 1, 0, "b"},
		{"short row", 1, 1, ""},
		{"past last row", 0, 5, ""},
		{"past last column", 9, 0, ""},
		{"negative column", -1, 0, ""},
		{"negative row", 0, -1, ""},
	}
	for _, tc := range cases {
		if got := doc.Value(tc.col, tc.row); got != tc.want {
			t.Fatalf("%s: Value(%d, %d) = %q, want %q", tc.name, tc.col, tc.row, got, tc.want)
		}
	}
}

func TestSetGrowingFillsWithAbsentCells(t *testing.T) {
	var doc Document
	doc.setGrowing(5, 5, "x")

	if got := doc.Value(5, 5); got != "x" {
		t.Fatalf("expected written value, got %q", got)
	}
	cols, rows := doc.Size()
	if rows != 6 {
		t.Fatalf("expected 6 rows, got %d", rows)
	}
	if cols != 6 {
		t.Fatalf("expected 6 columns, got %d", cols)
	}
	for c := 0; c < 5; c++ {
		for r := 0; r < 5; r++ {
			if got := doc.Value(c, r); got != "" {
				t.Fatalf("expected absent at (%d, %d), got %q", c, r, got)
			}
		}
	}
}

func TestSetGrowingNeverShrinks(t *testing.T) {
	var doc Document
	doc.setGrowing(3, 3, "far")
	doc.setGrowing(0, 0, "near")

	if _, rows := doc.Size(); rows != 4 {
		t.Fatalf("expected grid to keep 4 rows, got %d", rows)
	}
	if got := doc.Value(3, 3); got != "far" {
		t.Fatalf("expected earlier write preserved, got %q", got)
	}
}

func TestRowsRoundTrip(t *testing.T) {
	values := [][]string{{"a", ""}, {}, {"", "", "c"}}
	doc := FromRows(values)
	got := doc.Rows()

	if len(got) != len(values) {
		t.Fatalf("expected %d rows, got %d", len(values), len(got))
	}
	for r := range values {
		if len(got[r]) != len(values[r]) {
			t.Fatalf("row %d: expected %d cells, got %d", r, len(values[r]), len(got[r]))
		}
		for c := range values[r] {
			if got[r][c] != values[r][c] {
				t.Fatalf("cell (%d, %d): got %q, want %q", c, r, got[r][c], values[r][c])
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	doc := FromRows([][]string{{"a"}})
	clone := doc.Clone()
	doc.setGrowing(0, 0, "changed")

	if got := clone.Value(0, 0); got != "a" {
		t.Fatalf("clone observed a write to the original: %q", got)
	}
}
