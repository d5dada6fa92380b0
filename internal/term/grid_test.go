package term

import "testing"

func TestColumnLabel(t *testing.T) {
	cases := []struct {
		col  int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
		{-1, ""},
	}
	for _, tc := range cases {
		if got := ColumnLabel(tc.col); got != tc.want {
			t.Errorf("ColumnLabel(%d) = %q, want %q", tc.col, got, tc.want)
		}
	}
}

func TestCellName(t *testing.T) {
	if got := CellName(1, 6); got != "B7" {
		t.Fatalf("CellName(1, 6) = %q, want B7", got)
	}
	if got := CellName(0, 0); got != "A1" {
		t.Fatalf("CellName(0, 0) = %q, want A1", got)
	}
}

func TestFormatCell(t *testing.T) {
	cases := []struct {
		value string
		width int
		want  string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"abc", 3, "abc"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
		{"", 3, "   "},
		{"héllo", 4, "hél…"},
	}
	for _, tc := range cases {
		if got := FormatCell(tc.value, tc.width); got != tc.want {
			t.Errorf("FormatCell(%q, %d) = %q, want %q", tc.value, tc.width, got, tc.want)
		}
	}
}

func TestGutterWidth(t *testing.T) {
	if got := gutterWidth(8); got != 3 {
		t.Fatalf("gutterWidth(8) = %d, want 3", got)
	}
	if got := gutterWidth(99); got != 4 {
		t.Fatalf("gutterWidth(99) = %d, want 4", got)
	}
	if got := gutterWidth(-1); got != 3 {
		t.Fatalf("gutterWidth(-1) = %d, want 3", got)
	}
}

func TestVisibleCols(t *testing.T) {
	if got := visibleCols(80, 4, 9); got != 8 {
		t.Fatalf("visibleCols(80, 4, 9) = %d, want 8", got)
	}
	if got := visibleCols(5, 4, 9); got != 0 {
		t.Fatalf("visibleCols(5, 4, 9) = %d, want 0", got)
	}
	if got := visibleCols(80, 4, 0); got != 0 {
		t.Fatalf("visibleCols with zero column width = %d, want 0", got)
	}
}
