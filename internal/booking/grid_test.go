package booking

import "testing"

func TestSeatGridContains(t *testing.T) {
	grid := SeatGrid{Rows: 10, Cols: 9}

	cases := []struct {
		label string
		want  bool
	}{
		{"A1", true},
		{"A9", true},
		{"J1", true},
		{"J9", true},
		{"A10", false}, // seat number past the last column
		{"K1", false},  // row past the last row
		{"Z9", false},
		{"a1", false},  // lower-case row
		{"A01", false}, // leading zero
		{"A0", false},
		{"A", false},
		{"7", false},
		{"", false},
		{"A-1", false},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			if got := grid.Contains(tc.label); got != tc.want {
				t.Errorf("Contains(%q) = %v, want %v", tc.label, got, tc.want)
			}
		})
	}
}

func TestSeatGridContainsWideGrid(t *testing.T) {
	// 28 rows spills into two-letter labels: row 27 is AB.
	grid := SeatGrid{Rows: 28, Cols: 12}

	for _, label := range []string{"Z12", "AA1", "AB12"} {
		if !grid.Contains(label) {
			t.Errorf("Contains(%q) = false, want true", label)
		}
	}
	if grid.Contains("AC1") {
		t.Error("Contains(\"AC1\") = true, want false")
	}
}

func TestRowLabel(t *testing.T) {
	cases := []struct {
		row  int
		want string
	}{
		{0, "A"},
		{9, "J"},
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
		if got := RowLabel(tc.row); got != tc.want {
			t.Errorf("RowLabel(%d) = %q, want %q", tc.row, got, tc.want)
		}
	}
}

func TestRowLabelRoundTrip(t *testing.T) {
	// Every generated label must be accepted by a grid tall enough to
	// include its row.
	for i := 0; i < 800; i++ {
		label := RowLabel(i) + "1"
		grid := SeatGrid{Rows: i + 1, Cols: 1}
		if !grid.Contains(label) {
			t.Fatalf("grid with %d rows rejects its own last row label %q", i+1, label)
		}
		if i > 0 {
			smaller := SeatGrid{Rows: i, Cols: 1}
			if smaller.Contains(label) {
				t.Fatalf("grid with %d rows accepts out-of-range label %q", i, label)
			}
		}
	}
}
