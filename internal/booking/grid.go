package booking

import "strconv"

// SeatGrid is the fixed addressable seat space of a show: Rows rows
// labelled alphabetically (A, B, ..., Z, AA, AB, ...) and Cols
// numbered seats per row starting at 1. A 10x9 grid therefore spans
// A1 through J9. The dimensions come from configuration, not from
// any hard-coded layout.
type SeatGrid struct {
	Rows int
	Cols int
}

// Contains reports whether label addresses a seat inside the grid.
// Labels are case-sensitive: row letters must be upper case and the
// seat number must carry no leading zeros.
func (g SeatGrid) Contains(label string) bool {
	row, col, ok := splitLabel(label)
	if !ok {
		return false
	}
	return row < g.Rows && col >= 1 && col <= g.Cols
}

// RowLabel converts a zero-based row index to its alphabetical label
// using bijective base-26 (A..Z, AA, AB, ...).
func RowLabel(i int) string {
	if i < 0 {
		return ""
	}
	var res []rune
	for {
		res = append([]rune{rune('A' + i%26)}, res...)
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	return string(res)
}

// splitLabel parses a seat label into a zero-based row index and a
// one-based seat number. ok is false for anything that is not an
// upper-case row prefix followed by a plain decimal number.
func splitLabel(label string) (row, col int, ok bool) {
	i := 0
	for i < len(label) && label[i] >= 'A' && label[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(label) {
		return 0, 0, false
	}
	digits := label[i:]
	if digits[0] == '0' {
		return 0, 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, 0, false
	}
	// bijective base-26: A=0 .. Z=25, AA=26, ...
	row = 0
	for j := 0; j < i; j++ {
		row = row*26 + int(label[j]-'A') + 1
	}
	return row - 1, n, true
}
