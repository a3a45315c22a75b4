package disasm

import "strconv"

// RainbowColours is the number of rotating highlight classes.
const RainbowColours = 12

// Ordinals assigns a dense rank to every source line referenced by a listing.
type Ordinals struct {
	// Lines lists 0-based source lines in first-referenced order.
	Lines []int
	// Source maps a 0-based source line to its ordinal.
	Source map[int]int
	// Rows maps a row index to the ordinal of its source line.
	Rows map[int]int
}

// Number computes ordinals for rows.
//
// Ordinals follow the order in which lines are first referenced, so the
// same listing always produces the same colours.
func Number(rows []Row) Ordinals {
	var seen LineSet
	for i := range rows {
		if rows[i].HasSource() {
			seen.Add(*rows[i].Source - 1)
		}
	}

	nums := Ordinals{
		Lines:  seen.Lines(),
		Source: make(map[int]int, seen.Len()),
		Rows:   make(map[int]int, len(rows)),
	}
	for ordinal, line := range nums.Lines {
		nums.Source[line] = ordinal
	}
	for i := range rows {
		if rows[i].HasSource() {
			nums.Rows[i] = nums.Source[*rows[i].Source-1]
		}
	}
	return nums
}

// RainbowIndex returns the colour index for an ordinal.
func RainbowIndex(ordinal int) int { return ordinal % RainbowColours }

// RainbowClass returns the line class for an ordinal.
func RainbowClass(ordinal int) string {
	return "rainbow-" + strconv.Itoa(RainbowIndex(ordinal))
}

// ParseRainbowClass returns the colour index encoded in a line class.
func ParseRainbowClass(class string) (int, bool) {
	const prefix = "rainbow-"
	if len(class) <= len(prefix) || class[:len(prefix)] != prefix {
		return 0, false
	}
	v, err := strconv.Atoi(class[len(prefix):])
	if err != nil || v < 0 || v >= RainbowColours {
		return 0, false
	}
	return v, true
}
