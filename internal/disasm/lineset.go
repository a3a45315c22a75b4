package disasm

import (
	"sort"

	"golang.org/x/exp/slices"
)

// LineSet represents a set of lines that remembers insertion order.
type LineSet struct {
	order  []int
	sorted []int
}

// Add adds line to the set. Adding an existing line does not change its position.
func (rs *LineSet) Add(line int) bool {
	at := sort.SearchInts(rs.sorted, line)
	if at < len(rs.sorted) && rs.sorted[at] == line {
		return false
	}
	rs.sorted = slices.Insert(rs.sorted, at, line)
	rs.order = append(rs.order, line)
	return true
}

// Contains checks whether line has been added.
func (rs *LineSet) Contains(line int) bool {
	_, ok := slices.BinarySearch(rs.sorted, line)
	return ok
}

// Len returns the number of distinct lines.
func (rs *LineSet) Len() int { return len(rs.order) }

// Lines returns the lines in the order they were first added.
func (rs *LineSet) Lines() []int { return slices.Clone(rs.order) }
