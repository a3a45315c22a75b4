package disasm

// LineRange represents a half-open list of lines [From, To).
type LineRange struct{ From, To int }

// SingleLine returns the range that selects exactly one 0-based line.
func SingleLine(line int) LineRange { return LineRange{From: line, To: line + 1} }

// Contains checks whether line is inside the range.
func (r LineRange) Contains(line int) bool { return r.From <= line && line < r.To }
