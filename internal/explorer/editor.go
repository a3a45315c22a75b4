package explorer

import (
	"loov.dev/asmlens/internal/diag"
	"loov.dev/asmlens/internal/disasm"
)

// Gutter names understood by Editor.SetGutters.
const (
	GutterAddress = "address"
	GutterOpcodes = "opcodes"
)

// Marker is shown in a gutter next to a line.
type Marker struct {
	Text string
	// Title is shown when hovering over the marker.
	Title string
}

// Span replaces the characters [From, To) of Line with a link Label.
type Span struct {
	Line     int
	From, To int
	Label    string
}

// SpanEvents are invoked by the editor when the user interacts with a span.
// Either may be nil.
type SpanEvents struct {
	Hover func(entered bool)
	Click func()
}

// Highlighter toggles the highlighted look of a marker or span.
type Highlighter interface {
	SetHighlighted(on bool)
}

// Editor is the capability needed from a text view toolkit.
// All line numbers are 0-based.
type Editor interface {
	Text() string
	// SetText replaces the content and drops all markers and spans.
	SetText(text string)

	AddLineClass(line int, class string)
	ClearLineClasses()

	SetGutterMarker(line int, gutter string, marker Marker) Highlighter
	MarkSpan(span Span, events SpanEvents) Highlighter
	// SetGutters selects the visible gutters.
	SetGutters(lineNumbers bool, gutters ...string)

	ScrollToLine(line int)
}

// LineWidget is an inline element attached below a line.
type LineWidget interface {
	Remove()
}

// SourceEditor is the editable source view.
type SourceEditor interface {
	Editor

	SetSelection(lines disasm.LineRange)
	AddLineWidget(line int, d diag.Diagnostic) LineWidget
}

// Output lists compiler messages for a slot.
// Entries with a line should be clickable and call Session.SelectSourceLine.
type Output interface {
	Clear()
	Append(d diag.Diagnostic)
}

// UI bundles the views of a session. Assembly and Output have one entry per slot.
type UI struct {
	Source   SourceEditor
	Assembly []Editor
	Output   []Output
}
