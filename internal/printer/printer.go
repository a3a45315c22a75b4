// Package printer renders a session to a terminal.
package printer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"loov.dev/asmlens/internal/diag"
	"loov.dev/asmlens/internal/disasm"
	"loov.dev/asmlens/internal/explorer"
	"loov.dev/asmlens/internal/f32color"
)

type noHighlight struct{}

func (noHighlight) SetHighlighted(bool) {}

// View records what a session shows in an editor.
type View struct {
	text        string
	classes     map[int][]string
	markers     map[string]map[int]explorer.Marker
	lineNumbers bool
	gutters     []string

	selection disasm.LineRange
	widgets   []*lineWidget
}

var _ explorer.SourceEditor = (*View)(nil)

// NewView creates an empty view.
func NewView() *View {
	return &View{lineNumbers: true, markers: map[string]map[int]explorer.Marker{}}
}

func (v *View) Text() string { return v.text }

// SetText replaces the text and drops markers and line widgets.
func (v *View) SetText(text string) {
	v.text = text
	v.markers = map[string]map[int]explorer.Marker{}
	for _, w := range v.widgets {
		w.Remove()
	}
	v.widgets = nil
}

func (v *View) AddLineClass(line int, class string) {
	if v.classes == nil {
		v.classes = map[int][]string{}
	}
	v.classes[line] = append(v.classes[line], class)
}

func (v *View) ClearLineClasses() { v.classes = nil }

func (v *View) SetGutterMarker(line int, gutter string, marker explorer.Marker) explorer.Highlighter {
	if v.markers[gutter] == nil {
		v.markers[gutter] = map[int]explorer.Marker{}
	}
	v.markers[gutter][line] = marker
	return noHighlight{}
}

// MarkSpan is a no-op, links are not interactive on a terminal.
func (v *View) MarkSpan(explorer.Span, explorer.SpanEvents) explorer.Highlighter {
	return noHighlight{}
}

func (v *View) SetGutters(lineNumbers bool, gutters ...string) {
	v.lineNumbers = lineNumbers
	v.gutters = gutters
}

func (v *View) ScrollToLine(int) {}

func (v *View) SetSelection(lines disasm.LineRange) { v.selection = lines }

type lineWidget struct {
	line    int
	diag    diag.Diagnostic
	removed bool
}

func (w *lineWidget) Remove() { w.removed = true }

func (v *View) AddLineWidget(line int, d diag.Diagnostic) explorer.LineWidget {
	w := &lineWidget{line: line, diag: d}
	v.widgets = append(v.widgets, w)
	return w
}

// Output records compiler messages.
type Output struct {
	Entries []diag.Diagnostic
}

func (o *Output) Clear() { o.Entries = nil }

func (o *Output) Append(d diag.Diagnostic) { o.Entries = append(o.Entries, d) }

// Printer holds terminal views for a session.
type Printer struct {
	Source   *View
	Assembly []*View
	Output   []*Output
}

// New creates a printer with the specified number of slots.
func New(slots int) *Printer {
	p := &Printer{Source: NewView()}
	for i := 0; i < slots; i++ {
		p.Assembly = append(p.Assembly, NewView())
		p.Output = append(p.Output, &Output{})
	}
	return p
}

// UI returns the views to pass to explorer.New.
func (p *Printer) UI() explorer.UI {
	ui := explorer.UI{Source: p.Source}
	for i := range p.Assembly {
		ui.Assembly = append(ui.Assembly, p.Assembly[i])
		ui.Output = append(ui.Output, p.Output[i])
	}
	return ui
}

// Wait dispatches session events until no slot is compiling.
func Wait(ctx context.Context, session *explorer.Session) error {
	for session.Outstanding() > 0 {
		select {
		case ev := <-session.Events():
			session.Dispatch(ev)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Print writes the source and every slot to w.
func (p *Printer) Print(w io.Writer, opts ...termenv.OutputOption) {
	out := termenv.NewOutput(w, opts...)

	header := func(title string) {
		fmt.Fprintln(out, out.String("── "+title+" ──").Bold())
	}

	header("source")
	p.printView(out, p.Source)
	for slot := range p.Assembly {
		header(fmt.Sprintf("slot %d", slot))
		p.printView(out, p.Assembly[slot])
		for _, d := range p.Output[slot].Entries {
			text := d.Message
			if d.HasLine() {
				text = fmt.Sprintf("%d: %s", d.Line, text)
			}
			style := out.String(text)
			switch d.Severity {
			case diag.Error:
				style = style.Foreground(out.Color("1"))
			case diag.Warning:
				style = style.Foreground(out.Color("3"))
			default:
				style = style.Faint()
			}
			fmt.Fprintln(out, style)
		}
	}
}

func (p *Printer) printView(out *termenv.Output, v *View) {
	lines := strings.Split(v.text, "\n")
	width := len(fmt.Sprint(len(lines)))

	widths := make([]int, len(v.gutters))
	for i, gutter := range v.gutters {
		for _, m := range v.markers[gutter] {
			widths[i] = max(widths[i], len(m.Text))
		}
	}

	for i, line := range lines {
		var gutter strings.Builder
		if v.lineNumbers {
			fmt.Fprintf(&gutter, "%*d ", width, i+1)
		}
		for k, name := range v.gutters {
			fmt.Fprintf(&gutter, "%-*s ", widths[k], v.markers[name][i].Text)
		}

		text := out.String(line)
		for _, class := range v.classes[i] {
			if index, ok := disasm.ParseRainbowClass(class); ok {
				text = text.Background(out.Color(f32color.Hex(f32color.Rainbow(index))))
			}
		}
		if v.selection.Contains(i) {
			text = text.Reverse()
		}
		fmt.Fprintf(out, "%s%s", out.String(gutter.String()).Faint(), text)
		for _, w := range v.widgets {
			if !w.removed && w.line == i {
				fmt.Fprintf(out, "  %s", out.String("← "+w.diag.Message).Faint())
			}
		}
		fmt.Fprintln(out)
	}
}
