package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode/utf8"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"loov.dev/asmlens/internal/diag"
	"loov.dev/asmlens/internal/disasm"
	"loov.dev/asmlens/internal/explorer"
	"loov.dev/asmlens/internal/f32color"
)

var severityColors = map[diag.Severity]color.NRGBA{
	diag.Error:   f32color.NRGBAHex(0xE03030FF),
	diag.Warning: f32color.NRGBAHex(0xE0A020FF),
	diag.Note:    f32color.NRGBAHex(0x4080E0FF),
}

type lineWidget struct {
	line    int
	diag    diag.Diagnostic
	removed bool
}

func (w *lineWidget) Remove() { w.removed = true }

// SourceView is the editable source code.
type SourceView struct {
	annotations
	Editor widget.Editor

	// OnChange is called after the user edits the text.
	OnChange func()

	text    string
	widgets []*lineWidget

	scroll VerticalScroll
	height int
	focus  bool

	mouse  f32.Point
	inside bool
}

var _ explorer.SourceEditor = (*SourceView)(nil)

// NewSourceView creates an empty source editor.
func NewSourceView() *SourceView {
	view := &SourceView{}
	view.lineNumbers = true
	view.resetMarks()
	return view
}

func (view *SourceView) Text() string { return view.text }

// SetText replaces the source. Diagnostics of the old text are dropped.
func (view *SourceView) SetText(text string) {
	view.text = text
	view.Editor.SetText(text)
	view.resetMarks()
	view.dropWidgets()
}

func (view *SourceView) ScrollToLine(line int) { view.scroll.ScrollTo(line) }

// SetSelection selects whole lines.
func (view *SourceView) SetSelection(lines disasm.LineRange) {
	start, end := lineOffset(view.text, lines.From), lineOffset(view.text, lines.To)
	view.Editor.SetCaret(start, end)
	view.scroll.ScrollTo(lines.From)
	view.focus = true
}

// lineOffset returns the rune offset where line starts.
func lineOffset(text string, line int) int {
	offset := 0
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(text, '\n')
		if nl < 0 {
			return offset + utf8.RuneCountInString(text)
		}
		offset += utf8.RuneCountInString(text[:nl+1])
		text = text[nl+1:]
	}
	return offset
}

func (view *SourceView) AddLineWidget(line int, d diag.Diagnostic) explorer.LineWidget {
	w := &lineWidget{line: line, diag: d}
	view.widgets = append(view.widgets, w)
	return w
}

// diagnostics returns the active line widgets for line.
func (view *SourceView) diagnostics(line int) []*lineWidget {
	var found []*lineWidget
	for _, w := range view.widgets {
		if !w.removed && w.line == line {
			found = append(found, w)
		}
	}
	return found
}

func (view *SourceView) dropWidgets() {
	for _, w := range view.widgets {
		w.Remove()
	}
	view.widgets = nil
}

func (view *SourceView) compact() {
	active := view.widgets[:0]
	for _, w := range view.widgets {
		if !w.removed {
			active = append(active, w)
		}
	}
	view.widgets = active
}

type SourceViewStyle struct {
	*SourceView

	Theme *material.Theme

	TextHeight unit.Sp
	LineHeight unit.Sp
}

func (ui SourceViewStyle) Layout(gtx layout.Context) layout.Dimensions {
	gtx.Constraints = layout.Exact(gtx.Constraints.Max)
	size := gtx.Constraints.Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()

	view := ui.SourceView
	view.compact()
	lineHeight := gtx.Metric.Sp(ui.LineHeight)
	if lineHeight <= 0 {
		return layout.Dimensions{Size: size}
	}
	charWidth := CharWidth(ui.Theme, gtx, ui.TextHeight)
	pad := lineHeight / 2

	if view.focus {
		view.focus = false
		gtx.Execute(key.FocusCmd{Tag: &view.Editor})
	}

	caretMoved := false
	for {
		ev, ok := view.Editor.Update(gtx)
		if !ok {
			break
		}
		switch ev.(type) {
		case widget.ChangeEvent:
			caretMoved = true
			if text := view.Editor.Text(); text != view.text {
				view.text = text
				if view.OnChange != nil {
					view.OnChange()
				}
			}
		case widget.SelectEvent:
			caretMoved = true
		}
	}

	bodyHeight := size.Y - lineHeight
	body := gtx
	body.Constraints = layout.Exact(image.Pt(size.X, bodyHeight))
	lineCount := strings.Count(view.text, "\n") + 1
	contentHeight := view.height
	if contentHeight < lineCount*lineHeight {
		contentHeight = lineCount * lineHeight
	}
	view.scroll.Update(body, contentHeight, lineHeight)

	event.Op(gtx.Ops, view)
	view.scroll.Add(gtx.Ops)
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: view,
			Kinds:  pointer.Move | pointer.Enter | pointer.Leave,
		})
		if !ok {
			break
		}
		if ev, ok := ev.(pointer.Event); ok {
			view.mouse, view.inside = ev.Position, ev.Kind != pointer.Leave
		}
	}

	columns, gutterEnd := view.layoutGutters(0, lineCount, charWidth)
	markerWidth := pad
	gutterEnd += markerWidth
	textMin := gutterEnd + pad

	row := -1
	if view.inside && view.mouse.Y < float32(bodyHeight) {
		row = int(math.Floor(float64((view.mouse.Y - view.scroll.Offset) / float32(lineHeight))))
	}

	bodyClip := clip.Rect{Max: image.Pt(size.X, bodyHeight)}.Push(gtx.Ops)
	fillRect(gtx, image.Rect(0, 0, gutterEnd, bodyHeight), gutterBackground)

	first, last := view.scroll.Visible(bodyHeight, lineHeight, lineCount)
	lineDigits := digits(lineCount)
	for i := first; i < last; i++ {
		top := i*lineHeight + int(view.scroll.Offset)
		if c, ok := view.lineColor(i); ok {
			fillRect(gtx, image.Rect(gutterEnd, top, size.X, top+lineHeight), c)
		}
		if ds := view.diagnostics(i); len(ds) > 0 {
			c := severityColors[ds[0].diag.Severity]
			dot := markerWidth / 2
			fillRect(gtx, image.Rect(gutterEnd-markerWidth+dot/2, top+lineHeight/2-dot/2, gutterEnd-dot/2, top+lineHeight/2+dot/2), c)
			c.A = 0x30
			fillRect(gtx, image.Rect(gutterEnd, top, size.X, top+lineHeight), c)
		}
		for _, column := range columns {
			label := ""
			if column.name == "" {
				label = fmt.Sprintf("%*d", lineDigits, i+1)
			} else if m := view.marker(column.name, i); m != nil {
				label = m.Text
			}
			if label == "" {
				continue
			}
			TextLine{
				TopLeft:    image.Pt(int(column.bounds.Min), top),
				Width:      int(column.bounds.Width()),
				Text:       label,
				TextHeight: ui.TextHeight,
				Color:      gutterText,
			}.Layout(ui.Theme, gtx)
		}
	}

	{
		stack := op.Offset(image.Pt(textMin, int(view.scroll.Offset))).Push(gtx.Ops)
		minWidth := max(size.X-textMin, 0)
		minHeight := max(bodyHeight-int(view.scroll.Offset), 0)
		egtx := gtx
		egtx.Constraints = layout.Constraints{
			Min: image.Pt(minWidth, minHeight),
			Max: image.Pt(maxLineWidth, math.MaxInt32/2),
		}
		style := material.Editor(ui.Theme, &view.Editor, "")
		style.Font = monoFont
		style.TextSize = ui.TextHeight
		style.LineHeight = ui.LineHeight
		style.LineHeightScale = 1
		dims := style.Layout(egtx)
		view.height = dims.Size.Y
		stack.Pop()
	}

	if caretMoved {
		caret := view.Editor.CaretCoords()
		y := caret.Y + view.scroll.Offset
		switch {
		case y < float32(lineHeight):
			view.scroll.Offset = float32(lineHeight) - caret.Y
		case y > float32(bodyHeight-lineHeight):
			view.scroll.Offset = float32(bodyHeight-lineHeight) - caret.Y
		}
	}

	view.scroll.Layout(ui.Theme, body, contentHeight, lineHeight)
	bodyClip.Pop()

	var messages []string
	for _, w := range view.diagnostics(row) {
		messages = append(messages, w.diag.Message)
	}
	if len(messages) > 0 {
		fillRect(gtx, image.Rect(0, bodyHeight, size.X, size.Y), secondaryBackground)
		TextLine{
			TopLeft:    image.Pt(pad, bodyHeight),
			Width:      size.X - pad,
			Text:       fmt.Sprintf("%d: %s", row+1, strings.Join(messages, "; ")),
			TextHeight: ui.TextHeight,
			Color:      f32color.Black,
		}.Layout(ui.Theme, gtx)
	}

	return layout.Dimensions{Size: size}
}
