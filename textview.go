package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"loov.dev/asmlens/internal/disasm"
	"loov.dev/asmlens/internal/explorer"
	"loov.dev/asmlens/internal/f32color"
)

var (
	gutterBackground = f32color.Gray8(0xF0)
	gutterText       = f32color.Gray8(0x80)
	linkColor        = f32color.NRGBAHex(0x2050C0FF)
	linkHighlight    = f32color.NRGBAHex(0xFFE040A0)
	hoverShade       = color.NRGBA{A: 0x12}
)

type gutterMarker struct {
	explorer.Marker
	highlighted bool
}

func (m *gutterMarker) SetHighlighted(on bool) { m.highlighted = on }

type spanMark struct {
	explorer.Span
	events      explorer.SpanEvents
	highlighted bool
}

func (s *spanMark) SetHighlighted(on bool) { s.highlighted = on }

// annotations holds the decorations shared by the code views.
type annotations struct {
	classes     map[int][]string
	markers     map[string]map[int]*gutterMarker
	spans       map[int][]*spanMark
	lineNumbers bool
	gutters     []string
}

func (a *annotations) resetMarks() {
	a.markers = map[string]map[int]*gutterMarker{}
	a.spans = map[int][]*spanMark{}
}

func (a *annotations) AddLineClass(line int, class string) {
	if a.classes == nil {
		a.classes = map[int][]string{}
	}
	a.classes[line] = append(a.classes[line], class)
}

func (a *annotations) ClearLineClasses() { a.classes = nil }

func (a *annotations) SetGutterMarker(line int, gutter string, marker explorer.Marker) explorer.Highlighter {
	if a.markers == nil {
		a.resetMarks()
	}
	if a.markers[gutter] == nil {
		a.markers[gutter] = map[int]*gutterMarker{}
	}
	m := &gutterMarker{Marker: marker}
	a.markers[gutter][line] = m
	return m
}

func (a *annotations) MarkSpan(span explorer.Span, events explorer.SpanEvents) explorer.Highlighter {
	if a.spans == nil {
		a.resetMarks()
	}
	s := &spanMark{Span: span, events: events}
	a.spans[span.Line] = append(a.spans[span.Line], s)
	return s
}

func (a *annotations) SetGutters(lineNumbers bool, gutters ...string) {
	a.lineNumbers = lineNumbers
	a.gutters = gutters
}

// lineColor returns the background for the line from its rainbow class.
func (a *annotations) lineColor(line int) (color.NRGBA, bool) {
	var c color.NRGBA
	found := false
	for _, class := range a.classes[line] {
		if index, ok := disasm.ParseRainbowClass(class); ok {
			c, found = f32color.Rainbow(index), true
		}
	}
	return c, found
}

// markerWidth returns the widest marker text in gutter, in characters.
func (a *annotations) markerWidth(gutter string) int {
	width := 0
	for _, m := range a.markers[gutter] {
		if n := len(m.Text); n > width {
			width = n
		}
	}
	return width
}

func (a *annotations) marker(gutter string, line int) *gutterMarker {
	return a.markers[gutter][line]
}

// gutterColumn is a laid out gutter; an empty name is the line number column.
type gutterColumn struct {
	name   string
	bounds Bounds
}

// layoutGutters computes the gutter columns starting at x and returns the end.
func (a *annotations) layoutGutters(x, lineCount int, charWidth float32) ([]gutterColumn, int) {
	var columns []gutterColumn
	if a.lineNumbers {
		w := int(float32(digits(lineCount)+1) * charWidth)
		columns = append(columns, gutterColumn{bounds: BoundsWidth(x, w)})
		x += w
	}
	for _, name := range a.gutters {
		w := int(float32(a.markerWidth(name)+1) * charWidth)
		columns = append(columns, gutterColumn{name: name, bounds: BoundsWidth(x, w)})
		x += w
	}
	return columns, x
}

// TextView is a read-only code view with gutters, line colouring and links.
type TextView struct {
	annotations
	lines []string

	// Syntax selects the dialect used to decode hovered machine code.
	Syntax disasm.Syntax

	scroll VerticalScroll

	mouse   f32.Point
	inside  bool
	hovered *spanMark
}

var _ explorer.Editor = (*TextView)(nil)

// NewTextView creates an empty view showing line numbers.
func NewTextView() *TextView {
	view := &TextView{}
	view.lineNumbers = true
	view.SetText("")
	return view
}

func (view *TextView) Text() string { return strings.Join(view.lines, "\n") }

func (view *TextView) SetText(text string) {
	view.lines = strings.Split(text, "\n")
	view.resetMarks()
	view.hovered = nil
}

func (view *TextView) ScrollToLine(line int) { view.scroll.ScrollTo(line) }

// status describes the hovered row.
func (view *TextView) status(row int) string {
	if view.hovered != nil {
		return "jump to " + view.hovered.Label
	}
	if row < 0 {
		return ""
	}
	var address, opcodes string
	if m := view.marker(explorer.GutterAddress, row); m != nil {
		address = m.Text
	}
	if m := view.marker(explorer.GutterOpcodes, row); m != nil {
		opcodes = m.Title
	}
	if opcodes == "" {
		return ""
	}
	pc, _ := strconv.ParseUint(address, 16, 64)
	decoded := disasm.Decode(parseOpcodes(opcodes), pc, view.Syntax)
	return strings.TrimSpace(fmt.Sprintf("%s  %s  %s", address, opcodes, decoded))
}

func parseOpcodes(groups string) []uint8 {
	var ops []uint8
	for _, field := range strings.Fields(groups) {
		v, err := strconv.ParseUint(field, 16, 8)
		if err != nil {
			return nil
		}
		ops = append(ops, uint8(v))
	}
	return ops
}

type TextViewStyle struct {
	*TextView

	Theme *material.Theme

	TextHeight unit.Sp
	LineHeight unit.Sp
}

func (ui TextViewStyle) Layout(gtx layout.Context) layout.Dimensions {
	gtx.Constraints = layout.Exact(gtx.Constraints.Max)
	size := gtx.Constraints.Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()

	view := ui.TextView
	lineHeight := gtx.Metric.Sp(ui.LineHeight)
	if lineHeight <= 0 {
		return layout.Dimensions{Size: size}
	}
	charWidth := CharWidth(ui.Theme, gtx, ui.TextHeight)
	pad := lineHeight / 2

	bodyHeight := size.Y - lineHeight
	body := gtx
	body.Constraints = layout.Exact(image.Pt(size.X, bodyHeight))

	contentHeight := len(view.lines) * lineHeight
	view.scroll.Update(body, contentHeight, lineHeight)

	clicked := false
	event.Op(gtx.Ops, view)
	view.scroll.Add(gtx.Ops)
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: view,
			Kinds:  pointer.Move | pointer.Press | pointer.Enter | pointer.Leave,
		})
		if !ok {
			break
		}
		if ev, ok := ev.(pointer.Event); ok {
			switch ev.Kind {
			case pointer.Move, pointer.Enter:
				view.mouse, view.inside = ev.Position, true
			case pointer.Press:
				view.mouse, view.inside = ev.Position, true
				clicked = true
			case pointer.Leave:
				view.inside = false
			}
		}
	}

	columns, gutterEnd := view.layoutGutters(0, len(view.lines), charWidth)
	text := BoundsWidth(gutterEnd+pad, size.X-gutterEnd-pad)

	row := -1
	if view.inside && view.mouse.Y < float32(bodyHeight) {
		row = int(math.Floor(float64((view.mouse.Y - view.scroll.Offset) / float32(lineHeight))))
		if !InRange(row, len(view.lines)) {
			row = -1
		}
	}

	var hovered *spanMark
	if row >= 0 && text.Contains(view.mouse.X) {
		col := text.Column(view.mouse.X, charWidth)
		for _, span := range view.spans[row] {
			if span.From <= col && col < span.To {
				hovered = span
				break
			}
		}
	}
	if hovered != view.hovered {
		if view.hovered != nil && view.hovered.events.Hover != nil {
			view.hovered.events.Hover(false)
		}
		view.hovered = hovered
		if hovered != nil && hovered.events.Hover != nil {
			hovered.events.Hover(true)
		}
	}
	if hovered != nil && hovered.events.Click != nil {
		pointer.CursorPointer.Add(gtx.Ops)
		if clicked {
			hovered.events.Click()
			gtx.Execute(op.InvalidateCmd{})
		}
	}

	bodyClip := clip.Rect{Max: image.Pt(size.X, bodyHeight)}.Push(gtx.Ops)
	fillRect(gtx, image.Rect(0, 0, gutterEnd, bodyHeight), gutterBackground)

	first, last := view.scroll.Visible(bodyHeight, lineHeight, len(view.lines))
	lineDigits := digits(len(view.lines))
	for i := first; i < last; i++ {
		top := i*lineHeight + int(view.scroll.Offset)

		if c, ok := view.lineColor(i); ok {
			fillRect(gtx, image.Rect(gutterEnd, top, size.X, top+lineHeight), c)
		}
		if i == row {
			fillRect(gtx, image.Rect(gutterEnd, top, size.X, top+lineHeight), hoverShade)
		}

		for _, column := range columns {
			label, bold := "", false
			if column.name == "" {
				label = fmt.Sprintf("%*d", lineDigits, i+1)
			} else if m := view.marker(column.name, i); m != nil {
				label, bold = m.Text, m.highlighted
				if m.highlighted {
					fillRect(gtx, image.Rect(int(column.bounds.Min), top, int(column.bounds.Max), top+lineHeight), linkHighlight)
				}
			}
			if label == "" {
				continue
			}
			TextLine{
				TopLeft:    image.Pt(int(column.bounds.Min), top),
				Width:      int(column.bounds.Width()),
				Text:       label,
				TextHeight: ui.TextHeight,
				Bold:       bold,
				Color:      gutterText,
			}.Layout(ui.Theme, gtx)
		}

		for _, span := range view.spans[i] {
			x0 := int(text.Min + float32(span.From)*charWidth)
			x1 := int(text.Min + float32(span.To)*charWidth)
			if span.highlighted {
				fillRect(gtx, image.Rect(x0, top, x1, top+lineHeight), linkHighlight)
			}
			underline := gtx.Metric.Dp(1)
			fillRect(gtx, image.Rect(x0, top+lineHeight-underline, x1, top+lineHeight), linkColor)
		}

		TextLine{
			TopLeft:    image.Pt(int(text.Min), top),
			Width:      int(text.Width()),
			Text:       view.lines[i],
			TextHeight: ui.TextHeight,
			Bold:       i == row,
			Color:      f32color.Black,
		}.Layout(ui.Theme, gtx)
	}
	view.scroll.Layout(ui.Theme, body, contentHeight, lineHeight)
	bodyClip.Pop()

	if status := view.status(row); status != "" {
		fillRect(gtx, image.Rect(0, bodyHeight, size.X, size.Y), secondaryBackground)
		TextLine{
			TopLeft:    image.Pt(pad, bodyHeight),
			Width:      size.X - pad,
			Text:       status,
			TextHeight: ui.TextHeight,
			Color:      f32color.Black,
		}.Layout(ui.Theme, gtx)
	}

	return layout.Dimensions{Size: size}
}
