package main

import (
	"image"
	"image/color"
	"math"
	"time"

	"gioui.org/font"
	"gioui.org/gesture"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// TextLine is a single-line of text.
type TextLine struct {
	TopLeft    image.Point
	Width      int
	Text       string
	TextHeight unit.Sp
	Italic     bool
	Bold       bool
	Color      color.NRGBA
}

// Layout draws the text.
func (line TextLine) Layout(th *material.Theme, gtx layout.Context) layout.Dimensions {
	gtx.Constraints.Min = image.Point{}
	gtx.Constraints.Max.X = maxLineWidth
	gtx.Constraints.Max.Y = math.MaxInt32

	defer op.Offset(line.TopLeft).Push(gtx.Ops).Pop()
	if line.Width > 0 {
		defer clip.Rect{Max: image.Pt(line.Width, gtx.Metric.Sp(line.TextHeight)*2)}.Push(gtx.Ops).Pop()
	}

	fnt := monoFont
	if line.Italic {
		fnt.Style = font.Italic
	}
	if line.Bold {
		fnt.Weight = font.Bold
	}
	return widget.Label{MaxLines: 1}.Layout(gtx, th.Shaper, fnt, line.TextHeight, line.Text, colorMaterial(gtx.Ops, line.Color))
}

// colorMaterial records a paint operation for text.
func colorMaterial(ops *op.Ops, c color.NRGBA) op.CallOp {
	m := op.Record(ops)
	paint.ColorOp{Color: c}.Add(ops)
	return m.Stop()
}

// CharWidth measures the advance of a monospace character.
func CharWidth(th *material.Theme, gtx layout.Context, size unit.Sp) float32 {
	const sample = "0000000000"
	gtx.Constraints.Min = image.Point{}
	gtx.Constraints.Max = image.Pt(maxLineWidth, math.MaxInt32)

	m := op.Record(gtx.Ops)
	dims := widget.Label{MaxLines: 1}.Layout(gtx, th.Shaper, monoFont, size, sample, op.CallOp{})
	m.Stop()
	return float32(dims.Size.X) / float32(len(sample))
}

// fillRect fills a rectangle with a color.
func fillRect(gtx layout.Context, r image.Rectangle, c color.NRGBA) {
	paint.FillShape(gtx.Ops, c, clip.Rect(r).Op())
}

type VerticalLine struct {
	Width unit.Dp
	Color color.NRGBA
}

func (line VerticalLine) Layout(gtx layout.Context) layout.Dimensions {
	size := image.Point{
		X: gtx.Metric.Dp(line.Width),
		Y: gtx.Constraints.Min.Y,
	}
	paint.FillShape(gtx.Ops, line.Color, clip.Rect{Max: size}.Op())
	return layout.Dimensions{
		Size: size,
	}
}

type HorizontalLine struct {
	Height unit.Dp
	Color  color.NRGBA
}

func (line HorizontalLine) Layout(gtx layout.Context) layout.Dimensions {
	size := image.Point{
		X: gtx.Constraints.Min.X,
		Y: gtx.Metric.Dp(line.Height),
	}
	paint.FillShape(gtx.Ops, line.Color, clip.Rect{Max: size}.Op())
	return layout.Dimensions{
		Size: size,
	}
}

type ScrollAnimation struct {
	active   bool
	from, to float32
	duration time.Duration
	start    time.Time
}

func (anim *ScrollAnimation) Start(gtx layout.Context, from, to float32, duration time.Duration) {
	anim.active = true
	anim.from = from
	anim.to = to
	anim.duration = duration
	anim.start = gtx.Now
	gtx.Execute(op.InvalidateCmd{})
}

func (anim *ScrollAnimation) Stop() { anim.active = false }

func (anim *ScrollAnimation) Update(gtx layout.Context) (float32, bool) {
	if !anim.active {
		return anim.to, false
	}
	gtx.Execute(op.InvalidateCmd{})

	elapsed := gtx.Now.Sub(anim.start)
	if elapsed > anim.duration {
		anim.active = false
		return anim.to, true
	}

	progress := float32(elapsed) / float32(anim.duration)
	progress = easeInOutCubic(progress)

	pos := anim.from + progress*(anim.to-anim.from)
	return pos, true
}

func easeInOutCubic(t float32) float32 {
	if t < .5 {
		return 4 * t * t * t
	}
	return (t-1)*(2*t-2)*(2*t-2) + 1
}

// VerticalScroll tracks the scroll position of content taller than its view.
//
// Offset is added to content coordinates, so it is zero at the top and
// negative when scrolled down.
type VerticalScroll struct {
	Offset float32

	gesture gesture.Scroll
	bar     widget.Scrollbar
	anim    ScrollAnimation

	// target is a line to scroll to once the line height is known.
	target    int
	hasTarget bool
}

// ScrollTo animates so that line becomes visible.
func (scroll *VerticalScroll) ScrollTo(line int) {
	scroll.target = line
	scroll.hasTarget = true
}

// Update applies input from the previous frame and clamps the offset.
// It must be called before drawing the content.
func (scroll *VerticalScroll) Update(gtx layout.Context, contentHeight, lineHeight int) {
	viewHeight := float32(gtx.Constraints.Max.Y)
	contentTop := float32(-lineHeight)
	contentBot := float32(contentHeight + lineHeight)

	if scroll.hasTarget {
		scroll.hasTarget = false
		top := float32(scroll.target * lineHeight)
		if top+scroll.Offset < 0 || top+scroll.Offset+float32(lineHeight) > viewHeight {
			scroll.anim.Start(gtx, scroll.Offset, viewHeight/3-top, 150*time.Millisecond)
		}
	}
	if offset, ok := scroll.anim.Update(gtx); ok {
		scroll.Offset = offset
	}

	if distance := scroll.bar.ScrollDistance(); distance != 0 {
		scroll.Offset -= distance * (contentBot - contentTop)
		scroll.anim.Stop()
	}
	if distance := scroll.gesture.Update(gtx.Metric, gtx.Source, gtx.Now, gesture.Vertical,
		pointer.ScrollRange{},
		pointer.ScrollRange{Min: -1000, Max: 1000},
	); distance != 0 {
		scroll.Offset -= float32(distance)
		scroll.anim.Stop()
	}

	if -scroll.Offset < contentTop {
		scroll.Offset = -contentTop
		scroll.anim.Stop()
	}
	if -scroll.Offset+viewHeight > contentBot {
		if contentBot < viewHeight {
			scroll.Offset = -contentTop
		} else {
			scroll.Offset = viewHeight - contentBot
		}
		scroll.anim.Stop()
	}
}

// Add registers for scroll input. It should be called on the area that
// contains the content, before the content is drawn.
func (scroll *VerticalScroll) Add(ops *op.Ops) {
	scroll.gesture.Add(ops)
}

// Layout draws a scrollbar along the right edge.
func (scroll *VerticalScroll) Layout(th *material.Theme, gtx layout.Context, contentHeight, lineHeight int) {
	size := gtx.Constraints.Max

	contentTop := float32(-lineHeight)
	contentBot := float32(contentHeight + lineHeight)
	viewTop := -scroll.Offset
	viewBot := -scroll.Offset + float32(size.Y)

	width := gtx.Metric.Dp(10)
	defer op.Offset(image.Pt(size.X-width, 0)).Push(gtx.Ops).Pop()
	gtx.Constraints = layout.Exact(image.Pt(width, size.Y))
	material.Scrollbar(th, &scroll.bar).Layout(gtx, layout.Vertical,
		(viewTop-contentTop)/(contentBot-contentTop),
		(viewBot-contentTop)/(contentBot-contentTop),
	)
}

// Visible returns the range of lines that intersect the view.
func (scroll *VerticalScroll) Visible(viewHeight, lineHeight, count int) (first, last int) {
	if lineHeight <= 0 {
		return 0, 0
	}
	first = int(-scroll.Offset) / lineHeight
	if first < 0 {
		first = 0
	}
	last = first + viewHeight/lineHeight + 2
	if last > count {
		last = count
	}
	return first, last
}
