package main

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// NewVerticalSelectList creates a new select list with the specified row height.
func NewVerticalSelectList(rowHeight unit.Dp) SelectList {
	return SelectList{
		List: widget.List{
			List: layout.List{Axis: layout.Vertical},
		},
		Hovered:   -1,
		RowHeight: rowHeight,
	}
}

// SelectList is a keyboard and pointer navigable list with fixed height rows.
type SelectList struct {
	widget.List

	Selected int
	Hovered  int

	RowHeight unit.Dp

	focused bool
}

// Focused returns true when the list is in focus.
func (list *SelectList) Focused() bool { return list.focused }

// rowHeight returns the height of a single row in pixels.
func (list *SelectList) rowHeight(th *material.Theme, gtx layout.Context) int {
	if h := gtx.Metric.Dp(list.RowHeight); h > 0 {
		return h
	}
	return gtx.Metric.Sp(th.TextSize)
}

// Update processes input and reports whether the selection moved.
// It must be called before the list is laid out in the frame.
func (list *SelectList) Update(gtx layout.Context, rows, rowHeight int) bool {
	moved := false
	var pointerAt f32.Point
	pressed, hovered := false, false

	for {
		ev, ok := gtx.Event(
			key.FocusFilter{Target: list},
			key.Filter{Focus: list, Name: key.NameUpArrow},
			key.Filter{Focus: list, Name: key.NameDownArrow},
			key.Filter{Focus: list, Name: key.NameHome},
			key.Filter{Focus: list, Name: key.NameEnd},
			key.Filter{Focus: list, Name: key.NamePageUp},
			key.Filter{Focus: list, Name: key.NamePageDown},
			pointer.Filter{Target: list, Kinds: pointer.Press | pointer.Move | pointer.Leave | pointer.Cancel},
		)
		if !ok {
			break
		}
		switch ev := ev.(type) {
		case key.Event:
			if ev.State != key.Press {
				continue
			}
			if list.move(list.keyOffset(ev.Name, rows), rows) {
				moved = true
			}

		case key.FocusEvent:
			if list.focused != ev.Focus {
				list.focused = ev.Focus
				gtx.Execute(op.InvalidateCmd{})
			}

		case pointer.Event:
			switch ev.Kind {
			case pointer.Press:
				if !list.focused {
					gtx.Execute(key.FocusCmd{Tag: list})
				}
				pressed, pointerAt = true, ev.Position
			case pointer.Move:
				hovered, pointerAt = true, ev.Position
			case pointer.Leave, pointer.Cancel:
				list.Hovered = -1
			}
		}
	}

	if pressed || hovered {
		row := list.rowAt(pointerAt.Y, rowHeight)
		if InRange(row, rows) {
			if hovered {
				list.Hovered = row
			}
			if pressed && list.Selected != row {
				list.Selected = row
				moved = true
			}
		}
	}

	if moved {
		list.scrollIntoView()
	}
	return moved
}

// keyOffset converts a navigation key into a row offset.
func (list *SelectList) keyOffset(name key.Name, rows int) int {
	switch name {
	case key.NameHome:
		return -rows
	case key.NameEnd:
		return rows
	case key.NameUpArrow:
		return -1
	case key.NameDownArrow:
		return 1
	case key.NamePageUp:
		return -list.List.Position.Count
	case key.NamePageDown:
		return list.List.Position.Count
	}
	return 0
}

// move shifts the selection by offset rows, clamped to the list.
func (list *SelectList) move(offset, rows int) bool {
	if offset == 0 || rows == 0 {
		return false
	}
	target := min(max(list.Selected+offset, 0), rows-1)
	if target == list.Selected {
		return false
	}
	list.Selected = target
	return true
}

// rowAt returns the row under the vertical position y, relative to the list.
func (list *SelectList) rowAt(y float32, rowHeight int) int {
	if rowHeight <= 0 {
		return -1
	}
	pos := list.List.Position
	return (pos.First*rowHeight + pos.Offset + int(y)) / rowHeight
}

// scrollIntoView keeps one row of context around the selection.
func (list *SelectList) scrollIntoView() {
	pos := &list.List.Position
	if list.Selected < 0 {
		return
	}
	if pos.Count == 0 {
		// not laid out yet
		*pos = layout.Position{First: max(list.Selected-1, 0)}
		return
	}
	switch {
	case list.Selected < pos.First+1:
		*pos = layout.Position{First: list.Selected - 1}
	case pos.First+pos.Count-1 <= list.Selected:
		*pos = layout.Position{First: list.Selected - pos.Count + 2}
	}
}

// Layout draws the list with a focus border.
func (list *SelectList) Layout(th *material.Theme, gtx layout.Context, rows int, row layout.ListElement) layout.Dimensions {
	return FocusBorder(th, list).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		size := gtx.Constraints.Max
		gtx.Constraints = layout.Exact(size)
		defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()

		event.Op(gtx.Ops, list)
		list.focused = gtx.Focused(list)

		rowHeight := list.rowHeight(th, gtx)
		list.Update(gtx, rows, rowHeight)

		style := material.List(th, &list.List)
		style.AnchorStrategy = material.Overlay
		return style.Layout(gtx, rows, func(gtx layout.Context, index int) layout.Dimensions {
			gtx.Constraints = layout.Exact(image.Point{X: gtx.Constraints.Max.X, Y: rowHeight})
			return row(gtx, index)
		})
	})
}

// ListRow is the text of a single row. Detail is drawn faded on the right.
type ListRow struct {
	Text   string
	Detail string
}

// ListRowStyle creates a row drawer that reacts to hover and selection.
func ListRowStyle(th *material.Theme, state *SelectList, rowAt func(int) ListRow) layout.ListElement {
	return func(gtx layout.Context, index int) layout.Dimensions {
		defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()

		var bg color.NRGBA
		fg := th.Fg
		weight := font.Normal

		switch {
		case state.Selected == index:
			if state.Focused() {
				bg, fg = th.ContrastBg, th.ContrastFg
			}
			weight = font.Black
		case state.Hovered == index:
			bg = th.ContrastBg
			bg.A /= 4
		}
		if bg != (color.NRGBA{}) {
			paint.Fill(gtx.Ops, bg)
		}

		row := rowAt(index)
		textSize := th.TextSize * 8 / 10
		inset := layout.Inset{Top: 1, Right: 4, Bottom: 1, Left: 4}
		return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					label := material.Body1(th, row.Text)
					label.Color = fg
					label.MaxLines = 1
					label.TextSize = textSize
					label.Font.Weight = weight
					gtx.Constraints.Max.X = min(gtx.Constraints.Max.X, maxLineWidth)
					return label.Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					if row.Detail == "" {
						return layout.Dimensions{}
					}
					detail := material.Body2(th, row.Detail)
					detail.Color = fg
					detail.Color.A /= 2
					detail.MaxLines = 1
					detail.TextSize = textSize * 9 / 10
					return detail.Layout(gtx)
				}),
			)
		})
	}
}
