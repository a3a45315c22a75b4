package main

import (
	"fmt"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"loov.dev/asmlens/internal/diag"
	"loov.dev/asmlens/internal/explorer"
)

type outputEntry struct {
	diag  diag.Diagnostic
	click widget.Clickable
}

// OutputView lists the compiler messages of a slot.
type OutputView struct {
	// OnSelect is called with the 1-based line of a clicked message.
	OnSelect func(line int)

	entries []*outputEntry
	list    widget.List
}

var _ explorer.Output = (*OutputView)(nil)

func NewOutputView() *OutputView {
	view := &OutputView{}
	view.list.Axis = layout.Vertical
	return view
}

func (view *OutputView) Clear() {
	view.entries = nil
	view.list.Position = layout.Position{}
}

func (view *OutputView) Append(d diag.Diagnostic) {
	view.entries = append(view.entries, &outputEntry{diag: d})
}

func (view *OutputView) Layout(th *material.Theme, gtx layout.Context) layout.Dimensions {
	for _, entry := range view.entries {
		if entry.click.Clicked(gtx) && entry.diag.HasLine() && view.OnSelect != nil {
			view.OnSelect(entry.diag.Line)
		}
	}

	return material.List(th, &view.list).Layout(gtx, len(view.entries),
		func(gtx layout.Context, index int) layout.Dimensions {
			entry := view.entries[index]
			text := entry.diag.Message
			if entry.diag.HasLine() {
				text = fmt.Sprintf("%d: %s", entry.diag.Line, text)
			}
			label := material.Body2(th, text)
			label.Font = monoFont
			label.TextSize = th.TextSize * 9 / 10
			label.MaxLines = 1
			if c, ok := severityColors[entry.diag.Severity]; ok && entry.diag.HasLine() {
				label.Color = c
			}

			inset := layout.Inset{Top: 1, Right: 4, Bottom: 1, Left: 4}
			if !entry.diag.HasLine() {
				return inset.Layout(gtx, label.Layout)
			}
			label.Font.Weight = font.Medium
			return material.Clickable(gtx, &entry.click, func(gtx layout.Context) layout.Dimensions {
				return inset.Layout(gtx, label.Layout)
			})
		})
}
