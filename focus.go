package main

import (
	"image/color"

	"gioui.org/io/event"
	"gioui.org/layout"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// FocusBorderStyle draws a border around a widget while it has keyboard focus.
type FocusBorderStyle struct {
	Tag         event.Tag
	BorderWidth unit.Dp
	Color       color.NRGBA
}

// FocusBorder creates a focus border that follows the focus of tag.
func FocusBorder(th *material.Theme, tag event.Tag) FocusBorderStyle {
	return FocusBorderStyle{
		Tag:         tag,
		BorderWidth: unit.Dp(2),
		Color:       th.ContrastBg,
	}
}

// Layout adds a focus border and styling.
func (focus FocusBorderStyle) Layout(gtx layout.Context, w layout.Widget) layout.Dimensions {
	inset := layout.UniformInset(focus.BorderWidth)
	if focus.Tag == nil || !gtx.Focused(focus.Tag) {
		return inset.Layout(gtx, w)
	}

	return widget.Border{
		Color: focus.Color,
		Width: focus.BorderWidth,
	}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return inset.Layout(gtx, w)
	})
}
