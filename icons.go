package main

import (
	"gioui.org/widget"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

// CompileIcon is used for compiling immediately.
var CompileIcon = mustIcon(icons.AVPlayArrow)

// ShareIcon is used for copying a link to the current state.
var ShareIcon = mustIcon(icons.SocialShare)

func mustIcon(data []byte) *widget.Icon {
	icon, err := widget.NewIcon(data)
	if err != nil {
		panic(err)
	}
	return icon
}
