package main

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/font/opentype"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

type Windows struct {
	active sync.WaitGroup
}

func (windows *Windows) Open(title string, sizeDp image.Point, run func(*app.Window) error) {
	windows.active.Add(1)
	go func() {
		defer windows.active.Done()

		window := new(app.Window)
		window.Option(
			app.Title(title),
			app.Size(unit.Dp(sizeDp.X), unit.Dp(sizeDp.Y)),
		)
		if err := run(window); err != nil {
			log.Errorf("window %q: %v", title, err)
		}
	}()
}

func (windows *Windows) Wait() {
	windows.active.Wait()
}

// monoFont is used for code, replaced by LoadFonts when a user font is given.
var monoFont = font.Font{Typeface: "Go Mono"}

// userTypeface names a font loaded from disk.
const userTypeface = "asmlens-user"

func LoadFonts(userfont string) ([]font.FontFace, error) {
	collection := gofont.Collection()
	if userfont == "" {
		return collection, nil
	}
	b, err := os.ReadFile(userfont)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	face, err := opentype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	monoFont = font.Font{Typeface: userTypeface}
	fface := font.FontFace{Font: monoFont, Face: face}
	return append(collection, fface), nil
}

// NewTheme creates the application theme.
func NewTheme(fonts []font.FontFace, textSize int) *material.Theme {
	theme := material.NewTheme()
	theme.Shaper = text.NewShaper(text.NoSystemFonts(), text.WithCollection(fonts))
	theme.TextSize = unit.Sp(textSize)
	return theme
}
