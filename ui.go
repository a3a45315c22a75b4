package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	"gioui.org/app"
	"gioui.org/io/clipboard"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"loov.dev/asmlens/internal/compile"
	"loov.dev/asmlens/internal/config"
	"loov.dev/asmlens/internal/disasm"
	"loov.dev/asmlens/internal/explorer"
	"loov.dev/asmlens/internal/storage"
)

// ExplorerUI is the main window: compiler settings on the left, the source
// editor in the middle and one assembly view with its output per slot.
type ExplorerUI struct {
	Windows *Windows
	Theme   *material.Theme
	Config  *config.Config
	Client  *compile.Client

	Session  *explorer.Session
	Source   *SourceView
	Assembly []*TextView
	Output   []*OutputView

	Compilers *FilterList[compilerEntry]
	Options   widget.Editor
	Filters   struct {
		Binary       widget.Bool
		Intel        widget.Bool
		ColouriseAsm widget.Bool
		Labels       widget.Bool
		Directives   widget.Bool
		CommentOnly  widget.Bool
	}
	Autocompile widget.Bool
	CompileNow  widget.Clickable
	Share       widget.Clickable

	options string
	status  string
	catalog chan *compile.Catalog
}

// NewExplorerUI creates the views and binds them to a new session.
func NewExplorerUI(windows *Windows, theme *material.Theme, cfg *config.Config, client *compile.Client, settings *storage.Settings, analytics explorer.Analytics) (*ExplorerUI, error) {
	ui := &ExplorerUI{
		Windows: windows,
		Theme:   theme,
		Config:  cfg,
		Client:  client,
		Source:  NewSourceView(),
		catalog: make(chan *compile.Catalog, 1),
	}

	views := explorer.UI{Source: ui.Source}
	for i := 0; i < cfg.Slots; i++ {
		asm, out := NewTextView(), NewOutputView()
		ui.Assembly = append(ui.Assembly, asm)
		ui.Output = append(ui.Output, out)
		views.Assembly = append(views.Assembly, asm)
		views.Output = append(views.Output, out)
	}

	session, err := explorer.New(explorer.Config{
		Template:       cfg.Template(),
		SupportsBinary: cfg.SupportsBinary,
		Filters:        cfg.Filters,
		Delay:          cfg.Debounce,
	}, views, client, settings)
	if err != nil {
		return nil, err
	}
	session.Analytics = analytics
	ui.Session = session

	ui.Source.OnChange = session.SourceChanged
	for _, out := range ui.Output {
		out.OnSelect = session.SelectSourceLine
	}

	ui.Compilers = NewFilterList[compilerEntry](theme)
	ui.setCompilers(cfg.Compilers, cfg.DefaultCompiler)

	ui.Options.SingleLine = true
	ui.Options.Submit = true
	ui.syncControls()

	return ui, nil
}

// Restore applies a shared link.
func (ui *ExplorerUI) Restore(link string) error {
	state, err := explorer.ParseLink(link)
	if err != nil {
		return err
	}
	if err := ui.Session.DeserializeState(state); err != nil {
		return err
	}
	ui.syncControls()
	return nil
}

func (ui *ExplorerUI) setCompilers(compilers []compile.Compiler, defaultID string) {
	ui.Session.SetCompilers(compilers, defaultID)
	ui.Compilers.SetItems(compilerEntries(ui.Session.Compilers()))
	ui.syncControls()
}

// syncControls updates the widgets from the session state.
func (ui *ExplorerUI) syncControls() {
	if c := ui.Session.Compiler(); c != nil {
		ui.Compilers.SelectName(compilerEntry{Compiler: *c}.Name())
	}
	ui.options = ui.Session.Options()
	if ui.Options.Text() != ui.options {
		ui.Options.SetText(ui.options)
	}
	filters := ui.Session.Filters()
	ui.Filters.Binary.Value = filters.Binary
	ui.Filters.Intel.Value = filters.Intel
	ui.Filters.ColouriseAsm.Value = filters.ColouriseAsm
	ui.Filters.Labels.Value = filters.Labels
	ui.Filters.Directives.Value = filters.Directives
	ui.Filters.CommentOnly.Value = filters.CommentOnly
	ui.Autocompile.Value = ui.Session.Autocompile()

	syntax := disasm.GNUSyntax
	if filters.Intel {
		syntax = disasm.IntelSyntax
	}
	for _, asm := range ui.Assembly {
		asm.Syntax = syntax
	}
}

func (ui *ExplorerUI) Run(w *app.Window) error {
	var ops op.Ops

	ui.Session.Wake = w.Invalidate
	defer ui.Session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if url := ui.Config.CompilersURL; url != "" && ui.Client != nil {
		go func() {
			catalog, err := ui.Client.Compilers(ctx, url)
			if err != nil {
				log.Errorf("loading compilers: %v", err)
				return
			}
			ui.catalog <- catalog
			w.Invalidate()
		}()
	}

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			ui.drain()
			gtx := app.NewContext(&ops, e)
			ui.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

// drain applies the work queued by background goroutines.
func (ui *ExplorerUI) drain() {
	for {
		select {
		case ev := <-ui.Session.Events():
			ui.Session.Dispatch(ev)
		case catalog := <-ui.catalog:
			ui.setCompilers(catalog.Compilers, catalog.Default)
		default:
			return
		}
	}
}

// update applies widget input to the session.
func (ui *ExplorerUI) update(gtx layout.Context) {
	event.Op(gtx.Ops, ui)
	for {
		ev, ok := gtx.Event(key.Filter{Name: key.NameReturn, Required: key.ModShortcut})
		if !ok {
			break
		}
		if ev, ok := ev.(key.Event); ok && ev.State == key.Press {
			ui.Session.Compile()
		}
	}

	for {
		ev, ok := ui.Options.Update(gtx)
		if !ok {
			break
		}
		switch ev.(type) {
		case widget.ChangeEvent:
			if text := ui.Options.Text(); text != ui.options {
				ui.options = text
				ui.Session.SetOptions(text)
			}
		case widget.SubmitEvent:
			ui.Session.Compile()
		}
	}

	filtersChanged := false
	for _, b := range []*widget.Bool{
		&ui.Filters.Binary, &ui.Filters.Intel, &ui.Filters.ColouriseAsm,
		&ui.Filters.Labels, &ui.Filters.Directives, &ui.Filters.CommentOnly,
	} {
		if b.Update(gtx) {
			filtersChanged = true
		}
	}
	if filtersChanged {
		ui.Session.SetFilters(compile.Filters{
			Binary:       ui.Filters.Binary.Value,
			Intel:        ui.Filters.Intel.Value,
			ColouriseAsm: ui.Filters.ColouriseAsm.Value,
			Labels:       ui.Filters.Labels.Value,
			Directives:   ui.Filters.Directives.Value,
			CommentOnly:  ui.Filters.CommentOnly.Value,
		})
		ui.syncControls()
	}

	if ui.Autocompile.Update(gtx) {
		ui.Session.SetAutocompile(ui.Autocompile.Value)
	}
	if ui.CompileNow.Clicked(gtx) {
		ui.Session.Compile()
	}
	if ui.Share.Clicked(gtx) {
		ui.share(gtx)
	}
}

func (ui *ExplorerUI) share(gtx layout.Context) {
	state, err := ui.Session.SerializeState(true)
	if err == nil {
		var link string
		link, err = state.Link()
		if err == nil {
			gtx.Execute(clipboard.WriteCmd{Type: "application/text", Data: io.NopCloser(strings.NewReader(link))})
			ui.status = "Link copied to clipboard"
			return
		}
	}
	log.Errorf("sharing state: %v", err)
	ui.status = "Sharing failed: " + err.Error()
}

// selectCompiler follows the selection in the compiler list.
func (ui *ExplorerUI) selectCompiler() {
	selected := ui.Compilers.SelectedItem
	if selected.ID == "" {
		return
	}
	if c := ui.Session.Compiler(); c != nil && c.ID == selected.ID {
		return
	}
	if ui.Session.SelectCompiler(selected.ID) {
		ui.status = ""
		ui.syncControls()
	}
}

func (ui *ExplorerUI) Layout(gtx layout.Context) layout.Dimensions {
	ui.update(gtx)

	dims := layout.Flex{
		Axis: layout.Horizontal,
	}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints = layout.Exact(image.Point{
				X: gtx.Metric.Sp(10 * 24),
				Y: gtx.Constraints.Max.Y,
			})
			return ui.layoutSidebar(gtx)
		}),
		layout.Rigid(VerticalLine{Width: 1, Color: splitterColor}.Layout),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, ui.panes()...)
		}),
	)

	ui.selectCompiler()
	return dims
}

func (ui *ExplorerUI) panes() []layout.FlexChild {
	lineHeight := ui.Theme.TextSize * 1.2
	children := []layout.FlexChild{
		layout.Flexed(0.4, func(gtx layout.Context) layout.Dimensions {
			return SourceViewStyle{
				SourceView: ui.Source,
				Theme:      ui.Theme,
				TextHeight: ui.Theme.TextSize,
				LineHeight: lineHeight,
			}.Layout(gtx)
		}),
	}
	weight := 0.6 / float32(len(ui.Assembly))
	for slot := range ui.Assembly {
		asm, out := ui.Assembly[slot], ui.Output[slot]
		children = append(children,
			layout.Rigid(VerticalLine{Width: 1, Color: splitterColor}.Layout),
			layout.Flexed(weight, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
					layout.Flexed(0.75, TextViewStyle{
						TextView:   asm,
						Theme:      ui.Theme,
						TextHeight: ui.Theme.TextSize,
						LineHeight: lineHeight,
					}.Layout),
					layout.Rigid(HorizontalLine{Height: 1, Color: splitterColor}.Layout),
					layout.Flexed(0.25, func(gtx layout.Context) layout.Dimensions {
						return out.Layout(ui.Theme, gtx)
					}),
				)
			}))
	}
	return children
}

func (ui *ExplorerUI) layoutSidebar(gtx layout.Context) layout.Dimensions {
	buttons := ui.Session.Buttons()
	th := ui.Theme

	checkbox := func(b *widget.Bool, label string, enabled bool) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if !enabled {
				gtx = gtx.Disabled()
			}
			return material.CheckBox(th, b, label).Layout(gtx)
		})
	}

	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			title := material.Body1(th, buttons.Compiler)
			title.TextSize *= 1.2
			return layout.Inset{Top: 4, Left: 4, Right: 4, Bottom: 2}.Layout(gtx, title.Layout)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return ui.Compilers.Layout(th, gtx)
		}),
		layout.Rigid(HorizontalLine{Height: 1, Color: splitterColor}.Layout),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return FocusBorder(th, &ui.Options).Layout(gtx,
				material.Editor(th, &ui.Options, "Compiler options").Layout)
		}),
	}
	if buttons.BinaryVisible {
		children = append(children, checkbox(&ui.Filters.Binary, "Binary", buttons.Binary))
	}
	children = append(children,
		checkbox(&ui.Filters.Intel, "Intel syntax", buttons.Intel),
		checkbox(&ui.Filters.ColouriseAsm, "Colourise", true),
		checkbox(&ui.Filters.Labels, "Hide unused labels", buttons.NonBinary),
		checkbox(&ui.Filters.Directives, "Hide directives", buttons.NonBinary),
		checkbox(&ui.Filters.CommentOnly, "Hide comment lines", buttons.NonBinary),
		checkbox(&ui.Autocompile, "Compile as you type", true),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					button := material.IconButton(th, &ui.CompileNow, CompileIcon, "Compile now")
					button.Size = 16
					button.Inset = layout.UniformInset(8)
					return layout.UniformInset(2).Layout(gtx, button.Layout)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					button := material.IconButton(th, &ui.Share, ShareIcon, "Copy link")
					button.Size = 16
					button.Inset = layout.UniformInset(8)
					return layout.UniformInset(2).Layout(gtx, button.Layout)
				}),
			)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			status := ui.status
			if n := ui.Session.Outstanding(); n > 0 {
				status = fmt.Sprintf("Compiling %d...", n)
			}
			if status == "" {
				return layout.Dimensions{}
			}
			body := material.Body2(th, status)
			return layout.UniformInset(unit.Dp(4)).Layout(gtx, body.Layout)
		}),
	)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}
