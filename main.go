package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"

	"gioui.org/app"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"loov.dev/asmlens/internal/compile"
	"loov.dev/asmlens/internal/config"
	"loov.dev/asmlens/internal/explorer"
	"loov.dev/asmlens/internal/f32color"
	"loov.dev/asmlens/internal/printer"
	"loov.dev/asmlens/internal/storage"
)

var log = commonlog.GetLogger("asmlens")

func main() {
	configPath := flag.String("config", "", "configuration file (default: user config dir)")
	endpoint := flag.String("endpoint", "", "override the compile endpoint")
	textSize := flag.Int("text-size", 12, "default font size")
	userFont := flag.String("font", "", "user font")
	state := flag.String("state", "", "restore a shared link")
	printMode := flag.Bool("print", false, "compile once and print the result")
	verbose := flag.Int("v", 0, "log verbosity")
	logPath := flag.String("log", "", "log file (default: stderr)")

	flag.Parse()

	if *logPath != "" {
		commonlog.Configure(*verbose, logPath)
	} else {
		commonlog.Configure(*verbose, nil)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}

	settings, analytics, closeStore := openStorage(cfg)
	defer closeStore()

	client := compile.NewClient(cfg.Endpoint, cfg.Timeout)

	if *printMode {
		if err := runPrint(cfg, client, settings, analytics, flag.Arg(0), *state); err != nil {
			fmt.Fprintln(os.Stderr, err)
			closeStore()
			os.Exit(1)
		}
		return
	}

	fonts, err := LoadFonts(*userFont)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	theme := NewTheme(fonts, *textSize)

	windows := &Windows{}
	ui, err := NewExplorerUI(windows, theme, cfg, client, settings, analytics)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := loadSource(ui.Source, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *state != "" {
		if err := ui.Restore(*state); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	windows.Open("asmlens", image.Pt(1400, 900), ui.Run)

	go func() {
		windows.Wait()
		closeStore()
		os.Exit(0)
	}()

	// This starts Gio main.
	app.Main()
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load(path)
}

// openStorage opens the settings database, falling back to memory.
func openStorage(cfg *config.Config) (*storage.Settings, explorer.Analytics, func()) {
	analytics := explorer.Trackers{explorer.LogAnalytics{}}
	if cfg.Storage.Memory {
		return storage.NewSettings(storage.NewMemory(), cfg.Storage.Prefix), analytics, func() {}
	}

	path := cfg.Storage.Path
	if path == "" {
		var err error
		path, err = storage.DefaultPath()
		if err != nil {
			log.Warningf("no settings location: %v", err)
			return storage.NewSettings(storage.NewMemory(), cfg.Storage.Prefix), analytics, func() {}
		}
	}

	db, err := storage.OpenSQLite(path)
	if err != nil {
		log.Warningf("settings will not be persisted: %v", err)
		return storage.NewSettings(storage.NewMemory(), cfg.Storage.Prefix), analytics, func() {}
	}
	log.Debugf("recording compile events in %s as session %s", path, db.Session())
	closed := false
	return storage.NewSettings(db, cfg.Storage.Prefix), append(analytics, db), func() {
		if !closed {
			closed = true
			if err := db.Close(); err != nil {
				log.Errorf("closing settings: %v", err)
			}
		}
	}
}

// loadSource replaces the editor content with a file.
func loadSource(source explorer.Editor, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	source.SetText(string(data))
	return nil
}

func runPrint(cfg *config.Config, client *compile.Client, settings *storage.Settings, analytics explorer.Analytics, path, link string) error {
	p := printer.New(cfg.Slots)
	session, err := explorer.New(explorer.Config{
		Template:       cfg.Template(),
		SupportsBinary: cfg.SupportsBinary,
		Filters:        cfg.Filters,
		Delay:          cfg.Debounce,
	}, p.UI(), client, settings)
	if err != nil {
		return err
	}
	defer session.Close()
	session.Analytics = analytics

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Timeout)
	defer cancel()

	compilers, defaultID := cfg.Compilers, cfg.DefaultCompiler
	if cfg.CompilersURL != "" {
		catalog, err := client.Compilers(ctx, cfg.CompilersURL)
		if err != nil {
			return err
		}
		compilers, defaultID = catalog.Compilers, catalog.Default
	}
	session.SetCompilers(compilers, defaultID)

	if link != "" {
		state, err := explorer.ParseLink(link)
		if err != nil {
			return err
		}
		if err := session.DeserializeState(state); err != nil {
			return err
		}
	}
	if err := loadSource(p.Source, path); err != nil {
		return err
	}

	if !session.Flush() {
		session.Compile()
	}
	if err := printer.Wait(ctx, session); err != nil {
		return err
	}
	p.Print(os.Stdout)
	return nil
}

var (
	secondaryBackground = f32color.Gray8(0xF0)
	splitterColor       = f32color.Gray8(0x80)
)
