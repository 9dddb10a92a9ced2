// cmd/glyph/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bethropolis/glyph/internal/config"
	"github.com/bethropolis/glyph/internal/editor"
	"github.com/bethropolis/glyph/internal/keys"
	"github.com/bethropolis/glyph/internal/lang"
	"github.com/bethropolis/glyph/internal/logger"
	"github.com/bethropolis/glyph/internal/terminal"
	"github.com/bethropolis/glyph/internal/theme"
	"github.com/bethropolis/glyph/internal/view"
)

var (
	configPathFlag  string
	tabWidthFlag    int
	scrollOffFlag   int
	sysClipFlag     bool
	logLevelFlag    string
	logFileFlag     string
	tabWidthSet     bool
	scrollOffSet    bool
	sysClipSet      bool
)

func main() {
	flag.StringVar(&configPathFlag, "config", "", "Path to config.toml (defaults to the OS config dir)")
	flag.IntVar(&tabWidthFlag, "tab-width", 0, "Override the configured tab width")
	flag.IntVar(&scrollOffFlag, "scroll-off", -1, "Override the configured scroll-off margin")
	flag.BoolVar(&sysClipFlag, "system-clipboard", false, "Mirror the kill-ring to the OS clipboard")
	flag.StringVar(&logLevelFlag, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	flag.StringVar(&logFileFlag, "log-file", "", "Override the configured log file path ('-' for stderr)")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tab-width":
			tabWidthSet = true
		case "scroll-off":
			scrollOffSet = true
		case "system-clipboard":
			sysClipSet = true
		}
	})

	flags := &config.Flags{}
	if tabWidthSet {
		flags.TabWidth = &tabWidthFlag
	}
	if scrollOffSet {
		flags.ScrollOff = &scrollOffFlag
	}
	if sysClipSet {
		flags.SystemClipboard = &sysClipFlag
	}
	if logLevelFlag != "" {
		flags.LogLevel = &logLevelFlag
	}
	if logFileFlag != "" {
		flags.LogFilePath = &logFileFlag
	}

	cfg, err := config.LoadConfig(configPathFlag, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "glyph: loading config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logger)

	var path string
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	logger.Infof("glyph: starting (file=%q)", path)

	if err := run(path, cfg); err != nil {
		logger.Errorf("glyph: %v", err)
		fmt.Fprintf(os.Stderr, "glyph: %v\n", err)
		os.Exit(1)
	}
}

// run owns the terminal for the session, wiring the PieceTable, View, and
// Controller together and driving the single-threaded, cooperative event
// loop spec.md §5 describes: block for one key, dispatch it, render, and
// repeat, with SIGWINCH handled out-of-band to force a full redraw.
func run(path string, cfg *config.Config) error {
	table, detected, err := editor.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer table.Close()
	if cfg.Editor.CoalesceWindowMs > 0 {
		table.CoalesceWindow = time.Duration(cfg.Editor.CoalesceWindowMs) * time.Millisecond
	}

	term, err := terminal.Open()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer term.Close()

	width, height := term.Size()
	th := theme.New()
	v := view.New(table, th, view.Viewport{X: 0, Y: 0, Width: width, Height: height})
	v.TabWidth = cfg.Editor.TabWidth
	v.ScrollOff = cfg.Editor.ScrollOff
	v.StatusBarHeight = cfg.Editor.StatusBarHeight

	if path != "" {
		v.SetLanguage(lang.NewRegistry().Lookup(filepath.Ext(path)))
	}

	ctrl := editor.New(editor.Config{
		Table:           table,
		View:            v,
		Filename:        path,
		Detected:        detected,
		SystemClipboard: cfg.Editor.SystemClipboard,
		UndoLimit:       cfg.Editor.UndoLimit,
	})

	term.HideCursor()
	v.Render(term, ctrl.StatusFields())
	term.ShowCursor()
	term.Flush()

	sigwinch, stopResize := watchResize()
	defer stopResize()

	reader := keys.NewReader(term.RawInput())
	keyCh := make(chan keys.Key, 16)
	done := make(chan struct{})
	go func() {
		defer close(keyCh)
		for {
			k, ok := reader.ReadKey()
			if !ok {
				return
			}
			select {
			case keyCh <- k:
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	for {
		select {
		case <-sigwinch:
			if changed, err := term.Refresh(); err == nil && changed {
				w, h := term.Size()
				v.Resize(w, h)
				term.HideCursor()
				v.Render(term, ctrl.StatusFields())
				term.ShowCursor()
				term.Flush()
			}

		case k, ok := <-keyCh:
			if !ok {
				return nil
			}
			ctrl.HandleKey(k)
			if ctrl.Quit {
				return nil
			}
			term.HideCursor()
			v.Render(term, ctrl.StatusFields())
			term.ShowCursor()
			term.Flush()
		}
	}
}
