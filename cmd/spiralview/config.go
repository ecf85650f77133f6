package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/spiral"
	"github.com/gogpu/spiral/effects"
)

// config is the viewer configuration. Flags override values from the
// config file.
type config struct {
	Mode          spiral.RenderMode `toml:"mode"`
	Tiles         string            `toml:"tiles"`
	Prefs         string            `toml:"prefs"`
	Width         int               `toml:"width"`
	Height        int               `toml:"height"`
	Debug         bool              `toml:"debug"`
	LogLevel      string            `toml:"log_level"`
	ReducedMotion bool              `toml:"reduced_motion"`
	LayoutCount   int               `toml:"layout_count"`
}

func defaultConfig() config {
	return config{
		Mode:     spiral.ModeAuto,
		Prefs:    "~/.config/spiral",
		Width:    1024,
		Height:   768,
		LogLevel: "info",
	}
}

// loadConfigFile merges the TOML file at path into cfg. Unknown keys are
// rejected.
func loadConfigFile(path string, cfg *config) error {
	p, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%s:%d:%d: %s", path, row, col, derr.Error())
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// parseArgs builds the configuration from the command line. The file named
// by -config is read first; flags given explicitly win.
func parseArgs(args []string, stderr io.Writer) (config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("spiralview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "TOML config file")
		mode       = fs.String("mode", cfg.Mode.String(), "render mode: auto, canvas or gpu")
		tiles      = fs.String("tiles", "", "tile manifest (YAML or JSON); watched for changes")
		prefs      = fs.String("prefs", cfg.Prefs, "effects store: a directory, a .db file or :memory:")
		width      = fs.Int("width", cfg.Width, "window width")
		height     = fs.Int("height", cfg.Height, "window height")
		debug      = fs.Bool("debug", false, "show the debug overlay")
		verbose    = fs.Bool("v", false, "debug logging")
		reduced    = fs.Bool("reduced-motion", false, "disable particles and pulses")
		count      = fs.Int("layout-count", 0, "generated tile count when no manifest is given")
	)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		if err := loadConfigFile(*configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			var m spiral.RenderMode
			if m, err = spiral.ParseRenderMode(*mode); err == nil {
				cfg.Mode = m
			}
		case "tiles":
			cfg.Tiles = *tiles
		case "prefs":
			cfg.Prefs = *prefs
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "debug":
			cfg.Debug = *debug
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		case "reduced-motion":
			cfg.ReducedMotion = *reduced
		case "layout-count":
			cfg.LayoutCount = *count
		}
	})
	if err != nil {
		return cfg, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// openStore picks the effects store for prefs: nothing for "", SQLite for
// ":memory:" and *.db or *.sqlite files, and a FileStore directory
// otherwise. The returned function releases the store.
func openStore(prefs string) (effects.Store, func() error, error) {
	nop := func() error { return nil }
	switch ext := strings.ToLower(filepath.Ext(prefs)); {
	case prefs == "":
		return nil, nop, nil
	case prefs == ":memory:", ext == ".db", ext == ".sqlite":
		s, err := effects.OpenSQLite(prefs)
		if err != nil {
			return nil, nop, err
		}
		return s, s.Close, nil
	default:
		return effects.NewFileStore(prefs), nop, nil
	}
}
