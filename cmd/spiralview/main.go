// Command spiralview shows a tile set on the golden spiral in a window.
//
// Usage:
//
//	spiralview [-config spiral.toml] [-mode auto|canvas|gpu] [-tiles tiles.yaml]
//
// Scroll, pinch or press +/- to zoom. Home resets the view, F3 toggles the
// debug overlay and Ctrl+Q quits. The tile manifest is reloaded when it
// changes on disk.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/spiral"
	_ "github.com/gogpu/spiral/canvas"
	"github.com/gogpu/spiral/capability"
	"github.com/gogpu/spiral/content"
	"github.com/gogpu/spiral/effects"
	_ "github.com/gogpu/spiral/gpu"
	"github.com/gogpu/spiral/host/ebitenhost"
	"github.com/gogpu/spiral/input"
)

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("spiralview: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatalf("spiralview: %v", err)
	}
}

func run(cfg config) error {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	spiral.SetLogger(logger)

	store, closeStore, err := openStore(cfg.Prefs)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close effects store", "err", err)
		}
	}()
	cache := effects.Init(store)

	caps := capability.Detect(capability.WGPU{Power: gputypes.PowerPreferenceHighPerformance}, "")
	eng, err := spiral.NewEngine(cfg.Mode, caps,
		spiral.WithEffectsCache(cache),
		spiral.WithDebug(cfg.Debug),
		spiral.WithReducedMotion(cfg.ReducedMotion),
	)
	if err != nil {
		return err
	}

	tiles, err := content.LoadOrDefault(cfg.Tiles, cfg.LayoutCount)
	if err != nil {
		return err
	}
	eng.SetTiles(tiles)
	eng.OnFocus(func(id string) {
		logger.Info("focus", "tile", id)
	})

	host := ebitenhost.New(ebitenhost.Options{
		Title:        "spiral",
		Width:        cfg.Width,
		Height:       cfg.Height,
		ReduceMotion: cfg.ReducedMotion,
	})
	if err := eng.Mount(host); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	defer eng.Unmount()

	if cfg.Tiles != "" {
		w, err := content.Watch(cfg.Tiles)
		if err != nil {
			logger.Warn("manifest not watched", "path", cfg.Tiles, "err", err)
		} else {
			defer w.Close()
			host.OnUpdate(func() {
				select {
				case tiles := <-w.Updates():
					eng.SetTiles(tiles)
					logger.Info("tiles reloaded", "path", w.Path(), "count", len(tiles))
				default:
				}
			})
		}
	}

	engineKeys := input.BindEngineKeys(eng, input.Bindings{
		Menu: func() {
			w, h := host.Size()
			logger.Info("menu",
				"focused", eng.Focused(),
				"effects", eng.Effects(),
				"visible", visibleTiles(eng, w, h),
			)
		},
	})
	u := input.New(eng.HandleWheel, func(k gpucontext.Key, m gpucontext.Modifiers) {
		if k == gpucontext.KeyQ && m&gpucontext.ModControl != 0 {
			host.Close()
			return
		}
		engineKeys(k, m)
	}, host)
	u.Attach(host.Events())
	defer u.Detach()

	return host.Run()
}
