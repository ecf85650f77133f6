package content

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"

	"github.com/gogpu/spiral"
)

// debounce collapses the burst of events an editor save produces.
const debounce = 100 * time.Millisecond

// Watcher reloads a manifest when it changes on disk.
//
// Reloaded tile sets are delivered on Updates. The engine is not safe for
// concurrent use, so hosts drain Updates from their update loop rather than
// calling SetTiles from the watcher goroutine.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	updates chan []spiral.Tile
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// Watch starts watching the manifest at path. The containing directory is
// watched so that editors which replace the file are handled.
func Watch(path string) (*Watcher, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("content: expand %q: %w", path, err)
	}
	p, err = filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("content: watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(p)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("content: watch %s: %w", filepath.Dir(p), err)
	}
	w := &Watcher{
		path:    p,
		fsw:     fsw,
		updates: make(chan []spiral.Tile, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Updates delivers each successfully reloaded tile set. Only the newest
// pending set is kept.
func (w *Watcher) Updates() <-chan []spiral.Tile { return w.updates }

// Path returns the resolved manifest path.
func (w *Watcher) Path() string { return w.path }

// Close stops watching. It is idempotent.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			spiral.Logger().Warn("content: watch error", "path", w.path, "err", err)
		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	tiles, err := Load(w.path)
	if err != nil {
		spiral.Logger().Warn("content: reload failed, keeping previous tiles", "err", err)
		return
	}
	spiral.Logger().Debug("content: manifest reloaded", "path", w.path, "tiles", len(tiles))
	// Replace any undelivered set with the newer one.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- tiles
}
