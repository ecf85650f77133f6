// Package effects persists spiral.EffectsConfig across sessions.
//
// The config is stored as one flat JSON record under Key in a key-value
// Store. Three stores are provided: MemoryStore for tests and ephemeral
// sessions, FileStore for a directory of JSON files, and SQLiteStore for a
// single database file.
//
// A process-wide Cache sits on top of a store:
//
//	effects.Init(effects.NewFileStore("~/.config/spiral"))
//	eng, err := spiral.NewEngine(mode, caps, spiral.WithEffectsCache(effects.Default()))
package effects

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
)

// Key is the store key of the effects record.
const Key = "spiral-effects"

// ErrNotFound is returned by Store.Get when the key is absent.
var ErrNotFound = errors.New("effects: key not found")

// Store is a string-keyed byte store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
}

// MemoryStore is an in-memory Store. The zero value is ready to use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Get implements Store.
func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements Store.
func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Snapshot returns a copy of every stored entry.
func (s *MemoryStore) Snapshot() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.data)
}

// FileStore keeps one <key>.json file per key under a directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. A leading ~ is expanded to
// the user's home directory; if that fails dir is used as given.
func NewFileStore(dir string) *FileStore {
	if exp, err := homedir.Expand(dir); err == nil {
		dir = exp
	}
	return &FileStore{dir: dir}
}

// Dir returns the resolved directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errors.New("effects: invalid key " + key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get implements Store.
func (s *FileStore) Get(key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

// Set implements Store. The file is written to a temporary name and
// renamed into place.
func (s *FileStore) Set(key string, value []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}
