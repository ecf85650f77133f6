package effects

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gogpu/spiral"
)

// Cache is a spiral.EffectsStore backed by a Store. The record is read on
// first Load and written through on every Save.
//
// Read failures fall back to spiral.DefaultEffects with whatever fields
// did decode merged in. Write failures are logged at debug level and
// otherwise ignored.
type Cache struct {
	mu     sync.Mutex
	store  Store
	cfg    spiral.EffectsConfig
	loaded bool
}

var _ spiral.EffectsStore = (*Cache)(nil)

// NewCache returns a cache over store. A nil store uses a MemoryStore.
func NewCache(store Store) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Cache{store: store}
}

// Store returns the underlying store.
func (c *Cache) Store() Store { return c.store }

// Load returns the cached config, reading it from the store the first
// time.
func (c *Cache) Load() spiral.EffectsConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.cfg = Decode(c.read())
		c.loaded = true
	}
	return c.cfg
}

func (c *Cache) read() []byte {
	b, err := c.store.Get(Key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			spiral.Logger().Debug("effects: read failed", "key", Key, "err", err)
		}
		return nil
	}
	return b
}

// Save stores cfg and writes it through to the store.
func (c *Cache) Save(cfg spiral.EffectsConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.loaded = true

	b, err := json.Marshal(cfg)
	if err != nil {
		spiral.Logger().Debug("effects: encode failed", "err", err)
		return
	}
	if err := c.store.Set(Key, b); err != nil {
		spiral.Logger().Debug("effects: write failed", "key", Key, "err", err)
	}
}

// Reload drops the cached config so the next Load reads the store again.
func (c *Cache) Reload() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// Decode parses a stored record over the defaults. Fields missing from b
// keep their default; an empty or malformed record yields the defaults.
func Decode(b []byte) spiral.EffectsConfig {
	cfg := spiral.DefaultEffects()
	if len(b) == 0 {
		return cfg
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		spiral.Logger().Debug("effects: decode failed", "err", err)
	}
	return cfg
}

var (
	defaultMu    sync.Mutex
	defaultCache *Cache
)

// Init installs the process-wide cache over store and returns it.
func Init(store Store) *Cache {
	c := NewCache(store)
	defaultMu.Lock()
	defaultCache = c
	defaultMu.Unlock()
	return c
}

// Default returns the process-wide cache. Without a prior Init it is an
// in-memory cache created on first use.
func Default() *Cache {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCache == nil {
		defaultCache = NewCache(nil)
	}
	return defaultCache
}
