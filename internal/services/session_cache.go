package services

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
)

// Session cache keys.
const (
	CacheSlotKey         = "cheatstack_cache"
	CatalogCacheKey      = "availableCheatsheets"
	DetailCacheKeyPrefix = "cheatsheet_"
)

// DefaultBoundedLimit caps the entries stored with PutBounded.
const DefaultBoundedLimit = 256

// SessionCache memoises catalog loads and detail synthesis for the lifetime of one service
// instance. Entries stored with Put or PutTransient never expire; PutBounded entries are evicted
// oldest first once DefaultBoundedLimit is reached. Persistent entries are mirrored into a
// persistence slot as a single JSON object under CacheSlotKey; slot failures are logged and
// otherwise ignored.
type SessionCache struct {
	store  repositories.CacheStore
	logger *zap.Logger

	mu        sync.RWMutex
	entries   map[string]json.RawMessage
	transient map[string]struct{}

	boundedLimit int
	bounded      []string

	persistMu sync.Mutex
}

// NewSessionCache hydrates a cache from store. A nil store keeps the cache in memory only.
func NewSessionCache(ctx context.Context, store repositories.CacheStore, logger *zap.Logger) *SessionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &SessionCache{
		store:     store,
		logger:    logger,
		entries:      make(map[string]json.RawMessage),
		transient:    make(map[string]struct{}),
		boundedLimit: DefaultBoundedLimit,
	}
	c.hydrate(ctx)
	return c
}

func (c *SessionCache) hydrate(ctx context.Context) {
	if c.store == nil {
		return
	}
	raw, ok, err := c.store.Get(ctx, CacheSlotKey)
	if err != nil {
		c.logger.Warn("session cache: read slot failed", zap.Error(err))
		return
	}
	if !ok || raw == "" {
		return
	}
	entries := make(map[string]json.RawMessage)
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.logger.Warn("session cache: discard unreadable slot", zap.Error(err))
		return
	}
	c.entries = entries
}

// Get decodes the entry for key into dst and reports whether it existed.
func (c *SessionCache) Get(key string, dst any) bool {
	c.mu.RLock()
	raw, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("session cache: discard undecodable entry", zap.String("key", key), zap.Error(err))
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false
	}
	return true
}

// Put stores value under key and persists the cache.
func (c *SessionCache) Put(ctx context.Context, key string, value any) {
	if !c.set(key, value, false) {
		return
	}
	c.persist(ctx)
}

// PutTransient stores value under key for this session only. It is left out of the slot so the
// next session recomputes it.
func (c *SessionCache) PutTransient(key string, value any) {
	c.set(key, value, true)
}

// PutBounded stores value for this session only, like PutTransient, but the number of such
// entries is capped and the oldest is dropped first.
func (c *SessionCache) PutBounded(key string, value any) {
	raw, ok := c.encode(key, value)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isBounded(key) {
		c.bounded = append(c.bounded, key)
	}
	c.entries[key] = raw
	c.transient[key] = struct{}{}
	for len(c.bounded) > c.boundedLimit {
		oldest := c.bounded[0]
		c.bounded = c.bounded[1:]
		delete(c.entries, oldest)
		delete(c.transient, oldest)
	}
}

// Len reports the number of entries held in memory.
func (c *SessionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *SessionCache) isBounded(key string) bool {
	for _, k := range c.bounded {
		if k == key {
			return true
		}
	}
	return false
}

func (c *SessionCache) encode(key string, value any) (json.RawMessage, bool) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("session cache: encode entry failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return raw, true
}

func (c *SessionCache) set(key string, value any, transient bool) bool {
	raw, ok := c.encode(key, value)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	if transient {
		c.transient[key] = struct{}{}
	} else {
		delete(c.transient, key)
		c.dropBounded(key)
	}
	return true
}

func (c *SessionCache) dropBounded(key string) {
	for i, k := range c.bounded {
		if k == key {
			c.bounded = append(c.bounded[:i], c.bounded[i+1:]...)
			return
		}
	}
}

func (c *SessionCache) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	c.mu.RLock()
	snapshot := make(map[string]json.RawMessage, len(c.entries))
	for key, raw := range c.entries {
		if _, skip := c.transient[key]; skip {
			continue
		}
		snapshot[key] = raw
	}
	c.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("session cache: encode slot failed", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, CacheSlotKey, string(data)); err != nil {
		c.logger.Warn("session cache: write slot failed", zap.Error(err))
	}
}
