package services

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
)

func TestSessionCache_HydratesFromSlot(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryCacheStore()
	if err := store.Set(ctx, CacheSlotKey, `{"cheatsheet_go":{"name":"go","title":"Go"}}`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cache := NewSessionCache(ctx, store, nil)

	var got struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	if !cache.Get("cheatsheet_go", &got) || got.Title != "Go" {
		t.Fatalf("expected hydrated entry, got %+v", got)
	}
}

func TestSessionCache_IgnoresCorruptSlot(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryCacheStore()
	_ = store.Set(ctx, CacheSlotKey, "not json")

	core, logs := observer.New(zap.WarnLevel)
	cache := NewSessionCache(ctx, store, zap.New(core))

	var v string
	if cache.Get("anything", &v) {
		t.Fatalf("corrupt slot should hydrate nothing")
	}
	if logs.FilterMessage("session cache: discard unreadable slot").Len() != 1 {
		t.Fatalf("expected a warning for the corrupt slot, got %v", logs.All())
	}
}

func TestSessionCache_TransientEntriesStayInMemory(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryCacheStore()
	cache := NewSessionCache(ctx, store, nil)

	cache.PutTransient(CatalogCacheKey, []string{"fallback"})
	cache.Put(ctx, "cheatsheet_vim", "detail")

	var catalog []string
	if !cache.Get(CatalogCacheKey, &catalog) || len(catalog) != 1 {
		t.Fatalf("transient entry should be readable, got %v", catalog)
	}

	raw, ok, err := store.Get(ctx, CacheSlotKey)
	if err != nil || !ok {
		t.Fatalf("expected persisted slot, ok=%v err=%v", ok, err)
	}
	if strings.Contains(raw, CatalogCacheKey) || !strings.Contains(raw, "cheatsheet_vim") {
		t.Fatalf("unexpected slot contents %q", raw)
	}
}

func TestSessionCache_LogsWriteFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cache := NewSessionCache(context.Background(), failingCacheStore{}, zap.New(core))

	cache.Put(context.Background(), "cheatsheet_git", "detail")

	var v string
	if !cache.Get("cheatsheet_git", &v) || v != "detail" {
		t.Fatalf("write failure should not drop the in-memory entry")
	}
	if logs.FilterMessage("session cache: write slot failed").Len() != 1 {
		t.Fatalf("expected a write failure warning, got %v", logs.All())
	}
}
