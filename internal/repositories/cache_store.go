package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// MemoryCacheStore keeps values in process memory.
type MemoryCacheStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryCacheStore returns an empty store.
func NewMemoryCacheStore() *MemoryCacheStore {
	return &MemoryCacheStore{values: make(map[string]string)}
}

func (s *MemoryCacheStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemoryCacheStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// FileCacheStore persists values as a JSON object in a single file. Writes go to a temporary
// file first and are renamed into place.
type FileCacheStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCacheStore returns a store backed by path. The file is created on first Set.
func NewFileCacheStore(path string) (*FileCacheStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("file cache store: path is required")
	}
	return &FileCacheStore{path: path}, nil
}

func (s *FileCacheStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (s *FileCacheStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future write.
		values = make(map[string]string)
	}
	values[key] = value

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("file cache store: encode: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("file cache store: create dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cheatstack-cache-*")
	if err != nil {
		return fmt.Errorf("file cache store: create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file cache store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file cache store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file cache store: replace: %w", err)
	}
	return nil
}

func (s *FileCacheStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("file cache store: read: %w", err)
	}
	values := make(map[string]string)
	if len(strings.TrimSpace(string(data))) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("file cache store: decode %s: %w", s.path, err)
	}
	return values, nil
}
