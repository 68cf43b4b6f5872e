package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/craftsites/autopost/internal/service"
)

// fakeKVStore is an in-memory KVStore. TTLs are honored lazily on Get.
type fakeKVStore struct {
	mu      sync.Mutex
	items   map[string]fakeKVEntry
	failing bool
	deletes []string
}

type fakeKVEntry struct {
	value     string
	expiresAt time.Time
}

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{items: make(map[string]fakeKVEntry)}
}

var errKVDown = errors.New("kv store down")

func (f *fakeKVStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return "", errKVDown
	}
	e, ok := f.items[key]
	if !ok {
		return "", service.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(f.items, key)
		return "", service.ErrCacheMiss
	}
	return e.value, nil
}

func (f *fakeKVStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errKVDown
	}
	e := fakeKVEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	f.items[key] = e
	return nil
}

func (f *fakeKVStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errKVDown
	}
	delete(f.items, key)
	f.deletes = append(f.deletes, key)
	return nil
}
