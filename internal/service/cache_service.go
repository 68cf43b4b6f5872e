package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CacheService is the render-side cache surface. The posting pipeline only
// invalidates; the page renderer and translation layer read and write
// through the same keys.
type CacheService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	InvalidatePage(ctx context.Context, tenant string) error
}

type cacheService struct {
	kv KVStore
}

func NewCacheService(kv KVStore) CacheService {
	return &cacheService{kv: kv}
}

func (s *cacheService) Get(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, key)
}

func (s *cacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.kv.Set(ctx, key, value, ttl)
}

func pageKey(tenant string) string {
	return fmt.Sprintf("page:%s:home", tenant)
}

// InvalidatePage drops the tenant's rendered homepage entry. Deleting an
// absent key succeeds.
func (s *cacheService) InvalidatePage(ctx context.Context, tenant string) error {
	if err := s.kv.Delete(ctx, pageKey(tenant)); err != nil {
		slog.Error(err.Error())
		return err
	}
	slog.Info("invalidated page cache", "tenant", tenant)
	return nil
}
