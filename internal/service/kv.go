package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss marks an absent key.
var ErrCacheMiss = errors.New("cache miss")

// KVStore abstracts the key-value backend so the cache and rate-limiter
// services can be exercised against an in-memory fake.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisKVStore struct {
	client *redis.Client
}

func NewRedisKVStore(client *redis.Client) KVStore {
	return &redisKVStore{client: client}
}

func (r *redisKVStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (r *redisKVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisKVStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
