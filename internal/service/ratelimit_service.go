package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftsites/autopost/internal/apperr"
)

// RateLimitService enforces a fixed window per (endpoint, caller). State
// lives in the shared KV store so every instance sees the same counters.
// On any storage error the limiter fails open: this guard protects cost,
// not correctness, and availability wins.
type RateLimitService interface {
	Allow(ctx context.Context, endpoint, caller string) error
}

type rateLimitService struct {
	kv     KVStore
	max    int
	window time.Duration
}

func NewRateLimitService(kv KVStore, max int, window time.Duration) RateLimitService {
	return &rateLimitService{kv: kv, max: max, window: window}
}

type rateWindow struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

func rateKey(endpoint, caller string) string {
	if caller == "" {
		caller = "unknown"
	}
	return fmt.Sprintf("rl:%s:%s", endpoint, caller)
}

func (s *rateLimitService) Allow(ctx context.Context, endpoint, caller string) error {
	key := rateKey(endpoint, caller)
	now := time.Now()

	raw, err := s.kv.Get(ctx, key)
	if err != nil && err != ErrCacheMiss {
		slog.Error("rate limiter storage error, failing open", "error", err.Error())
		return nil
	}

	var w rateWindow
	if err == ErrCacheMiss || json.Unmarshal([]byte(raw), &w) != nil || now.After(w.ResetAt) {
		w = rateWindow{Count: 1, ResetAt: now.Add(s.window)}
		s.store(ctx, key, w)
		return nil
	}

	if w.Count >= s.max {
		return &apperr.RateLimitError{RetryAfter: time.Until(w.ResetAt)}
	}

	w.Count++
	s.store(ctx, key, w)
	return nil
}

func (s *rateLimitService) store(ctx context.Context, key string, w rateWindow) {
	payload, err := json.Marshal(w)
	if err != nil {
		slog.Error(err.Error())
		return
	}
	if err := s.kv.Set(ctx, key, string(payload), time.Until(w.ResetAt)); err != nil {
		slog.Error("rate limiter storage error, failing open", "error", err.Error())
	}
}
