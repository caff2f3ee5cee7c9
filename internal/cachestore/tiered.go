package cachestore

import (
	"context"
	"log/slog"
	"time"
)

// Tiered fronts a remote store with a memory tier.
// L1 holds entries for at most l1TTL so a remote expiry is observed soon after it happens.
// Errors from the remote tier are returned unchanged.
type Tiered struct {
	l1    *Memory
	l2    Store
	l1TTL time.Duration
}

// NewTiered builds a two-tier store.
func NewTiered(l1 *Memory, l2 Store, l1TTL time.Duration) *Tiered {
	if l1TTL <= 0 {
		l1TTL = time.Minute
	}
	return &Tiered{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := t.l1.Get(ctx, key)
	if err != nil {
		slog.Debug("cache: L1 get failed", slog.String("key", key), slog.Any("error", err))
	} else if ok {
		slog.Debug("cache: L1 hit", slog.String("key", key))
		return data, true, nil
	}
	data, ok, err = t.l2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	slog.Debug("cache: L2 hit", slog.String("key", key))
	if err := t.l1.Set(ctx, key, data, t.l1TTL); err != nil {
		slog.Debug("cache: L1 fill failed", slog.String("key", key), slog.Any("error", err))
	}
	return data, true, nil
}

func (t *Tiered) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := t.l2.Set(ctx, key, val, ttl); err != nil {
		return err
	}
	return t.l1.Set(ctx, key, val, min(ttl, t.l1TTL))
}
