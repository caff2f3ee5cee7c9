package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is the cache backend. A miss is (nil, false, nil); any error is a backend failure.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// ComputeFunc produces a fresh result for a cache miss, normally Crawler.Crawl bound to a Source.
type ComputeFunc func(ctx context.Context) (ResultSet, error)

// NormalizeIdentity trims and collapses inner whitespace. Case is kept: playlist IDs are case-sensitive.
func NormalizeIdentity(identity string) string {
	return strings.Join(strings.Fields(identity), " ")
}

// CacheKey builds the deterministic store key for a source identity.
func CacheKey(identity string) string {
	sum := sha256.Sum256([]byte(NormalizeIdentity(identity)))
	return "ytm:" + hex.EncodeToString(sum[:])
}

type resolveOptions struct {
	forceRefresh bool
}

// ResolveOption tunes one Resolve call.
type ResolveOption func(*resolveOptions)

// WithForceRefresh skips the cache lookup. The fresh result is still written back.
func WithForceRefresh() ResolveOption {
	return func(o *resolveOptions) { o.forceRefresh = true }
}

// Coordinator puts a TTL cache and single-flight deduplication in front of a ComputeFunc.
// Partial results are returned but never stored. Store failures are returned as
// *CacheBackendError and never bypassed.
type Coordinator struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
}

// NewCoordinator returns a coordinator writing entries with ttl.
func NewCoordinator(store Store, ttl time.Duration) *Coordinator {
	return &Coordinator{store: store, ttl: ttl}
}

// Resolve returns the cached result for identity or computes it.
// Concurrent calls for the same identity share one computation and its outcome.
// A caller whose ctx ends while waiting gets ctx.Err(); the computation keeps running
// for the other callers.
func (c *Coordinator) Resolve(ctx context.Context, identity string, compute ComputeFunc, opts ...ResolveOption) (ResultSet, error) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}
	key := CacheKey(identity)

	if !o.forceRefresh {
		rs, ok, err := c.lookup(ctx, key)
		if err != nil {
			return ResultSet{}, err
		}
		if ok {
			return rs, nil
		}
	}
	metrics.CacheMisses.Add(1)

	ch := c.group.DoChan(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		// A previous leader may have stored the entry after our lookup missed.
		if !o.forceRefresh {
			rs, ok, err := c.lookup(lctx, key)
			if err != nil {
				return ResultSet{}, err
			}
			if ok {
				return rs, nil
			}
		}
		return c.compute(lctx, key, compute)
	})
	select {
	case <-ctx.Done():
		return ResultSet{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.CacheShared.Add(1)
		}
		if res.Err != nil {
			return ResultSet{}, res.Err
		}
		return res.Val.(ResultSet), nil
	}
}

func (c *Coordinator) lookup(ctx context.Context, key string) (ResultSet, bool, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		metrics.CacheErrors.Add(1)
		return ResultSet{}, false, &CacheBackendError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return ResultSet{}, false, nil
	}
	var rs ResultSet
	if err := json.Unmarshal(data, &rs); err != nil || rs.Partial || IsPartialReason(rs.PartialReason) {
		slog.Warn("cache: undecodable entry treated as miss", slog.String("key", key), slog.Any("error", err))
		return ResultSet{}, false, nil
	}
	metrics.CacheHits.Add(1)
	slog.Debug("cache: hit", slog.String("key", key))
	return rs, true, nil
}

// compute is the single-flight leader body.
func (c *Coordinator) compute(ctx context.Context, key string, fn ComputeFunc) (ResultSet, error) {
	rs, err := fn(ctx)
	if err != nil {
		return ResultSet{}, err
	}
	if rs.Partial {
		metrics.CacheSkipPartial.Add(1)
		slog.Info("cache: partial result not stored",
			slog.String("key", key), slog.String("reason", rs.PartialReason))
		return rs, nil
	}
	entry, err := NewCacheEntry(key, c.ttl, rs)
	if err != nil {
		return ResultSet{}, fmt.Errorf("build cache entry: %w", err)
	}
	data, err := json.Marshal(entry.Payload)
	if err != nil {
		return ResultSet{}, fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.store.Set(ctx, entry.Key, data, entry.TTL); err != nil {
		metrics.CacheErrors.Add(1)
		return ResultSet{}, &CacheBackendError{Op: "set", Key: key, Err: err}
	}
	return rs, nil
}
