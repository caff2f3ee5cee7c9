// Package cachestore holds the byte-level key/value backends behind the result cache.
// Every backend treats a missing or expired key as a miss and reports any other
// failure as an error; none of them downgrades a failure to a miss.
package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backend names accepted by Params.Backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Store is a TTL key/value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Params selects and configures a backend.
type Params struct {
	Backend         string
	URL             string // redis URL, sqlite file path or postgres DSN
	MaxEntries      int    // memory backend and L1 capacity, <= 0 means unbounded
	CleanupInterval time.Duration
	L1              bool // front a remote backend with a memory tier
}

// Validate checks that the backend is known and has what it needs.
func (p Params) Validate() error {
	switch p.Backend {
	case BackendMemory:
		return nil
	case BackendRedis, BackendSQLite, BackendPostgres:
		if p.URL == "" {
			return fmt.Errorf("cache backend %q requires a url", p.Backend)
		}
		return nil
	case "":
		return errors.New("cache backend is required")
	}
	return fmt.Errorf("unknown cache backend %q", p.Backend)
}
