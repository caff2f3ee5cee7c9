package cachestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// pingWithBackoff waits for a freshly dialed backend to answer.
func pingWithBackoff(ctx context.Context, p pinger) error {
	operation := func() (struct{}, error) {
		return struct{}{}, p.Ping(ctx)
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(4), backoff.WithMaxElapsedTime(10*time.Second))
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store p describes. A memory store (alone or as L1) and the
// SQL backends are swept of expired entries until ctx is done. The returned closer releases the remote backend.
// An unreachable backend is a startup error: the cache never silently degrades.
func Open(ctx context.Context, p Params) (Store, io.Closer, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		remote interface {
			Store
			pinger
			io.Closer
		}
		err error
	)
	switch p.Backend {
	case BackendMemory:
		m := NewMemory(p.MaxEntries, p.CleanupInterval)
		go m.Run(ctx)
		slog.Info("cache: memory store", slog.Int("max_entries", p.MaxEntries))
		return m, nopCloser{}, nil
	case BackendRedis:
		remote, err = DialRedis(p.URL)
	case BackendSQLite:
		remote, err = OpenSQLite(ctx, p.URL)
	case BackendPostgres:
		remote, err = ConnectPostgres(ctx, p.URL)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := pingWithBackoff(ctx, remote); err != nil {
		remote.Close()
		return nil, nil, fmt.Errorf("cache backend %s unreachable: %w", p.Backend, err)
	}
	slog.Info("cache: remote store connected", slog.String("backend", p.Backend), slog.Bool("l1", p.L1))
	if sweeper, ok := remote.(interface {
		Run(ctx context.Context, interval time.Duration)
	}); ok {
		go sweeper.Run(ctx, p.CleanupInterval)
	}

	if !p.L1 {
		return remote, remote, nil
	}
	l1 := NewMemory(p.MaxEntries, p.CleanupInterval)
	go l1.Run(ctx)
	return NewTiered(l1, remote, time.Minute), remote, nil
}
