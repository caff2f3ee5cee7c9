package cachestore

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is an in-process store. Entries expire lazily on read and in bulk
// from Run's cleanup loop.
type Memory struct {
	entries         sync.Map // key → *memEntry
	count           atomic.Int64
	maxEntries      int
	cleanupInterval time.Duration
	now             func() time.Time
	mu              sync.Mutex // serializes eviction
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory returns a memory store holding at most maxEntries keys.
func NewMemory(maxEntries int, cleanupInterval time.Duration) *Memory {
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	return &Memory{maxEntries: maxEntries, cleanupInterval: cleanupInterval, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	e := val.(*memEntry)
	if !m.now().Before(e.expiresAt) {
		m.delete(key)
		return nil, false, nil
	}
	return bytes.Clone(e.data), true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.evictIfNeeded(key)
	e := &memEntry{data: bytes.Clone(val), expiresAt: m.now().Add(ttl)}
	if _, loaded := m.entries.Swap(key, e); !loaded {
		m.count.Add(1)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int { return int(m.count.Load()) }

func (m *Memory) delete(key string) {
	if _, loaded := m.entries.LoadAndDelete(key); loaded {
		m.count.Add(-1)
	}
}

// evictIfNeeded makes room for one new key: expired entries first, then the
// entries closest to expiry.
func (m *Memory) evictIfNeeded(incoming string) {
	if m.maxEntries <= 0 {
		return
	}
	if _, exists := m.entries.Load(incoming); exists {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Len() < m.maxEntries {
		return
	}

	now := m.now()
	m.entries.Range(func(key, val any) bool {
		if e, ok := val.(*memEntry); ok && !now.Before(e.expiresAt) {
			m.delete(key.(string))
		}
		return m.Len() >= m.maxEntries
	})

	for m.Len() >= m.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		m.entries.Range(func(key, val any) bool {
			e, ok := val.(*memEntry)
			if ok && (oldestKey == "" || e.expiresAt.Before(oldestAt)) {
				oldestKey = key.(string)
				oldestAt = e.expiresAt
			}
			return true
		})
		if oldestKey == "" {
			return
		}
		m.delete(oldestKey)
	}
}

// Sweep removes every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	removed := 0
	m.entries.Range(func(key, val any) bool {
		if e, ok := val.(*memEntry); ok && !now.Before(e.expiresAt) {
			m.delete(key.(string))
			removed++
		}
		return true
	})
	return removed
}

// Run sweeps expired entries every cleanup interval until ctx is done.
func (m *Memory) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
