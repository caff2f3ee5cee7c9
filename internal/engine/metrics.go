package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	FetchRequests    atomic.Int64
	FetchErrors      atomic.Int64
	ExtractionErrors atomic.Int64
	ValidationDrops  atomic.Int64
	CrawlBatches     atomic.Int64
	CrawlsComplete   atomic.Int64
	CrawlsPartial    atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
	CacheShared      atomic.Int64
	CacheErrors      atomic.Int64
	CacheSkipPartial atomic.Int64
	SearchRequests   atomic.Int64
	PlaylistRequests atomic.Int64
}

var metricKeys = []string{
	"fetch_requests", "fetch_errors", "extraction_errors", "validation_drops",
	"crawl_batches", "crawls_complete", "crawls_partial",
	"cache_hits", "cache_misses", "cache_shared", "cache_errors", "cache_skip_partial",
	"search_requests", "playlist_requests",
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"fetch_requests":     metrics.FetchRequests.Load(),
		"fetch_errors":       metrics.FetchErrors.Load(),
		"extraction_errors":  metrics.ExtractionErrors.Load(),
		"validation_drops":   metrics.ValidationDrops.Load(),
		"crawl_batches":      metrics.CrawlBatches.Load(),
		"crawls_complete":    metrics.CrawlsComplete.Load(),
		"crawls_partial":     metrics.CrawlsPartial.Load(),
		"cache_hits":         metrics.CacheHits.Load(),
		"cache_misses":       metrics.CacheMisses.Load(),
		"cache_shared":       metrics.CacheShared.Load(),
		"cache_errors":       metrics.CacheErrors.Load(),
		"cache_skip_partial": metrics.CacheSkipPartial.Load(),
		"search_requests":    metrics.SearchRequests.Load(),
		"playlist_requests":  metrics.PlaylistRequests.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the sources sub-package.
func IncrSearchRequests()   { metrics.SearchRequests.Add(1) }
func IncrPlaylistRequests() { metrics.PlaylistRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	if elapsed := time.Since(start); elapsed > threshold {
		slog.Warn("slow operation",
			slog.String("op", name),
			slog.Duration("elapsed", elapsed),
			slog.Bool("failed", err != nil))
	}
	return err
}
