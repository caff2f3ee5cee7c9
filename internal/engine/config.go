package engine

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anatolykoptev/go_ytmeta/internal/cachestore"
)

// Config holds all engine configuration, built once in main and passed to constructors.
type Config struct {
	BaseURL             string
	FetchTimeout        time.Duration // initial page fetch
	ContinuationTimeout time.Duration // per continuation batch, clamped to remaining budget
	MaxBatches          int           // includes the initial page
	TotalBudget         time.Duration
	CacheTTL            time.Duration
	Cache               cachestore.Params
	FetchRPS            float64 // <= 0 disables outbound limiting
	FetchBurst          int
	MaxBodyBytes        int64
	HTTPClient          *http.Client
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:             "https://www.youtube.com",
		FetchTimeout:        10 * time.Second,
		ContinuationTimeout: 5 * time.Second,
		MaxBatches:          15,
		TotalBudget:         30 * time.Second,
		CacheTTL:            time.Hour,
		Cache: cachestore.Params{
			Backend:         cachestore.BackendMemory,
			MaxEntries:      1000,
			CleanupInterval: 5 * time.Minute,
		},
		FetchRPS:     5,
		FetchBurst:   5,
		MaxBodyBytes: 8 * 1024 * 1024,
	}
}

// Validate enforces required values and sane limits.
func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be > 0, got %s", c.FetchTimeout))
	}
	if c.ContinuationTimeout <= 0 {
		errs = append(errs, fmt.Errorf("continuation timeout must be > 0, got %s", c.ContinuationTimeout))
	}
	if c.MaxBatches < 1 {
		errs = append(errs, fmt.Errorf("max batches must be >= 1, got %d", c.MaxBatches))
	}
	if c.TotalBudget <= 0 {
		errs = append(errs, fmt.Errorf("total budget must be > 0, got %s", c.TotalBudget))
	}
	if c.CacheTTL < time.Second {
		errs = append(errs, fmt.Errorf("cache ttl must be >= 1s, got %s", c.CacheTTL))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max body bytes must be > 0, got %d", c.MaxBodyBytes))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CrawlConfig is the slice of Config the crawler needs.
func (c Config) CrawlConfig() CrawlConfig {
	return CrawlConfig{
		MaxBatches:          c.MaxBatches,
		TotalBudget:         c.TotalBudget,
		FetchTimeout:        c.FetchTimeout,
		ContinuationTimeout: c.ContinuationTimeout,
	}
}
