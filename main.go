// Command go_ytmeta is a YouTube search and playlist metadata MCP server.
//
// Exposes two MCP tools: youtube_search, youtube_playlist.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_ytmeta/internal/cachestore"
	"github.com/anatolykoptev/go_ytmeta/internal/engine"
	"github.com/anatolykoptev/go_ytmeta/internal/engine/sources"
	"github.com/anatolykoptev/go_ytmeta/internal/ytserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	initLogger(env.Str("LOG_LEVEL", "info"))

	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := cachestore.Open(ctx, cfg.Cache)
	if err != nil {
		slog.Error("cache init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer closer.Close()

	svc := sources.NewService(cfg, engine.NewFetcher(cfg), store)

	slog.Info("starting go_ytmeta",
		slog.String("port", mcpPort),
		slog.String("cache", cfg.Cache.Backend),
		slog.Int("max_batches", cfg.MaxBatches),
		slog.Duration("budget", cfg.TotalBudget),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytmeta",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", 2))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytmeta",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 120 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	d := engine.DefaultConfig()
	return engine.Config{
		BaseURL:             env.Str("YOUTUBE_BASE_URL", d.BaseURL),
		FetchTimeout:        env.Duration("FETCH_TIMEOUT", d.FetchTimeout),
		ContinuationTimeout: env.Duration("CONTINUATION_TIMEOUT", d.ContinuationTimeout),
		MaxBatches:          env.Int("MAX_BATCHES", d.MaxBatches),
		TotalBudget:         env.Duration("CRAWL_BUDGET", d.TotalBudget),
		CacheTTL:            env.Duration("CACHE_TTL", d.CacheTTL),
		Cache: cachestore.Params{
			Backend:         env.Str("CACHE_BACKEND", d.Cache.Backend),
			URL:             env.Str("CACHE_URL", env.Str("REDIS_URL", "")),
			MaxEntries:      env.Int("CACHE_MAX_ENTRIES", d.Cache.MaxEntries),
			CleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", d.Cache.CleanupInterval),
			L1:              envBool("CACHE_L1", true),
		},
		FetchRPS:     env.Float("FETCH_RPS", d.FetchRPS),
		FetchBurst:   env.Int("FETCH_BURST", d.FetchBurst),
		MaxBodyBytes: int64(env.Int("MAX_BODY_BYTES", int(d.MaxBodyBytes))),
	}
}

// envBool reads a boolean env var, accepting anything strconv.ParseBool does.
// Unset or unparsable values fall back to def.
func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(env.Str(key, "")))
	if err != nil {
		return def
	}
	return v
}

func initLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
