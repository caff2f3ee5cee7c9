package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
)

// Service resolves search and playlist requests through the cache coordinator.
type Service struct {
	base    string
	crawler *engine.Crawler
	coord   *engine.Coordinator
}

// NewService wires a crawler and coordinator from cfg.
func NewService(cfg engine.Config, fetcher engine.PageFetcher, store engine.Store) *Service {
	return &Service{
		base:    cfg.BaseURL,
		crawler: engine.NewCrawler(fetcher, NewDispatch(), cfg.CrawlConfig()),
		coord:   engine.NewCoordinator(store, cfg.CacheTTL),
	}
}

// SearchQuery is a validated search request.
type SearchQuery struct {
	Keyword      string
	Limit        int
	SortBy       string
	ForceRefresh bool
}

// PlaylistQuery is a validated playlist request.
type PlaylistQuery struct {
	ListID       string
	ForceRefresh bool
}

// Search resolves one keyword page. The whole page is cached; sort and limit
// are applied to a copy afterwards.
func (s *Service) Search(ctx context.Context, q SearchQuery) (engine.ResultSet, error) {
	engine.IncrSearchRequests()
	src := NewSearchSource(s.base, q.Keyword)
	rs, err := s.resolve(ctx, src, q.ForceRefresh)
	if err != nil {
		return engine.ResultSet{}, err
	}
	out := rs.Clone()
	engine.SortItems(out.Items, q.SortBy)
	out.Items = engine.LimitItems(out.Items, q.Limit)
	return out, nil
}

// Playlist resolves every track of a playlist, following continuations.
func (s *Service) Playlist(ctx context.Context, q PlaylistQuery) (engine.ResultSet, error) {
	engine.IncrPlaylistRequests()
	return s.resolve(ctx, NewPlaylistSource(s.base, q.ListID), q.ForceRefresh)
}

func (s *Service) resolve(ctx context.Context, src engine.Source, force bool) (engine.ResultSet, error) {
	var opts []engine.ResolveOption
	if force {
		opts = append(opts, engine.WithForceRefresh())
	}
	var rs engine.ResultSet
	err := engine.TrackOperation(ctx, "resolve "+src.Identity(), 20*time.Second, func(ctx context.Context) error {
		var err error
		rs, err = s.coord.Resolve(ctx, src.Identity(), func(ctx context.Context) (engine.ResultSet, error) {
			return s.crawler.Crawl(ctx, src)
		}, opts...)
		return err
	})
	if err != nil {
		slog.Warn("resolve failed", slog.String("source", src.Identity()), slog.Any("error", err))
		return engine.ResultSet{}, err
	}
	return rs, nil
}
