// Package ytserver exposes the YouTube metadata service as MCP tools.
package ytserver

import (
	"context"
	"time"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
	"github.com/anatolykoptev/go_ytmeta/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resolver is what the tools need from the service.
type Resolver interface {
	Search(ctx context.Context, q sources.SearchQuery) (engine.ResultSet, error)
	Playlist(ctx context.Context, q sources.PlaylistQuery) (engine.ResultSet, error)
}

// RegisterTools registers youtube_search and youtube_playlist on the given MCP server.
func RegisterTools(server *mcp.Server, svc Resolver) {
	registerSearch(server, svc)
	registerPlaylist(server, svc)
}

// ResultMeta describes how a result was produced.
type ResultMeta struct {
	Partial       bool      `json:"partial"`
	PartialReason string    `json:"partial_reason,omitempty"`
	Batches       int       `json:"batches"`
	ElapsedMS     int64     `json:"elapsed_ms"`
	FetchedAt     time.Time `json:"fetched_at"`
}

func metaOf(rs engine.ResultSet) ResultMeta {
	return ResultMeta{
		Partial:       rs.Partial,
		PartialReason: rs.PartialReason,
		Batches:       rs.Batches,
		ElapsedMS:     rs.Elapsed.Milliseconds(),
		FetchedAt:     rs.FetchedAt,
	}
}

// Descriptions in tool output are shortened; the full text stays in the cache.
const outputDescriptionRunes = 300

func trimDescriptions(items []engine.Item) []engine.Item {
	for i := range items {
		if d := items[i].Description; d != nil {
			s := engine.TruncateRunes(*d, outputDescriptionRunes, "…")
			items[i].Description = &s
		}
	}
	return items
}
