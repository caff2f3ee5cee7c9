package ytserver

import (
	"context"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
	"github.com/anatolykoptev/go_ytmeta/internal/engine/sources"
	"github.com/anatolykoptev/go_ytmeta/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type SearchInput struct {
	Keyword      string `json:"keyword" jsonschema:"Search keywords (1-200 characters)"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Max videos to return (default 1, max 100)"`
	SortBy       string `json:"sort_by,omitempty" jsonschema:"relevance (default) or date"`
	ForceRefresh bool   `json:"force_refresh,omitempty" jsonschema:"Skip the cache and fetch fresh results"`
}

type SearchOutput struct {
	Keyword string        `json:"keyword"`
	SortBy  string        `json:"sort_by"`
	Count   int           `json:"count"`
	Videos  []engine.Item `json:"videos"`
	Meta    ResultMeta    `json:"meta"`
}

func registerSearch(server *mcp.Server, svc Resolver) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_search",
		Description: "Search YouTube videos by keyword. Returns structured metadata (video_id, title, channel, URL, publish text, duration, view count, description snippet). Sort by relevance or date. Results are cached.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
		q, err := searchQuery(input)
		if err != nil {
			return nil, SearchOutput{}, toolutil.Fail("youtube_search", err)
		}
		rs, err := svc.Search(ctx, q)
		if err != nil {
			return nil, SearchOutput{}, toolutil.Fail("youtube_search", err)
		}
		return nil, SearchOutput{
			Keyword: q.Keyword,
			SortBy:  q.SortBy,
			Count:   len(rs.Items),
			Videos:  trimDescriptions(rs.Items),
			Meta:    metaOf(rs),
		}, nil
	})
}

func searchQuery(in SearchInput) (sources.SearchQuery, error) {
	kw, err := sources.ValidateKeyword(in.Keyword)
	if err != nil {
		return sources.SearchQuery{}, err
	}
	limit, err := sources.ValidateLimit(in.Limit)
	if err != nil {
		return sources.SearchQuery{}, err
	}
	sortBy, err := sources.ValidateSort(in.SortBy)
	if err != nil {
		return sources.SearchQuery{}, err
	}
	return sources.SearchQuery{Keyword: kw, Limit: limit, SortBy: sortBy, ForceRefresh: in.ForceRefresh}, nil
}
