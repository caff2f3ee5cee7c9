package ytserver

import (
	"context"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
	"github.com/anatolykoptev/go_ytmeta/internal/engine/sources"
	"github.com/anatolykoptev/go_ytmeta/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PlaylistInput struct {
	URL          string `json:"playlist_url" jsonschema:"YouTube playlist URL containing a list= parameter"`
	ForceRefresh bool   `json:"force_refresh,omitempty" jsonschema:"Skip the cache and fetch the playlist again"`
}

type PlaylistOutput struct {
	PlaylistID    string        `json:"playlist_id"`
	Title         *string       `json:"title"`
	ReportedCount *int          `json:"reported_count"`
	Count         int           `json:"count"`
	Tracks        []engine.Item `json:"tracks"`
	Meta          ResultMeta    `json:"meta"`
}

func registerPlaylist(server *mcp.Server, svc Resolver) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_playlist",
		Description: "List every track of a YouTube playlist with structured metadata (video_id, title, channel, URL, duration, position). Large playlists are paginated up to a fixed batch and time budget; meta.partial reports whether the list was cut short.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input PlaylistInput) (*mcp.CallToolResult, PlaylistOutput, error) {
		listID, err := sources.ParsePlaylistURL(input.URL)
		if err != nil {
			return nil, PlaylistOutput{}, toolutil.Fail("youtube_playlist", err)
		}
		rs, err := svc.Playlist(ctx, sources.PlaylistQuery{ListID: listID, ForceRefresh: input.ForceRefresh})
		if err != nil {
			return nil, PlaylistOutput{}, toolutil.Fail("youtube_playlist", err)
		}
		items := trimDescriptions(rs.Clone().Items)
		return nil, PlaylistOutput{
			PlaylistID:    listID,
			Title:         rs.Title,
			ReportedCount: rs.ReportedCount,
			Count:         len(items),
			Tracks:        items,
			Meta:          metaOf(rs),
		}, nil
	})
}
