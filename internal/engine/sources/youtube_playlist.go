package sources

import (
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
)

// PlaylistSource is a /playlist page followed by /browse continuation batches.
type PlaylistSource struct {
	base        string
	listID      string
	visitorData string
}

// NewPlaylistSource builds a playlist source for a validated list ID.
func NewPlaylistSource(baseURL, listID string) PlaylistSource {
	return PlaylistSource{
		base:        strings.TrimRight(baseURL, "/"),
		listID:      listID,
		visitorData: generateVisitorData(),
	}
}

func (p PlaylistSource) Identity() string { return "playlist:" + p.listID }

func (p PlaylistSource) InitialRequest() engine.FetchRequest {
	return engine.FetchRequest{URL: p.base + "/playlist?list=" + url.QueryEscape(p.listID)}
}

func (p PlaylistSource) ContinuationRequest(token string) (engine.FetchRequest, bool) {
	return engine.FetchRequest{
		URL:   browseURL(p.base),
		Token: token,
		Body:  browseBody(token, p.visitorData),
	}, true
}
