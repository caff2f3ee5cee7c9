package sources

import (
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
)

const ytSearchFilter = "EgIQAQ%3D%3D" // videos-only filter param

// SearchSource is one keyword search results page. Search never paginates:
// the first page is the whole result.
type SearchSource struct {
	base    string
	keyword string
}

// NewSearchSource builds a search source. keyword must already be validated.
func NewSearchSource(baseURL, keyword string) SearchSource {
	return SearchSource{
		base:    strings.TrimRight(baseURL, "/"),
		keyword: strings.ToLower(engine.NormalizeIdentity(keyword)),
	}
}

func (s SearchSource) Identity() string { return "search:" + s.keyword }

func (s SearchSource) InitialRequest() engine.FetchRequest {
	return engine.FetchRequest{
		URL: s.base + "/results?search_query=" + url.QueryEscape(s.keyword) + "&sp=" + ytSearchFilter,
	}
}

func (s SearchSource) ContinuationRequest(string) (engine.FetchRequest, bool) {
	return engine.FetchRequest{}, false
}
