package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// vid returns a valid 11-char video ID.
func vid(i int) string { return fmt.Sprintf("vid%08d", i) }

func videosJSON(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, fmt.Sprintf(`{"videoRenderer":{"videoId":%q,"title":{"simpleText":"Video %s"}}}`, id, id))
	}
	return out
}

// batchJSON renders a continuation batch with the given items and optional next token.
func batchJSON(token string, ids ...string) string {
	items := videosJSON(ids...)
	if token != "" {
		items = append(items, fmt.Sprintf(`{"continuationItemRenderer":{"continuationEndpoint":{"continuationCommand":{"token":%q}}}}`, token))
	}
	return `{"onResponseReceivedActions":[{"appendContinuationItemsAction":{"continuationItems":[` +
		strings.Join(items, ",") + `]}}]}`
}

func pageHTML(data string) []byte {
	return []byte(`<!DOCTYPE html><html><head><title>t</title></head><body>` +
		`<script nonce="x">var ytInitialData = ` + data + `;</script></body></html>`)
}

func testDispatch() *Dispatch {
	d := NewDispatch()
	d.RegisterItem("videoRenderer", func(n Node) Item {
		id, _ := String(Lookup(n, "videoId"))
		it := Item{ID: id}
		if t, ok := Text(Lookup(n, "title")); ok {
			it.Title = &t
		}
		if c, ok := Text(Lookup(n, "ownerText")); ok {
			it.Channel = &c
		}
		return it
	})
	d.RegisterContinuation("continuationItemRenderer", func(n Node) (string, bool) {
		return String(Lookup(n, "continuationEndpoint", "continuationCommand", "token"))
	})
	d.RegisterHeader("playlistHeaderRenderer", func(n Node) Header {
		var h Header
		if t, ok := Text(Lookup(n, "title")); ok {
			h.Title = &t
		}
		return h
	})
	return d
}

// fakeFetcher serves pages by continuation token; "" is the initial page.
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string][]byte
	errs    map[string]error
	calls   []FetchRequest
	onFetch func(req FetchRequest)
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string][]byte{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, req FetchRequest) (RawPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	body, ok := f.pages[req.Token]
	err := f.errs[req.Token]
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook(req)
	}
	if err != nil {
		return RawPage{}, err
	}
	if !ok {
		return RawPage{}, &NetworkError{URL: req.URL, Status: 404}
	}
	return RawPage{URL: req.URL, Status: 200, Body: body}, nil
}

func (f *fakeFetcher) Calls() []FetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FetchRequest(nil), f.calls...)
}

type fakeSource struct {
	id       string
	paginate bool
}

func (s fakeSource) Identity() string { return s.id }

func (s fakeSource) InitialRequest() FetchRequest {
	return FetchRequest{URL: "https://example.test/" + s.id}
}

func (s fakeSource) ContinuationRequest(token string) (FetchRequest, bool) {
	if !s.paginate {
		return FetchRequest{}, false
	}
	return FetchRequest{URL: "https://example.test/browse", Body: []byte(`{"continuation":"` + token + `"}`)}, true
}

// fakeClock advances only when told to.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testCrawlConfig() CrawlConfig {
	return CrawlConfig{
		MaxBatches:          15,
		TotalBudget:         30 * time.Second,
		FetchTimeout:        10 * time.Second,
		ContinuationTimeout: 5 * time.Second,
	}
}

func itemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
