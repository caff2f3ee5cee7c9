package engine

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlComplete(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = pageHTML(batchJSON("t1", vid(1), vid(2), vid(3)))
	f.pages["t1"] = []byte(batchJSON("", vid(4), vid(5)))

	c := NewCrawler(f, testDispatch(), testCrawlConfig())
	rs, err := c.Crawl(context.Background(), fakeSource{id: "playlist:PL1", paginate: true})
	require.NoError(t, err)

	assert.False(t, rs.Partial)
	assert.Empty(t, rs.PartialReason)
	assert.Equal(t, "playlist:PL1", rs.SourceIdentity)
	assert.Equal(t, []string{vid(1), vid(2), vid(3), vid(4), vid(5)}, itemIDs(rs.Items))
	assert.Equal(t, 2, rs.Batches)
	assert.False(t, rs.FetchedAt.IsZero())

	calls := f.Calls()
	require.Len(t, calls, 2)
	assert.Empty(t, calls[0].Token)
	assert.Equal(t, 10*time.Second, calls[0].Timeout)
	assert.Equal(t, "t1", calls[1].Token)
	assert.NotNil(t, calls[1].Body)
	assert.LessOrEqual(t, calls[1].Timeout, 5*time.Second)
}

func TestCrawlBatchLimit(t *testing.T) {
	// Every batch carries a token; only max_batches of them are fetched.
	f := newFakeFetcher()
	f.pages[""] = pageHTML(batchJSON("t1", vid(1), vid(2)))
	f.pages["t1"] = []byte(batchJSON("t2", vid(3)))
	f.pages["t2"] = []byte(batchJSON("t3", vid(4)))

	cfg := testCrawlConfig()
	cfg.MaxBatches = 2
	rs, err := NewCrawler(f, testDispatch(), cfg).Crawl(context.Background(), fakeSource{id: "p", paginate: true})
	require.NoError(t, err)

	assert.True(t, rs.Partial)
	assert.Equal(t, ReasonBatchLimit, rs.PartialReason)
	assert.Equal(t, 2, rs.Batches)
	assert.Len(t, f.Calls(), 2)
	for _, call := range f.Calls() {
		assert.NotEqual(t, "t2", call.Token, "token from the last batch must not be followed")
	}
	assert.Equal(t, []string{vid(1), vid(2), vid(3)}, itemIDs(rs.Items))
}

func TestCrawlFirstBatchFatal(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeFetcher)
		check func(t *testing.T, err error)
	}{
		{
			name: "non-success status",
			setup: func(f *fakeFetcher) {
				f.errs[""] = &NetworkError{URL: "u", Status: http.StatusServiceUnavailable}
			},
			check: func(t *testing.T, err error) {
				var ne *NetworkError
				require.True(t, errors.As(err, &ne))
				assert.Equal(t, http.StatusServiceUnavailable, ne.Status)
			},
		},
		{
			name: "marker missing",
			setup: func(f *fakeFetcher) {
				f.pages[""] = []byte("<html><body>consent wall</body></html>")
			},
			check: func(t *testing.T, err error) {
				var ee *ExtractionError
				require.True(t, errors.As(err, &ee))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			tt.setup(f)
			rs, err := NewCrawler(f, testDispatch(), testCrawlConfig()).Crawl(context.Background(), fakeSource{id: "p", paginate: true})
			require.Error(t, err)
			tt.check(t, err)
			assert.Empty(t, rs.Items)
			assert.Empty(t, rs.SourceIdentity)
		})
	}
}

func TestCrawlLaterBatchFailureIsPartial(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeFetcher)
	}{
		{"network error", func(f *fakeFetcher) { f.errs["t2"] = &NetworkError{URL: "u", Err: context.DeadlineExceeded} }},
		{"malformed batch", func(f *fakeFetcher) { f.pages["t2"] = []byte(`{"truncated":`) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			f.pages[""] = pageHTML(batchJSON("t1", vid(1)))
			f.pages["t1"] = []byte(batchJSON("t2", vid(2)))
			tt.setup(f)

			rs, err := NewCrawler(f, testDispatch(), testCrawlConfig()).Crawl(context.Background(), fakeSource{id: "p", paginate: true})
			require.NoError(t, err)
			assert.True(t, rs.Partial)
			assert.Equal(t, ReasonContinuationError, rs.PartialReason)
			assert.Equal(t, []string{vid(1), vid(2)}, itemIDs(rs.Items))
			assert.Equal(t, 3, rs.Batches)
		})
	}
}

func TestCrawlFirstContinuationFailure(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = pageHTML(batchJSON("t1", vid(1)))
	f.errs["t1"] = &NetworkError{URL: "u", Status: http.StatusBadGateway}

	rs, err := NewCrawler(f, testDispatch(), testCrawlConfig()).Crawl(context.Background(), fakeSource{id: "p", paginate: true})
	require.NoError(t, err)
	assert.True(t, rs.Partial)
	assert.Equal(t, ReasonContinuationError, rs.PartialReason)
	assert.Equal(t, []string{vid(1)}, itemIDs(rs.Items))
}

func TestCrawlRepeatedToken(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = pageHTML(batchJSON("loop", vid(1)))
	f.pages["loop"] = []byte(batchJSON("loop", vid(2)))

	rs, err := NewCrawler(f, testDispatch(), testCrawlConfig()).Crawl(context.Background(), fakeSource{id: "p", paginate: true})
	require.NoError(t, err)
	assert.True(t, rs.Partial)
	assert.Equal(t, ReasonRepeatedToken, rs.PartialReason)
	assert.Len(t, f.Calls(), 2)
	assert.Equal(t, []string{vid(1), vid(2)}, itemIDs(rs.Items))
}

func TestCrawlBudget(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	f := newFakeFetcher()
	f.onFetch = func(FetchRequest) { clock.Advance(20 * time.Second) }
	f.pages[""] = pageHTML(batchJSON("t1", vid(1)))
	f.pages["t1"] = []byte(batchJSON("t2", vid(2)))
	f.pages["t2"] = []byte(batchJSON("", vid(3)))

	c := NewCrawler(f, testDispatch(), testCrawlConfig())
	c.now = clock.Now
	rs, err := c.Crawl(context.Background(), fakeSource{id: "p", paginate: true})
	require.NoError(t, err)

	assert.True(t, rs.Partial)
	assert.Equal(t, ReasonBudget, rs.PartialReason)
	assert.Equal(t, []string{vid(1), vid(2)}, itemIDs(rs.Items))
	assert.Equal(t, 40*time.Second, rs.Elapsed)

	calls := f.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 5*time.Second, calls[1].Timeout)
}

func TestCrawlTimeoutClampedToBudget(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	f := newFakeFetcher()
	f.onFetch = func(FetchRequest) { clock.Advance(28 * time.Second) }
	f.pages[""] = pageHTML(batchJSON("t1", vid(1)))
	f.pages["t1"] = []byte(batchJSON("", vid(2)))

	c := NewCrawler(f, testDispatch(), testCrawlConfig())
	c.now = clock.Now
	_, err := c.Crawl(context.Background(), fakeSource{id: "p", paginate: true})
	require.NoError(t, err)

	calls := f.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 2*time.Second, calls[1].Timeout)
}

func TestCrawlSinglePageSourceIgnoresToken(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = pageHTML(batchJSON("more", vid(1), vid(2)))

	rs, err := NewCrawler(f, testDispatch(), testCrawlConfig()).Crawl(context.Background(), fakeSource{id: "search:go"})
	require.NoError(t, err)
	assert.False(t, rs.Partial)
	assert.Len(t, f.Calls(), 1)
	assert.Len(t, rs.Items, 2)
}

func TestCrawlDropsInvalidItemsAndReadsHeader(t *testing.T) {
	data := `{"header":{"playlistHeaderRenderer":{"title":{"simpleText":"First"}}},"contents":[` +
		`{"videoRenderer":{"videoId":"bad"}},` +
		`{"videoRenderer":{"videoId":"` + vid(1) + `"}},` +
		`{"playlistHeaderRenderer":{"title":{"simpleText":"Second"}}}]}`
	f := newFakeFetcher()
	f.pages[""] = pageHTML(data)

	rs, err := NewCrawler(f, testDispatch(), testCrawlConfig()).Crawl(context.Background(), fakeSource{id: "p", paginate: true})
	require.NoError(t, err)
	assert.Equal(t, []string{vid(1)}, itemIDs(rs.Items))
	require.NotNil(t, rs.Title)
	assert.Equal(t, "First", *rs.Title)
	for _, it := range rs.Items {
		assert.True(t, ValidVideoID(it.ID))
	}
}

func TestCrawlEmptyPageIsComplete(t *testing.T) {
	f := newFakeFetcher()
	f.pages[""] = pageHTML(`{"contents":{}}`)

	rs, err := NewCrawler(f, testDispatch(), testCrawlConfig()).Crawl(context.Background(), fakeSource{id: "p", paginate: true})
	require.NoError(t, err)
	assert.False(t, rs.Partial)
	assert.NotNil(t, rs.Items)
	assert.Empty(t, rs.Items)
}

func TestIsPartialReason(t *testing.T) {
	for _, r := range []string{ReasonBatchLimit, ReasonBudget, ReasonContinuationError, ReasonRepeatedToken} {
		assert.True(t, IsPartialReason(r), r)
	}
	assert.False(t, IsPartialReason(""))
}
