package engine

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher(srv *httptest.Server) *Fetcher {
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.FetchRPS = 0
	cfg.MaxBodyBytes = 1024
	cfg.HTTPClient = srv.Client()
	return NewFetcher(cfg)
}

func TestFetchGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "en-US,en;q=0.9", r.Header.Get("Accept-Language"))
		_, _ = io.WriteString(w, "<html>ok</html>")
	}))
	defer srv.Close()

	page, err := testFetcher(srv).Fetch(context.Background(), FetchRequest{URL: srv.URL + "/results", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.Status)
	assert.Equal(t, "<html>ok</html>", string(page.Body))
}

func TestFetchPOSTContinuation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("Origin"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"continuation":"tok"}`, string(body))
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	_, err := testFetcher(srv).Fetch(context.Background(), FetchRequest{
		URL:   srv.URL + "/youtubei/v1/browse",
		Token: "tok",
		Body:  []byte(`{"continuation":"tok"}`),
	})
	require.NoError(t, err)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		status  int
	}{
		{
			name:    "non-success status",
			handler: func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "busy", http.StatusTooManyRequests) },
			status:  http.StatusTooManyRequests,
		},
		{
			name:    "body over limit",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, strings.Repeat("x", 2048)) },
			status:  http.StatusOK,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout: 50 * time.Millisecond,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := testFetcher(srv).Fetch(context.Background(), FetchRequest{URL: srv.URL, Timeout: tt.timeout})
			var ne *NetworkError
			require.True(t, errors.As(err, &ne), "want *NetworkError, got %v", err)
			assert.Equal(t, tt.status, ne.Status)
			assert.True(t, IsUpstreamError(err))
		})
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	f := testFetcher(srv)
	url := srv.URL
	srv.Close()

	_, err := f.Fetch(context.Background(), FetchRequest{URL: url, Timeout: time.Second})
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Zero(t, ne.Status)
	assert.Contains(t, ne.Error(), url)
}

func TestNetworkErrorMessage(t *testing.T) {
	assert.Equal(t, "fetch u: HTTP 503 Service Unavailable", (&NetworkError{URL: "u", Status: 503}).Error())
	assert.Equal(t, "fetch u: boom", (&NetworkError{URL: "u", Err: errors.New("boom")}).Error())
}
