package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"golang.org/x/time/rate"
)

// FetchRequest describes one fetch attempt. A non-nil Body makes it a JSON POST.
type FetchRequest struct {
	URL     string
	Token   string // continuation token this request consumes, empty for the initial page
	Body    []byte
	Timeout time.Duration
}

// RawPage is a successful response.
type RawPage struct {
	URL     string
	Status  int
	Body    []byte
	Latency time.Duration
}

// PageFetcher performs exactly one HTTP attempt per call.
type PageFetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (RawPage, error)
}

// Fetcher is the net/http PageFetcher. It never retries: callers decide what a failure means.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	maxBody int64
	origin  string
}

// NewFetcher builds a fetcher from cfg. cfg.HTTPClient may be nil.
func NewFetcher(cfg Config) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	limit := rate.Inf
	if cfg.FetchRPS > 0 {
		limit = rate.Limit(cfg.FetchRPS)
	}
	burst := cfg.FetchBurst
	if burst < 1 {
		burst = 1
	}
	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		maxBody: cfg.MaxBodyBytes,
		origin:  cfg.BaseURL,
	}
}

// Fetch issues a single request bounded by req.Timeout.
func (f *Fetcher) Fetch(ctx context.Context, req FetchRequest) (RawPage, error) {
	metrics.FetchRequests.Add(1)
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	page, err := f.do(ctx, req)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return RawPage{}, err
	}
	return page, nil
}

func (f *Fetcher) do(ctx context.Context, req FetchRequest) (RawPage, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return RawPage{}, &NetworkError{URL: req.URL, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	method := http.MethodGet
	var body io.Reader
	if req.Body != nil {
		method = http.MethodPost
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return RawPage{}, &NetworkError{URL: req.URL, Err: err}
	}
	for k, v := range stealth.ChromeHeaders() {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("User-Agent", stealth.RandomUserAgent())
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	// Let net/http negotiate compression so it can decode transparently.
	httpReq.Header.Del("Accept-Encoding")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "*/*")
		if f.origin != "" {
			httpReq.Header.Set("Origin", f.origin)
			httpReq.Header.Set("Referer", f.origin+"/")
		}
	}

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return RawPage{}, &NetworkError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return RawPage{}, &NetworkError{
			URL:    req.URL,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", bytes.TrimSpace(snippet)),
		}
	}

	limit := f.maxBody
	if limit <= 0 {
		limit = 8 * 1024 * 1024
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return RawPage{}, &NetworkError{URL: req.URL, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > limit {
		return RawPage{}, &NetworkError{URL: req.URL, Status: resp.StatusCode, Err: fmt.Errorf("body exceeds %d bytes", limit)}
	}
	return RawPage{
		URL:     req.URL,
		Status:  resp.StatusCode,
		Body:    data,
		Latency: time.Since(start),
	}, nil
}
