package engine

import (
	"context"
	"log/slog"
	"time"
)

// Source describes where a crawl starts and how it continues.
type Source interface {
	// Identity is the normalized request key, e.g. "playlist:PLxxxx".
	Identity() string
	InitialRequest() FetchRequest
	// ContinuationRequest builds the follow-up request for token.
	// ok is false for sources that never paginate; the token is then ignored.
	ContinuationRequest(token string) (req FetchRequest, ok bool)
}

// CrawlConfig bounds one crawl.
type CrawlConfig struct {
	MaxBatches          int
	TotalBudget         time.Duration
	FetchTimeout        time.Duration
	ContinuationTimeout time.Duration
}

// Crawler runs fetch, extract, walk and normalize across continuation batches.
type Crawler struct {
	fetcher    PageFetcher
	dispatch   *Dispatch
	normalizer *Normalizer
	cfg        CrawlConfig
	now        func() time.Time
}

// NewCrawler builds a crawler. Items are normalized with DefaultLimits.
func NewCrawler(f PageFetcher, d *Dispatch, cfg CrawlConfig) *Crawler {
	return &Crawler{
		fetcher:    f,
		dispatch:   d,
		normalizer: NewNormalizer(d, DefaultLimits),
		cfg:        cfg,
		now:        time.Now,
	}
}

type crawlState int

const (
	stateInit crawlState = iota
	stateFetchBatch
	stateDoneComplete
	stateDonePartial
)

// batch is what one fetched page contributes.
type batch struct {
	items  []Item
	token  string
	header Header
}

// Crawl fetches the initial page and follows continuation tokens until the source is
// exhausted, MaxBatches batches were fetched, or TotalBudget elapsed.
//
// A failure on the initial page is returned as is. A failure on any later batch ends the
// crawl with Partial set and every item collected so far.
func (c *Crawler) Crawl(ctx context.Context, src Source) (ResultSet, error) {
	start := c.now()
	deadline := start.Add(c.cfg.TotalBudget)
	rs := ResultSet{SourceIdentity: src.Identity(), Items: []Item{}}

	var (
		state = stateInit
		req   FetchRequest
		seen  = map[string]bool{}
	)
	for state != stateDoneComplete && state != stateDonePartial {
		switch state {
		case stateInit:
			req = src.InitialRequest()
			req.Timeout = clampTimeout(c.cfg.FetchTimeout, deadline.Sub(c.now()))
			state = stateFetchBatch

		case stateFetchBatch:
			b, err := c.fetchBatch(ctx, req)
			rs.Batches++
			metrics.CrawlBatches.Add(1)
			if err != nil {
				if rs.Batches == 1 {
					return ResultSet{}, err
				}
				slog.Warn("crawl: continuation batch failed",
					slog.String("source", rs.SourceIdentity),
					slog.Int("batch", rs.Batches),
					slog.Any("error", err))
				rs.PartialReason = ReasonContinuationError
				state = stateDonePartial
				continue
			}
			rs.Items = append(rs.Items, b.items...)
			if rs.Title == nil {
				rs.Title = b.header.Title
			}
			if rs.ReportedCount == nil {
				rs.ReportedCount = b.header.Count
			}

			next, follow := FetchRequest{}, false
			if b.token != "" {
				next, follow = src.ContinuationRequest(b.token)
			}
			remaining := deadline.Sub(c.now())
			switch {
			case !follow:
				state = stateDoneComplete
			case seen[b.token]:
				rs.PartialReason = ReasonRepeatedToken
				state = stateDonePartial
			case rs.Batches >= c.cfg.MaxBatches:
				rs.PartialReason = ReasonBatchLimit
				state = stateDonePartial
			case remaining <= 0:
				slog.Debug("crawl: stopping", slog.Any("reason", errBudgetExceeded))
				rs.PartialReason = ReasonBudget
				state = stateDonePartial
			default:
				seen[b.token] = true
				next.Token = b.token
				next.Timeout = clampTimeout(c.cfg.ContinuationTimeout, remaining)
				req = next
			}
		}
	}

	rs.Partial = state == stateDonePartial
	rs.FetchedAt = c.now().UTC().Truncate(time.Second)
	rs.Elapsed = c.now().Sub(start)
	if rs.Partial {
		metrics.CrawlsPartial.Add(1)
	} else {
		metrics.CrawlsComplete.Add(1)
	}
	slog.Info("crawl: done",
		slog.String("source", rs.SourceIdentity),
		slog.Int("items", len(rs.Items)),
		slog.Int("batches", rs.Batches),
		slog.Bool("partial", rs.Partial),
		slog.String("partial_reason", rs.PartialReason),
		slog.Duration("elapsed", rs.Elapsed))
	return rs, nil
}

// fetchBatch runs one FETCH_BATCH step. The initial page is HTML, continuations are JSON.
func (c *Crawler) fetchBatch(ctx context.Context, req FetchRequest) (batch, error) {
	page, err := c.fetcher.Fetch(ctx, req)
	if err != nil {
		return batch{}, err
	}
	var blob *Blob
	if req.Token == "" {
		blob, err = ExtractInitialData(page.Body)
	} else {
		blob, err = ParseBatch(page.Body)
	}
	if err != nil {
		metrics.ExtractionErrors.Add(1)
		return batch{}, err
	}

	var b batch
	for rec := range c.dispatch.Walk(blob) {
		switch rec.Kind {
		case KindItem:
			if it, ok := c.normalizer.Normalize(rec); ok {
				b.items = append(b.items, it)
			}
		case KindContinuation:
			// At most one token per batch: the first one found wins.
			if b.token == "" {
				if tok, ok := c.dispatch.Token(rec); ok {
					b.token = tok
				}
			}
		case KindHeader:
			if h, ok := c.dispatch.Header(rec); ok {
				if b.header.Title == nil {
					b.header.Title = h.Title
				}
				if b.header.Count == nil {
					b.header.Count = h.Count
				}
			}
		}
	}
	slog.Debug("crawl: batch parsed",
		slog.String("url", req.URL),
		slog.Int("items", len(b.items)),
		slog.Bool("has_token", b.token != ""),
		slog.Duration("latency", page.Latency))
	return b, nil
}

func clampTimeout(timeout, remaining time.Duration) time.Duration {
	if remaining > 0 && remaining < timeout {
		return remaining
	}
	return timeout
}

// IsPartialReason reports whether reason is one the crawler produces.
func IsPartialReason(reason string) bool {
	switch reason {
	case ReasonBatchLimit, ReasonBudget, ReasonContinuationError, ReasonRepeatedToken:
		return true
	}
	return false
}
