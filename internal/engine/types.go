package engine

import (
	"errors"
	"time"
)

// Item is one normalized video or playlist track. ID is always a valid video ID;
// every other field is independently nullable.
type Item struct {
	ID              string  `json:"video_id"`
	Title           *string `json:"title"`
	Channel         *string `json:"channel"`
	ChannelURL      *string `json:"channel_url"`
	URL             *string `json:"url"`
	Published       *string `json:"publish_date"` // upstream relative text, e.g. "2 years ago"
	Duration        *string `json:"duration"`
	DurationSeconds *int    `json:"duration_seconds"`
	ViewCount       *int64  `json:"view_count"`
	Description     *string `json:"description"`
	Position        *int    `json:"position"`
}

// Partial reasons.
const (
	ReasonBatchLimit        = "batch_limit"
	ReasonBudget            = "budget"
	ReasonContinuationError = "continuation_error"
	ReasonRepeatedToken     = "repeated_token"
)

// ResultSet is the aggregated output of one crawl. Immutable once returned.
type ResultSet struct {
	SourceIdentity string        `json:"source_identity"`
	Items          []Item        `json:"items"`
	Partial        bool          `json:"partial"`
	PartialReason  string        `json:"partial_reason,omitempty"`
	FetchedAt      time.Time     `json:"fetched_at"`
	Title          *string       `json:"title"`
	ReportedCount  *int          `json:"reported_count"`
	Batches        int           `json:"batches"`
	Elapsed        time.Duration `json:"elapsed_ns"`
}

// CacheEntry is what the coordinator writes to the store.
type CacheEntry struct {
	Key     string
	TTL     time.Duration
	Payload ResultSet
}

var (
	errPartialEntry = errors.New("partial result sets are never cached")
	errEntryTTL     = errors.New("cache entry ttl must be positive")
)

// NewCacheEntry builds an entry, refusing partial payloads and non-positive TTLs.
func NewCacheEntry(key string, ttl time.Duration, rs ResultSet) (CacheEntry, error) {
	if rs.Partial {
		return CacheEntry{}, errPartialEntry
	}
	if ttl <= 0 {
		return CacheEntry{}, errEntryTTL
	}
	return CacheEntry{Key: key, TTL: ttl, Payload: rs}, nil
}

// Clone returns a copy whose Items slice can be reordered or truncated freely.
func (rs ResultSet) Clone() ResultSet {
	out := rs
	out.Items = append([]Item(nil), rs.Items...)
	return out
}
