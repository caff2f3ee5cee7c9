package engine

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ValidVideoID reports whether id is an 11-char YouTube video ID.
func ValidVideoID(id string) bool {
	return videoIDRE.MatchString(id)
}

// Limits are per-field ceilings. A field over its ceiling is nulled, the item is kept.
type Limits struct {
	Title       int
	Channel     int
	Description int
	Published   int
	Duration    int
}

// DefaultLimits match the public model constraints.
var DefaultLimits = Limits{
	Title:       500,
	Channel:     200,
	Description: 5000,
	Published:   100,
	Duration:    32,
}

// Normalizer turns item records into validated Items.
type Normalizer struct {
	dispatch *Dispatch
	limits   Limits
}

func NewNormalizer(d *Dispatch, limits Limits) *Normalizer {
	return &Normalizer{dispatch: d, limits: limits}
}

// Normalize returns the item for rec and true, or false when rec is not an item
// or its video ID is unrecoverable. A drop is not an error.
func (n *Normalizer) Normalize(rec RendererRecord) (Item, bool) {
	if rec.Kind != KindItem {
		return Item{}, false
	}
	fn, ok := n.dispatch.items[rec.Tag]
	if !ok {
		return Item{}, false
	}
	it := fn(rec.Node)
	it.ID = strings.TrimSpace(it.ID)
	if !ValidVideoID(it.ID) {
		metrics.ValidationDrops.Add(1)
		slog.Debug("normalize: dropped item without valid id",
			slog.String("tag", rec.Tag), slog.String("id", it.ID))
		return Item{}, false
	}

	it.Title = clampText(it.Title, n.limits.Title)
	it.Channel = clampText(it.Channel, n.limits.Channel)
	it.Description = clampText(it.Description, n.limits.Description)
	it.Published = clampText(it.Published, n.limits.Published)
	it.Duration = clampText(it.Duration, n.limits.Duration)
	it.ChannelURL = absoluteURL(it.ChannelURL)
	it.URL = absoluteURL(it.URL)
	it.ViewCount = nonNegative(it.ViewCount)
	it.DurationSeconds = nonNegative(it.DurationSeconds)
	if it.Position != nil && *it.Position < 1 {
		it.Position = nil
	}
	return it, true
}

func clampText(s *string, max int) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || (max > 0 && utf8.RuneCountInString(v) > max) {
		return nil
	}
	return &v
}

func absoluteURL(s *string) *string {
	if s == nil {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(*s))
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return nil
	}
	v := u.String()
	return &v
}

func nonNegative[T int | int64](v *T) *T {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}
