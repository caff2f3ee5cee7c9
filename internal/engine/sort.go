package engine

import (
	"cmp"
	"slices"
	"time"
)

// Sort orders accepted by SortItems.
const (
	SortRelevance = "relevance"
	SortDate      = "date"
)

// SortItems reorders items in place. Relevance keeps upstream order.
// Date puts the most recently published first; items without a readable
// publish text keep their relative order at the end.
func SortItems(items []Item, by string) {
	if by != SortDate {
		return
	}
	age := func(it Item) (time.Duration, bool) {
		if it.Published == nil {
			return 0, false
		}
		return ParseRelativeAge(*it.Published)
	}
	slices.SortStableFunc(items, func(a, b Item) int {
		aa, aok := age(a)
		ba, bok := age(b)
		switch {
		case aok && bok:
			return cmp.Compare(aa, ba)
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})
}

// LimitItems returns at most n items. n <= 0 means no limit.
func LimitItems(items []Item, n int) []Item {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
