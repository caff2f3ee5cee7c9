package engine

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/strutil"
)

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

var countRe = regexp.MustCompile(`(?i)^([0-9][0-9,.]*)\s*([KMB])?\b`)

// ParseCount reads view and video counts as rendered upstream:
// "1,234,567 views", "1.2M views", "12K", "No views".
func ParseCount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if lower := strings.ToLower(s); strings.HasPrefix(lower, "no ") {
		return 0, true
	}
	m := countRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	num := strings.ReplaceAll(m[1], ",", "")
	if m[2] == "" {
		if strings.Contains(num, ".") {
			return 0, false
		}
		n, err := strconv.ParseInt(num, 10, 64)
		return n, err == nil
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		f *= 1e3
	case "M":
		f *= 1e6
	case "B":
		f *= 1e9
	}
	return int64(f + 0.5), true
}

// ParseClock converts "SS", "M:SS" or "H:MM:SS" to seconds.
func ParseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, false
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}

var relativeAgeRe = regexp.MustCompile(`(?i)(\d+)\s+(second|minute|hour|day|week|month|year)s?\s+ago`)

var ageUnits = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"year":   365 * 24 * time.Hour,
}

// ParseRelativeAge reads upstream publish text such as "3 weeks ago" or
// "Streamed 2 days ago" as an approximate age.
func ParseRelativeAge(s string) (time.Duration, bool) {
	m := relativeAgeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * ageUnits[strings.ToLower(m[2])], true
}
