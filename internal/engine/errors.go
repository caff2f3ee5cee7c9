package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError reports a failed fetch: connection failure, timeout or non-2xx status.
// Status is 0 when no response was received.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status >= 300 || e.Err == nil {
		return fmt.Sprintf("fetch %s: HTTP %d %s", e.URL, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ExtractionError reports a page whose embedded data could not be located or parsed.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract embedded data: %s: %v", e.Reason, e.Err)
	}
	return "extract embedded data: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// CacheBackendError reports a failed cache store operation. It is never downgraded to a miss.
type CacheBackendError struct {
	Op  string // "get" or "set"
	Key string
	Err error
}

func (e *CacheBackendError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *CacheBackendError) Unwrap() error { return e.Err }

// InputError reports a caller-supplied value that failed validation.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Message
}

// errBudgetExceeded never leaves the crawler; it becomes ResultSet.Partial.
var errBudgetExceeded = errors.New("crawl budget exceeded")

// IsUpstreamError reports whether err came from fetching or extracting upstream pages.
func IsUpstreamError(err error) bool {
	var ne *NetworkError
	var ee *ExtractionError
	return errors.As(err, &ne) || errors.As(err, &ee)
}
