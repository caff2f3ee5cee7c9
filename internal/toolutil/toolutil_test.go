package toolutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"input", &engine.InputError{Field: "keyword", Message: "required"}, CodeInvalidParam},
		{"cache", &engine.CacheBackendError{Op: "get", Key: "k", Err: errors.New("dial tcp")}, CodeCache},
		{"network", &engine.NetworkError{URL: "u", Status: 503}, CodeUpstream},
		{"extraction", fmt.Errorf("crawl: %w", &engine.ExtractionError{Reason: "marker not found"}), CodeUpstream},
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"canceled", fmt.Errorf("wait: %w", context.Canceled), CodeTimeout},
		{"other", errors.New("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestFail(t *testing.T) {
	err := Fail("youtube_search", errors.New("nil pointer in renderer"))
	var te *ToolError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeInternal, te.Code)
	assert.Equal(t, "internal error", te.Message)
	assert.Len(t, te.TraceID, 36)
	assert.NotContains(t, err.Error(), "nil pointer")

	err = Fail("youtube_search", &engine.InputError{Field: "limit", Message: "must be between 1 and 100"})
	require.True(t, errors.As(err, &te))
	assert.Equal(t, CodeInvalidParam, te.Code)
	assert.Equal(t, "limit: must be between 1 and 100", te.Message)

	other := Fail("youtube_search", errors.New("x")).(*ToolError)
	assert.NotEqual(t, te.TraceID, other.TraceID)
}
