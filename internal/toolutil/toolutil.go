// Package toolutil provides shared helpers for the MCP tool handlers.
package toolutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
	"github.com/google/uuid"
)

// Error codes surfaced to tool callers.
const (
	CodeUpstream     = "YOUTUBE_UNAVAILABLE"
	CodeCache        = "CACHE_UNAVAILABLE"
	CodeInvalidParam = "INVALID_PARAMETER"
	CodeTimeout      = "TIMEOUT"
	CodeInternal     = "INTERNAL_ERROR"
)

// ToolError is the error a tool handler returns to the client.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s (trace_id=%s)", e.Code, e.Message, e.TraceID)
}

// ErrorCode maps an engine error onto a tool error code.
func ErrorCode(err error) string {
	var (
		inErr    *engine.InputError
		cacheErr *engine.CacheBackendError
	)
	switch {
	case errors.As(err, &inErr):
		return CodeInvalidParam
	case errors.As(err, &cacheErr):
		return CodeCache
	case engine.IsUpstreamError(err):
		return CodeUpstream
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CodeTimeout
	}
	return CodeInternal
}

// Fail logs err under a fresh trace id and returns the client-facing error.
// Internal errors carry a generic message so no internals leak.
func Fail(tool string, err error) error {
	te := &ToolError{Code: ErrorCode(err), TraceID: uuid.NewString()}
	switch te.Code {
	case CodeInvalidParam:
		te.Message = err.Error()
	case CodeUpstream:
		te.Message = "YouTube is unavailable or returned an unexpected page"
	case CodeCache:
		te.Message = "cache backend is unavailable"
	case CodeTimeout:
		te.Message = "request timed out"
	default:
		te.Message = "internal error"
	}
	slog.Warn(tool+" failed",
		slog.String("code", te.Code),
		slog.String("trace_id", te.TraceID),
		slog.Any("error", err))
	return te
}
