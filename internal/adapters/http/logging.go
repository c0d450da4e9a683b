package http

import (
	"context"
	"log/slog"
)

const serviceName = "authcore"

// httpLogger carries the fixed identity keys so every line emitted by the
// transport layer is attributable without repeating them at each call site.
func httpLogger() *slog.Logger {
	return slog.Default().With(
		slog.String("service", serviceName),
		slog.String("module", "http"),
		slog.String("layer", "adapter"),
	)
}

// logHTTPOperationError records a handler failure at a severity matching
// who is at fault: server errors at Error, client errors at Warn.
func logHTTPOperationError(ctx context.Context, operation string, statusCode int, code, message string, err error) {
	level := slog.LevelWarn
	if statusCode >= 500 {
		level = slog.LevelError
	}
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("outcome", "failure"),
		slog.Int("status_code", statusCode),
		slog.String("error_code", code),
		slog.String("message", message),
		slog.String("request_id", requestIDFromContext(ctx)),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	httpLogger().LogAttrs(ctx, level, "http operation failed", attrs...)
}
