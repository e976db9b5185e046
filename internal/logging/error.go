package logging

import (
	"context"

	"github.com/samber/oops"
)

// LogError logs err at error level. Errors built with oops contribute their
// code and context map as separate attributes.
func LogError(ctx context.Context, logger Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(ctx, msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil && code != "" {
		attrs = append(attrs, "code", code)
	}
	if c := oopsErr.Context(); len(c) > 0 {
		attrs = append(attrs, "context", c)
	}
	logger.Error(ctx, msg, attrs...)
}
