package folio

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := LoggingContext(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	logger(ctx).InfoContext(ctx, "hello", "page", "compat.html")
	if !strings.Contains(buf.String(), "page=compat.html") {
		t.Errorf("Expected log output to contain the attribute, got %q", buf.String())
	}

	// without a logger, nothing should panic and nothing is enabled
	if logger(context.Background()).Enabled(context.Background(), slog.LevelError) {
		t.Error("Expected the default logger to be disabled")
	}
	if logger(LoggingContext(context.Background(), nil)).Enabled(context.Background(), slog.LevelError) {
		t.Error("Expected a nil logger to be treated as missing")
	}
}
