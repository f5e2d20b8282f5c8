package log

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"
)

type ctxKey struct{}

// Handler is a slog.Handler that writes Google Cloud structured log lines
// to stdout.
type Handler struct {
	attrs []slog.Attr
}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	entry := make(map[string]any, len(h.attrs)+r.NumAttrs()+3)
	entry["severity"] = r.Level.String()
	entry["time"] = r.Time.Format(time.RFC3339)
	entry["message"] = r.Message

	if traceID, ok := ctx.Value("traceID").(string); ok && traceID != "" {
		entry["logging.googleapis.com/trace"] = traceID
	}

	for _, attr := range h.attrs {
		entry[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Any()
		return true
	})

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(jsonData, '\n'))
	return err
}

// Enabled always returns true, so all log levels are handled.
func (h *Handler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{attrs: merged}
}

// WithGroup returns the same handler, as grouping is not implemented.
func (h *Handler) WithGroup(_ string) slog.Handler {
	return h
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// LoggerFromContext returns the request-scoped logger, or a fresh
// structured logger when none was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(NewHandler())
}
