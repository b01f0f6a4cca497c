package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	httpRouteKey contextKey = "http.route"
	requestIDKey contextKey = "request_id"
)

// WithHTTPRoute adds a fixed HTTP route to the context
func WithHTTPRoute(ctx context.Context, route string) context.Context {
	return WithHTTPRouteFunc(ctx, func() string { return route })
}

// WithHTTPRouteFunc adds a route lookup to the context. It is evaluated on
// every read, so a router may resolve the pattern after the value was attached.
func WithHTTPRouteFunc(ctx context.Context, route func() string) context.Context {
	return context.WithValue(ctx, httpRouteKey, route)
}

// HTTPRouteFromContext extracts the HTTP route from context
func HTTPRouteFromContext(ctx context.Context) string {
	route, _ := ctx.Value(httpRouteKey).(func() string)
	if route == nil {
		return ""
	}
	return route()
}

// WithRequestID adds the request id to the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the request id from context
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// contextHandler decorates records with the request-scoped values found in ctx:
// trace_id, span_id, http.route and request_id.
type contextHandler struct {
	next slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	if route := HTTPRouteFromContext(ctx); route != "" {
		r.AddAttrs(slog.String("http.route", route))
	}

	if id := RequestIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}

// initLogger builds the process logger: JSON on stdout at cfg.LogLevel
func initLogger(cfg *config.OTLPConfig) *slog.Logger {
	return NewLogger(os.Stdout, cfg)
}

// NewLogger builds a JSON logger writing to w with context decoration
func NewLogger(w io.Writer, cfg *config.OTLPConfig) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})

	return slog.New(&contextHandler{next: jsonHandler}).With(
		slog.String("service.name", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)
}
