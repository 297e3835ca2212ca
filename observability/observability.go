package observability

import (
	"context"
	"time"
)

// Provider is everything the client reports to: a span per API call, request
// and token metrics, and log lines for failures.
type Provider interface {
	Tracer
	Metrics
	Logger
}

// Tracer opens the span that covers one API call. For streams the span stays
// open until the stream is drained or closed.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span collects the attributes and HTTP events of one API call. End is called
// exactly once, after the status has been set.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

// StatusCode is the outcome of a span.
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// Metrics hands out named instruments. Implementations must return the same
// instrument for the same name.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// Counter accumulates request and token counts.
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram records call latencies in seconds.
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// Logger receives the client's own log lines. Trace carries per-event detail
// that is too noisy for Debug.
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

type spanKey struct{}

// ContextWithSpan stores span in ctx so the transport can attach HTTP events
// to the call that issued the request. A nil ctx starts from Background.
func ContextWithSpan(ctx context.Context, span Span) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, spanKey{}, span)
}

// SpanFromContext returns the span stored by ContextWithSpan, or nil when the
// call is not traced.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(spanKey{}).(Span)
	return span
}

// Attribute is a key-value pair attached to spans, log lines and
// measurements. Keys are the Attr* constants.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration keeps the time.Duration value; slog renders it, Prometheus labels
// never carry it.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error stores err's message under AttrError. A nil error yields an empty
// value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: AttrError, Value: ""}
	}
	return Attribute{Key: AttrError, Value: err.Error()}
}
