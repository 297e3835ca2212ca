// Package observability defines the tracing, metrics and logging interfaces the
// client reports through, together with the attribute names it uses.
//
// A [Provider] composes [Tracer], [Metrics] and [Logger]. The client starts one
// span per API call and stores it in the request context with [ContextWithSpan];
// the transport layer picks it up with [SpanFromContext] to record HTTP events.
// Implementations live in the slogobs (structured logs) and promobs (Prometheus
// metrics) subpackages.
package observability
