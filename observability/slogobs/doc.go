// Package slogobs provides an observability.Provider backed by log/slog.
//
// Spans and measurements become structured log records. Output is either
// colorized human-readable text (via tint) or JSON; see [New] and the With*
// options. Without options the format and level come from OPENAI_LOG_FORMAT and
// OPENAI_LOG_LEVEL.
package slogobs
