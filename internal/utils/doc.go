// Package utils holds the low-level helpers behind the openai client: the
// JSON and streaming HTTP round trips, the server-sent-event scanner, lenient
// content parsing and a few small generic helpers.
//
// Key entry points: [DoJSON] for request/response calls, [DoStream] together
// with [SSEScanner] for event streams, and [StatusError] for non-2xx replies.
package utils
