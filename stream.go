package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync"

	"github.com/leofalp/openai-go/internal/utils"
	"github.com/leofalp/openai-go/observability"
)

// ErrStreamConsumed is yielded when a stream is iterated a second time.
var ErrStreamConsumed = errors.New("openai: stream already consumed")

// Stream decodes the events of one streaming response into T. It can be
// iterated once; the response body is closed when iteration ends, when the
// loop breaks, or on Close.
type Stream[T any] struct {
	ctx      context.Context
	response *http.Response
	scanner  *utils.SSEScanner
	call     *call
	usage    func(T) *Usage

	mu       sync.Mutex
	consumed bool
	closed   bool
}

func newStream[T any](ctx context.Context, response *http.Response, cl *call, usage func(T) *Usage) *Stream[T] {
	return &Stream[T]{
		ctx:      ctx,
		response: response,
		scanner:  utils.NewSSEScanner(response.Body),
		call:     cl,
		usage:    usage,
	}
}

// Iter yields one value per event. A non-nil error ends the sequence:
// context cancellation, read or decode failures, and error objects sent by
// the server (as *APIError).
func (s *Stream[T]) Iter() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		s.mu.Lock()
		if s.consumed || s.closed {
			s.mu.Unlock()
			yield(zero, ErrStreamConsumed)
			return
		}
		s.consumed = true
		s.mu.Unlock()

		var (
			seen streamSummary
			err  error
		)
		defer func() {
			s.finish(err, seen)
		}()

		for {
			if ctxErr := s.ctx.Err(); ctxErr != nil {
				err = ctxErr
				yield(zero, err)
				return
			}

			payload, scanErr := s.scanner.Next()
			if scanErr == io.EOF {
				return
			}
			if scanErr != nil {
				if ctxErr := s.ctx.Err(); ctxErr != nil {
					scanErr = ctxErr
				}
				err = scanErr
				yield(zero, err)
				return
			}

			if apiErr, ok := streamError(s.response.StatusCode, s.response.Header, payload); ok {
				err = apiErr
				yield(zero, err)
				return
			}

			var event T
			if decodeErr := json.Unmarshal([]byte(payload), &event); decodeErr != nil {
				err = fmt.Errorf("failed to parse stream event: %w (payload: %s)", decodeErr, utils.TruncateStringDefault(payload))
				yield(zero, err)
				return
			}
			seen.events++
			if s.usage != nil {
				if usage := s.usage(event); usage != nil {
					seen.usage = usage
				}
			}
			if summary, ok := any(event).(responseSummary); ok {
				id, finishReason := summary.summary()
				if seen.id == "" {
					seen.id = id
				}
				if finishReason != "" {
					seen.finishReason = finishReason
				}
			}

			if !yield(event, nil) {
				return
			}
		}
	}
}

// Close releases a stream that will not be (fully) iterated. It is safe to
// call more than once and after iteration.
func (s *Stream[T]) Close() error {
	s.finish(nil, streamSummary{})
	return nil
}

// streamSummary is what iteration learned about the stream before it ended.
type streamSummary struct {
	events       int
	usage        *Usage
	id           string
	finishReason string
}

func (s *Stream[T]) finish(err error, seen streamSummary) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	utils.CloseWithLog(s.response.Body)

	attrs := []observability.Attribute{observability.Int(observability.AttrStreamEvents, seen.events)}
	if seen.usage != nil {
		attrs = append(attrs,
			observability.Int(observability.AttrTokensPrompt, seen.usage.PromptTokens),
			observability.Int(observability.AttrTokensCompletion, seen.usage.CompletionTokens),
			observability.Int(observability.AttrTokensTotal, seen.usage.TotalTokens),
		)
	}
	attrs = append(attrs, summaryAttributes(seen.id, seen.finishReason)...)
	if s.call.span != nil {
		s.call.span.AddEvent(observability.EventStreamEnded, attrs...)
	}
	s.call.end(err, attrs...)
}
