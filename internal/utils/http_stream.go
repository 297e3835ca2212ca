package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/leofalp/openai-go/observability"
)

// maxSSELineSize is the longest single SSE line the scanner accepts (1 MiB).
// bufio.Scanner defaults to 64 KiB, which long completions can exceed.
const maxSSELineSize = 1 * 1024 * 1024

// doneSentinel marks the end of an OpenAI event stream.
const doneSentinel = "[DONE]"

// DoStream sends request asking for an event stream and returns the response
// with its body still open. The caller owns the body. Non-2xx replies are
// drained, closed and reported as *StatusError.
func DoStream(ctx context.Context, client *http.Client, request Request) (*http.Response, error) {
	span := observability.SpanFromContext(ctx)

	httpRequest, bodySize, err := newHTTPRequest(ctx, request)
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Accept", "text/event-stream")
	httpRequest.Header.Set("Cache-Control", "no-cache")

	addEvent(span, observability.EventHTTPRequestPrepared,
		observability.String(observability.AttrHTTPMethod, httpRequest.Method),
		observability.String(observability.AttrHTTPURL, request.URL),
		observability.Int(observability.AttrHTTPRequestBodySize, bodySize),
		observability.Bool(observability.AttrStreaming, true),
	)

	timer := NewTimer()
	response, err := httpClient(client).Do(httpRequest)
	timer.Stop()
	if err != nil {
		addEvent(span, observability.EventHTTPRequestError,
			observability.Error(err),
			observability.Duration(observability.AttrHTTPDuration, timer.GetDuration()),
		)
		return nil, fmt.Errorf("error sending stream request: %w", err)
	}

	if !isSuccess(response.StatusCode) {
		defer CloseWithLog(response.Body)
		body, readErr := io.ReadAll(io.LimitReader(response.Body, maxErrorBodySize))
		if readErr != nil {
			return response, fmt.Errorf("non-2xx status %d (failed to read body: %w)", response.StatusCode, readErr)
		}
		addEvent(span, observability.EventHTTPResponseReceived,
			observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(body)),
			observability.Duration(observability.AttrHTTPDuration, timer.GetDuration()),
		)
		return response, &StatusError{StatusCode: response.StatusCode, Header: response.Header, Body: body}
	}

	addEvent(span, observability.EventHTTPStreamStarted,
		observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
		observability.Duration(observability.AttrHTTPDuration, timer.GetDuration()),
	)
	return response, nil
}

// SSEScanner reads the data payloads of a Server-Sent Events stream.
type SSEScanner struct {
	scanner *bufio.Scanner
	done    bool
}

// NewSSEScanner returns a scanner over reader. Lines longer than 1 MiB make
// Next fail with an error wrapping bufio.ErrTooLong.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the next event's data. Consecutive data lines of one event are
// joined with "\n"; comments and non-data fields are skipped. A trailing event
// without a terminating blank line is still returned. Next returns io.EOF once
// the stream ends or the [DONE] sentinel is read.
func (s *SSEScanner) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	var dataLines []string
	for s.scanner.Scan() {
		line := strings.TrimSuffix(s.scanner.Text(), "\r")

		if line == "" {
			if len(dataLines) > 0 {
				return strings.Join(dataLines, "\n"), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// event:, id: and retry: carry nothing the client uses.
			continue
		}
		data = strings.TrimPrefix(data, " ")

		if strings.TrimSpace(data) == doneSentinel {
			s.done = true
			return "", io.EOF
		}
		dataLines = append(dataLines, data)
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}

	s.done = true
	if len(dataLines) > 0 {
		return strings.Join(dataLines, "\n"), nil
	}
	return "", io.EOF
}
