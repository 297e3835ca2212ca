package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/leofalp/openai-go/observability"
)

// maxErrorBodySize caps how much of a non-2xx body is kept for the error.
// Successful bodies are always read in full.
const maxErrorBodySize int64 = 10 * 1024 * 1024

// HeaderOption is an extra header set on an outgoing request. Later options
// override earlier ones and the defaults.
type HeaderOption struct {
	Key   string
	Value string
}

// Request describes one API call. A nil Body sends no payload and no
// Content-Type header.
type Request struct {
	Method  string
	URL     string
	APIKey  string
	Body    any
	Headers []HeaderOption
}

// StatusError is returned when the server answers with a non-2xx status. Body
// holds the (size-capped) response payload so callers can decode the vendor
// error envelope.
type StatusError struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, TruncateStringDefault(string(e.Body)))
}

// CloseWithLog closes c and logs a failure instead of returning it, so a close
// error never hides the error the caller is already returning.
func CloseWithLog(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("failed to close response body", "error", err.Error())
	}
}

// DoJSON sends request and decodes a 2xx JSON reply into Output.
//
// Context errors are returned wrapped so errors.Is still matches them. A
// non-2xx status yields a *StatusError. The response is returned whenever one
// was received, so callers can read headers even on failure.
func DoJSON[Output any](ctx context.Context, client *http.Client, request Request) (*http.Response, *Output, error) {
	span := observability.SpanFromContext(ctx)

	httpRequest, bodySize, err := newHTTPRequest(ctx, request)
	if err != nil {
		return nil, nil, err
	}
	addEvent(span, observability.EventHTTPRequestPrepared,
		observability.String(observability.AttrHTTPMethod, httpRequest.Method),
		observability.String(observability.AttrHTTPURL, request.URL),
		observability.Int(observability.AttrHTTPRequestBodySize, bodySize),
	)

	timer := NewTimer()
	response, err := httpClient(client).Do(httpRequest)
	timer.Stop()
	if err != nil {
		addEvent(span, observability.EventHTTPRequestError,
			observability.Error(err),
			observability.Duration(observability.AttrHTTPDuration, timer.GetDuration()),
		)
		return nil, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(response.Body)

	var reader io.Reader = response.Body
	if !isSuccess(response.StatusCode) {
		reader = io.LimitReader(response.Body, maxErrorBodySize)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return response, nil, fmt.Errorf("error reading response body: %w", err)
	}

	addEvent(span, observability.EventHTTPResponseReceived,
		observability.Int(observability.AttrHTTPStatusCode, response.StatusCode),
		observability.Int(observability.AttrHTTPResponseBodySize, len(body)),
		observability.Duration(observability.AttrHTTPDuration, timer.GetDuration()),
	)

	if !isSuccess(response.StatusCode) {
		return response, nil, &StatusError{StatusCode: response.StatusCode, Header: response.Header, Body: body}
	}

	var output Output
	if err := json.Unmarshal(body, &output); err != nil {
		return response, nil, fmt.Errorf("error unmarshaling response body (status %d): %w\nResponse preview: %s",
			response.StatusCode, err, TruncateStringDefault(string(body)))
	}
	return response, &output, nil
}

func newHTTPRequest(ctx context.Context, request Request) (*http.Request, int, error) {
	method := request.Method
	if method == "" {
		method = http.MethodPost
	}

	var (
		reader   io.Reader
		bodySize int
	)
	if request.Body != nil {
		encoded, err := json.Marshal(request.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("error marshaling body: %w", err)
		}
		reader = bytes.NewReader(encoded)
		bodySize = len(encoded)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, method, request.URL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}

	httpRequest.Header.Set("Accept", "application/json")
	if request.Body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	if request.APIKey != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+request.APIKey)
	}
	for _, header := range request.Headers {
		httpRequest.Header.Set(header.Key, header.Value)
	}
	return httpRequest, bodySize, nil
}

func httpClient(client *http.Client) *http.Client {
	if client == nil {
		return http.DefaultClient
	}
	return client
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func addEvent(span observability.Span, name string, attrs ...observability.Attribute) {
	if span != nil {
		span.AddEvent(name, attrs...)
	}
}
