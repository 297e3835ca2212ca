package openai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/leofalp/openai-go/internal/utils"
)

// ErrMissingAPIKey is returned before any network I/O when the client has no
// API key.
var ErrMissingAPIKey = errors.New("openai: API key is not set")

var errEmptyCompletion = errors.New("openai: nil completion")

// ErrorKind classifies an APIError by what the caller can do about it.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindRateLimit      ErrorKind = "rate_limit"
	KindNotFound       ErrorKind = "not_found"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindServer         ErrorKind = "server"
)

// APIError is a non-2xx reply, or an error object delivered inside an event
// stream, in which case StatusCode is zero.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Param      string
	Message    string
	// RequestID is the x-request-id header of the failed response.
	RequestID string
	// Body is the raw response payload.
	Body string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("openai: ")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "status %d", e.StatusCode)
	} else {
		b.WriteString("stream error")
	}
	if e.Type != "" {
		fmt.Fprintf(&b, " (%s)", e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Kind maps the status code to an ErrorKind. Errors without an error status
// (mid-stream failures) are classified by their type string.
func (e *APIError) Kind() ErrorKind {
	switch {
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return KindAuthentication
	case e.StatusCode == http.StatusTooManyRequests:
		return KindRateLimit
	case e.StatusCode == http.StatusNotFound:
		return KindNotFound
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return KindInvalidRequest
	case e.StatusCode >= 500:
		return KindServer
	}

	switch {
	case strings.Contains(e.Type, "authentication"), strings.Contains(e.Type, "permission"):
		return KindAuthentication
	case strings.Contains(e.Type, "rate_limit"), strings.Contains(e.Type, "quota"):
		return KindRateLimit
	case strings.Contains(e.Type, "not_found"):
		return KindNotFound
	case strings.Contains(e.Type, "invalid_request"):
		return KindInvalidRequest
	}
	return KindServer
}

// newAPIError decodes the {"error": {...}} envelope of body. Bodies that are
// not JSON keep their text as the message.
func newAPIError(statusCode int, header http.Header, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}
	if header != nil {
		apiErr.RequestID = header.Get("x-request-id")
	}

	if gjson.ValidBytes(body) {
		envelope := gjson.GetBytes(body, "error")
		switch {
		case envelope.IsObject():
			apiErr.Message = envelope.Get("message").String()
			apiErr.Type = envelope.Get("type").String()
			apiErr.Code = envelope.Get("code").String()
			apiErr.Param = envelope.Get("param").String()
		case envelope.Type == gjson.String:
			apiErr.Message = envelope.String()
		default:
			apiErr.Message = gjson.GetBytes(body, "message").String()
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = utils.TruncateStringDefault(strings.TrimSpace(string(body)))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}

// streamError reports whether an event payload is an error object and
// converts it.
func streamError(statusCode int, header http.Header, payload string) (*APIError, bool) {
	if !gjson.Get(payload, "error").IsObject() {
		return nil, false
	}
	apiErr := newAPIError(0, header, []byte(payload))
	if statusCode >= 400 {
		apiErr.StatusCode = statusCode
	}
	return apiErr, true
}

// asAPIError converts transport status errors into *APIError and leaves
// anything else untouched.
func asAPIError(err error) error {
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		return newAPIError(statusErr.StatusCode, statusErr.Header, statusErr.Body)
	}
	return err
}
