package openai

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/openai-go/internal/utils"
	"github.com/leofalp/openai-go/observability"
)

// DefaultBaseURL is used when neither WithBaseURL nor OPENAI_API_BASE_URL is
// set.
const DefaultBaseURL = "https://api.openai.com/v1"

const (
	envAPIKey  = "OPENAI_API_KEY"
	envBaseURL = "OPENAI_API_BASE_URL"

	headerOrganization    = "OpenAI-Organization"
	headerClientRequestID = "X-Client-Request-Id"

	maxClientRequestIDLength = 512
)

// Client issues typed calls against the API. It holds no per-call state and
// is safe for concurrent use once configured.
type Client struct {
	apiKey       string
	baseURL      string
	organization string
	httpClient   *http.Client
	observer     observability.Provider
	metrics      observability.Metrics
}

// New creates a client with its own *http.Client. An empty apiKey falls back
// to OPENAI_API_KEY, and the base URL to OPENAI_API_BASE_URL.
func New(apiKey string) *Client {
	return NewWithHTTPClient(apiKey, &http.Client{})
}

// NewWithHTTPClient creates a client that sends requests through httpClient,
// or http.DefaultClient when nil.
func NewWithHTTPClient(apiKey string, httpClient *http.Client) *Client {
	if apiKey == "" {
		apiKey = os.Getenv(envAPIKey)
	}
	baseURL := os.Getenv(envBaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// WithAPIKey sets the bearer token.
func (c *Client) WithAPIKey(apiKey string) *Client {
	c.apiKey = apiKey
	return c
}

// WithBaseURL points the client at another server, e.g. a proxy or a
// compatible gateway.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c.httpClient = httpClient
	return c
}

// WithOrganization sends the OpenAI-Organization header on every request.
func (c *Client) WithOrganization(organization string) *Client {
	c.organization = organization
	return c
}

// WithObserver enables spans, logs and, unless WithMetrics is also used,
// metrics through observer.
func (c *Client) WithObserver(observer observability.Provider) *Client {
	c.observer = observer
	return c
}

// WithMetrics sends request counters and latency histograms to metrics
// instead of the observer.
func (c *Client) WithMetrics(metrics observability.Metrics) *Client {
	c.metrics = metrics
	return c
}

// BaseURL returns the base URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestIDKey struct{}

// WithRequestID attaches the X-Client-Request-Id to send with calls made
// using ctx. IDs that are not ASCII or longer than 512 bytes are replaced by
// a generated one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && validClientRequestID(id) {
		return id
	}
	return uuid.NewString()
}

func validClientRequestID(id string) bool {
	if id == "" || len(id) > maxClientRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func (c *Client) endpointURL(endpoint string) string {
	return c.baseURL + endpoint
}

func (c *Client) newRequest(method, endpoint, clientRequestID string, body any) utils.Request {
	headers := []utils.HeaderOption{{Key: headerClientRequestID, Value: clientRequestID}}
	if c.organization != "" {
		headers = append(headers, utils.HeaderOption{Key: headerOrganization, Value: c.organization})
	}
	return utils.Request{
		Method:  method,
		URL:     c.endpointURL(endpoint),
		APIKey:  c.apiKey,
		Body:    body,
		Headers: headers,
	}
}

// doJSON runs one instrumented request/response call.
func doJSON[T any](ctx context.Context, c *Client, operation, method, endpoint, model string, body any) (*T, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	ctx, cl := c.begin(ctx, operation, endpoint, model, false, body)
	response, output, err := utils.DoJSON[T](ctx, c.httpClient, c.newRequest(method, endpoint, cl.clientRequestID, body))
	if err != nil {
		err = asAPIError(err)
		cl.end(err)
		return nil, err
	}
	cl.setRequestID(response)
	cl.end(nil, responseAttributes(any(output))...)
	return output, nil
}

// openStream starts an instrumented event-stream call. The returned call is
// ended by the stream once iteration finishes.
func (c *Client) openStream(ctx context.Context, operation, endpoint, model string, body any) (*http.Response, *call, error) {
	if c.apiKey == "" {
		return nil, nil, ErrMissingAPIKey
	}

	ctx, cl := c.begin(ctx, operation, endpoint, model, true, body)
	response, err := utils.DoStream(ctx, c.httpClient, c.newRequest(http.MethodPost, endpoint, cl.clientRequestID, body))
	if err != nil {
		err = asAPIError(err)
		cl.end(err)
		return nil, nil, err
	}
	cl.setRequestID(response)
	return response, cl, nil
}

func modelPath(id string) string {
	return "/models/" + url.PathEscape(id)
}
