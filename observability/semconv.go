package observability

// Attribute keys, span names and metric names shared by the client, the
// transport helpers and the observer implementations.

// --- API Attributes ---

const (
	// AttrOperation is the client operation (e.g. "create_chat", "list_models")
	AttrOperation = "openai.operation"

	// AttrEndpoint is the API path relative to the base URL (e.g. "/chat/completions")
	AttrEndpoint = "openai.endpoint"

	// AttrModel is the model identifier sent with the request
	AttrModel = "openai.model"

	// AttrStreaming marks streaming calls
	AttrStreaming = "openai.streaming"

	// AttrClientRequestID is the X-Client-Request-Id sent with the request
	AttrClientRequestID = "openai.client_request_id"

	// AttrRequestID is the x-request-id returned by the API
	AttrRequestID = "openai.request_id"

	// AttrResponseID is the object id returned by the API
	AttrResponseID = "openai.response.id"

	// AttrFinishReason is the finish reason of the first choice
	AttrFinishReason = "openai.finish_reason"

	// AttrMessagesCount is the number of chat messages in the request
	AttrMessagesCount = "openai.messages_count"

	// AttrStreamEvents is the number of events read from a stream
	AttrStreamEvents = "openai.stream.events"
)

// --- Token Usage Attributes ---

const (
	AttrTokensPrompt     = "openai.tokens.prompt"     // #nosec G101 -- LLM tokens, not credentials
	AttrTokensCompletion = "openai.tokens.completion" // #nosec G101
	AttrTokensTotal      = "openai.tokens.total"      // #nosec G101
)

// --- HTTP Attributes ---

const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPURL              = "http.url"
	AttrHTTPRequestBodySize  = "http.request.body.size"
	AttrHTTPResponseBodySize = "http.response.body.size"
	AttrHTTPDuration         = "http.request.duration"
)

// --- General Attributes ---

const (
	AttrError             = "error"
	AttrErrorType         = "error.type"
	AttrDuration          = "duration"
	AttrStatus            = "status"
	AttrStatusDescription = "status_description"
)

// --- Event Names ---

const (
	EventHTTPRequestPrepared  = "http.request.prepared"
	EventHTTPRequestError     = "http.request.error"
	EventHTTPResponseReceived = "http.response.received"
	EventHTTPStreamStarted    = "http.stream_response.started"
	EventStreamEnded          = "openai.stream.ended"
)

// --- Metric Names ---

const (
	// MetricRequests counts API calls, labelled by endpoint and status.
	MetricRequests = "openai.requests"

	// MetricRequestDuration records API call latency in seconds.
	MetricRequestDuration = "openai.request.duration"
)

const (
	// MetricTokens counts tokens reported in response usage blocks.
	MetricTokens = "openai.tokens"
)
