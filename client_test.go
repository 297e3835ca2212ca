package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient starts a server running handler and returns a client pointed
// at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewWithHTTPClient("test-key", server.Client()).WithBaseURL(server.URL + "/v1/")
}

func TestNew_EnvFallbacks(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_API_BASE_URL", "https://proxy.example.com/v1/")

	client := New("")
	if client.apiKey != "env-key" {
		t.Errorf("expected key from env, got %q", client.apiKey)
	}
	if client.BaseURL() != "https://proxy.example.com/v1" {
		t.Errorf("expected trimmed base URL from env, got %q", client.BaseURL())
	}
}

func TestNew_ExplicitKeyWins(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_API_BASE_URL", "")

	client := New("explicit")
	if client.apiKey != "explicit" {
		t.Errorf("expected explicit key, got %q", client.apiKey)
	}
	if client.BaseURL() != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", client.BaseURL())
	}
}

func TestNewWithHTTPClient_NilUsesDefault(t *testing.T) {
	client := NewWithHTTPClient("k", nil)
	if client.httpClient != http.DefaultClient {
		t.Error("expected http.DefaultClient")
	}
	if client.WithHTTPClient(nil).httpClient != http.DefaultClient {
		t.Error("expected WithHTTPClient(nil) to fall back to http.DefaultClient")
	}
}

func TestClient_MissingAPIKey(t *testing.T) {
	requests := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})
	client.WithAPIKey("")

	if _, err := client.ListModels(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("ListModels: expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := client.CreateChatStream(context.Background(), NewChatArguments("m")); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("CreateChatStream: expected ErrMissingAPIKey, got %v", err)
	}
	if requests != 0 {
		t.Errorf("expected no network I/O, got %d requests", requests)
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	var header http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		fmt.Fprint(w, `{"data":[]}`)
	}).WithOrganization("org-123")

	ctx := WithRequestID(context.Background(), "trace-abc")
	if _, err := client.ListModels(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := header.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", got)
	}
	if got := header.Get("OpenAI-Organization"); got != "org-123" {
		t.Errorf("expected organization header, got %q", got)
	}
	if got := header.Get("X-Client-Request-Id"); got != "trace-abc" {
		t.Errorf("expected client request id from context, got %q", got)
	}
}

func TestClient_GeneratesRequestID(t *testing.T) {
	var ids []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Client-Request-Id"))
		fmt.Fprint(w, `{"data":[]}`)
	})

	invalid := []context.Context{
		context.Background(),
		WithRequestID(context.Background(), "héllo"),
		WithRequestID(context.Background(), strings.Repeat("a", 513)),
	}
	for _, ctx := range invalid {
		if _, err := client.ListModels(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	seen := map[string]bool{}
	for _, id := range ids {
		if len(id) != 36 {
			t.Errorf("expected generated uuid, got %q", id)
		}
		if seen[id] {
			t.Errorf("expected unique ids, got duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestValidClientRequestID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{id: "", want: false},
		{id: "abc-123", want: true},
		{id: strings.Repeat("a", 512), want: true},
		{id: strings.Repeat("a", 513), want: false},
		{id: "tab\there", want: false},
		{id: "ümlaut", want: false},
	}
	for _, tt := range tests {
		if got := validClientRequestID(tt.id); got != tt.want {
			t.Errorf("validClientRequestID(%.20q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestClient_Non2xxReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-request-id", "req_42")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key","param":null}}`)
	})

	_, err := client.ListModels(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Kind() != KindAuthentication {
		t.Errorf("expected authentication kind, got %s", apiErr.Kind())
	}
	if apiErr.Code != "invalid_api_key" || apiErr.RequestID != "req_42" {
		t.Errorf("unexpected error fields %+v", apiErr)
	}
}

func TestClient_TransportErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewWithHTTPClient("k", server.Client()).WithBaseURL(server.URL)
	server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListModels(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
