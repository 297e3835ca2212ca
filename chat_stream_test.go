package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func sseHandler(t *testing.T, events ...string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, event := range events {
			fmt.Fprintf(w, "data: %s\n\n", event)
		}
	}
}

var chatChunks = []string{
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"role":"assistant"},"finish_reason":null}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":"Hel"},"finish_reason":null}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":null}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
	`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`,
	`[DONE]`,
}

func TestCreateChatStream_Iter(t *testing.T) {
	var (
		accept string
		body   map[string]any
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		sseHandler(t, chatChunks...)(w, r)
	})

	stream, err := client.CreateChatStream(context.Background(), NewChatArguments("gpt-4o-mini", UserMessage("hi")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var content strings.Builder
	events := 0
	for chunk, err := range stream.Iter() {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		events++
		content.WriteString(chunk.String())
	}

	if events != 5 {
		t.Errorf("expected 5 events, got %d", events)
	}
	if content.String() != "Hello" {
		t.Errorf("expected Hello, got %q", content.String())
	}
	if accept != "text/event-stream" {
		t.Errorf("expected event-stream accept header, got %q", accept)
	}
	if body["stream"] != true {
		t.Errorf("expected stream=true in request, got %v", body["stream"])
	}
}

func TestChatStream_Collect(t *testing.T) {
	client := newTestClient(t, sseHandler(t, chatChunks...))

	stream, err := client.CreateChatStream(context.Background(), NewChatArguments("gpt-4o-mini"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	completion, err := stream.Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completion.ID != "c1" || completion.Model != "gpt-4o-mini" {
		t.Errorf("unexpected metadata %+v", completion)
	}
	if len(completion.Choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(completion.Choices))
	}
	choice := completion.Choices[0]
	if choice.Message.Content != "Hello" || choice.Message.Role != RoleAssistant || choice.FinishReason != "stop" {
		t.Errorf("unexpected choice %+v", choice)
	}
	if completion.Usage == nil || completion.Usage.TotalTokens != 7 {
		t.Errorf("unexpected usage %+v", completion.Usage)
	}
}

func TestChatStream_CollectMultipleChoices(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		`{"id":"c","choices":[{"index":1,"delta":{"content":"B"}},{"index":0,"delta":{"content":"A"}}]}`,
		`{"id":"c","choices":[{"index":0,"delta":{"content":"a"},"finish_reason":"stop"},{"index":1,"delta":{"content":"b"},"finish_reason":"length"}]}`,
	))

	stream, err := client.CreateChatStream(context.Background(), NewChatArguments("m").WithN(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	completion, err := stream.Collect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(completion.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(completion.Choices))
	}
	if completion.Choices[0].Message.Content != "Aa" || completion.Choices[0].FinishReason != "stop" {
		t.Errorf("unexpected choice 0 %+v", completion.Choices[0])
	}
	if completion.Choices[1].Message.Content != "Bb" || completion.Choices[1].FinishReason != "length" {
		t.Errorf("unexpected choice 1 %+v", completion.Choices[1])
	}
}

func TestChatStream_MidStreamError(t *testing.T) {
	client := newTestClient(t, sseHandler(t,
		chatChunks[1],
		`{"error":{"message":"The server had an error","type":"server_error"}}`,
		chatChunks[2],
	))

	stream, err := client.CreateChatStream(context.Background(), NewChatArguments("m"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	completion, err := stream.Collect()

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "The server had an error" || apiErr.Kind() != KindServer {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if completion.String() != "Hel" {
		t.Errorf("expected partial content, got %q", completion.String())
	}
}

func TestChatStream_MalformedEvent(t *testing.T) {
	client := newTestClient(t, sseHandler(t, `{not json`))

	stream, err := client.CreateChatStream(context.Background(), NewChatArguments("m"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, err := range stream.Iter() {
		if err == nil || !strings.Contains(err.Error(), "failed to parse stream event") {
			t.Errorf("expected parse error, got %v", err)
		}
	}
}

func TestCreateChatStream_Non2xx(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	})

	stream, err := client.CreateChatStream(context.Background(), NewChatArguments("m"))
	if stream != nil {
		t.Error("expected no stream on failure")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind() != KindRateLimit {
		t.Fatalf("expected rate limit APIError, got %v", err)
	}
}

func TestChatStream_BreakStopsIteration(t *testing.T) {
	client := newTestClient(t, sseHandler(t, chatChunks...))

	stream, err := client.CreateChatStream(context.Background(), NewChatArguments("m"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := 0
	for range stream.Iter() {
		seen++
		break
	}
	if seen != 1 {
		t.Errorf("expected to stop after one event, got %d", seen)
	}

	for _, err := range stream.Iter() {
		if !errors.Is(err, ErrStreamConsumed) {
			t.Errorf("expected ErrStreamConsumed on second iteration, got %v", err)
		}
	}
	if err := stream.Close(); err != nil {
		t.Errorf("expected Close after iteration to succeed, got %v", err)
	}
}

func TestChatStream_CloseWithoutIterating(t *testing.T) {
	client := newTestClient(t, sseHandler(t, chatChunks...))

	stream, err := client.CreateChatStream(context.Background(), NewChatArguments("m"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, err := range stream.Iter() {
		if !errors.Is(err, ErrStreamConsumed) {
			t.Errorf("expected ErrStreamConsumed after Close, got %v", err)
		}
	}
}

func TestChatStream_ContextCancelled(t *testing.T) {
	client := newTestClient(t, sseHandler(t, chatChunks...))

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := client.CreateChatStream(ctx, NewChatArguments("m"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()

	var lastErr error
	for _, err := range stream.Iter() {
		lastErr = err
	}
	if !errors.Is(lastErr, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", lastErr)
	}
}

func TestChatCompletionChunk_String(t *testing.T) {
	if got := (ChatCompletionChunk{}).String(); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	chunk := ChatCompletionChunk{Choices: []ChatChunkChoice{{Delta: ChatDelta{Content: "x"}}}}
	if chunk.String() != "x" {
		t.Errorf("expected x, got %q", chunk.String())
	}
}
