package utils

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func collectPayloads(t *testing.T, input string) []string {
	t.Helper()
	scanner := NewSSEScanner(strings.NewReader(input))
	var payloads []string
	for {
		payload, err := scanner.Next()
		if err == io.EOF {
			return payloads
		}
		if err != nil {
			t.Fatalf("unexpected scanner error: %v", err)
		}
		payloads = append(payloads, payload)
	}
}

func TestSSEScanner_Events(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single event", input: "data: hello\n\n", want: []string{"hello"}},
		{name: "events in order", input: "data: a\n\ndata: b\n\ndata: c\n\n", want: []string{"a", "b", "c"}},
		{name: "multi-line data joined", input: "data: {\"a\":\ndata: 1}\n\n", want: []string{"{\"a\":\n1}"}},
		{name: "comments skipped", input: ": keep-alive\ndata: x\n\n", want: []string{"x"}},
		{name: "other fields skipped", input: "event: message\nid: 7\nretry: 10\ndata: x\n\n", want: []string{"x"}},
		{name: "blank lines between events", input: "\n\n\ndata: x\n\n\n\ndata: y\n\n", want: []string{"x", "y"}},
		{name: "no space after colon", input: "data:x\n\n", want: []string{"x"}},
		{name: "crlf line endings", input: "data: x\r\n\r\n", want: []string{"x"}},
		{name: "trailing data without blank line", input: "data: a\n\ndata: tail", want: []string{"a", "tail"}},
		{name: "done sentinel stops the stream", input: "data: a\n\ndata: [DONE]\n\ndata: after\n\n", want: []string{"a"}},
		{name: "empty stream", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectPayloads(t, tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d payloads %q, got %d %q", len(tt.want), tt.want, len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("payload %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSSEScanner_NextAfterDone_ReturnsEOF(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: [DONE]\n\ndata: x\n\n"))
	for range 3 {
		if _, err := scanner.Next(); err != io.EOF {
			t.Fatalf("expected io.EOF, got %v", err)
		}
	}
}

func TestSSEScanner_LargeLine(t *testing.T) {
	big := strings.Repeat("a", 512*1024)
	got := collectPayloads(t, "data: "+big+"\n\n")
	if len(got) != 1 || got[0] != big {
		t.Fatalf("expected one %d-byte payload", len(big))
	}
}

func TestSSEScanner_LineTooLong(t *testing.T) {
	scanner := NewSSEScanner(strings.NewReader("data: " + strings.Repeat("a", maxSSELineSize+1) + "\n\n"))
	_, err := scanner.Next()
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected bufio.ErrTooLong, got %v", err)
	}
}

func TestDoStream_Success_LeavesBodyOpen(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: chunk1\n\ndata: [DONE]\n\n")
	}))
	defer server.Close()

	response, err := DoStream(context.Background(), server.Client(), Request{URL: server.URL, APIKey: "k", Body: map[string]bool{"stream": true}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer CloseWithLog(response.Body)

	if accept != "text/event-stream" {
		t.Errorf("expected Accept text/event-stream, got %q", accept)
	}
	payload, err := NewSSEScanner(response.Body).Next()
	if err != nil || payload != "chunk1" {
		t.Errorf("expected chunk1, got %q (err %v)", payload, err)
	}
}

func TestDoStream_Non2xx_ReturnsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"slow down"}}`)
	}))
	defer server.Close()

	_, err := DoStream(context.Background(), server.Client(), Request{URL: server.URL, Body: map[string]string{}})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T (%v)", err, err)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", statusErr.StatusCode)
	}
	if !strings.Contains(string(statusErr.Body), "slow down") {
		t.Errorf("expected body to be kept, got %s", statusErr.Body)
	}
}

func TestDoStream_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DoStream(ctx, server.Client(), Request{URL: server.URL})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDoStream_NetworkError(t *testing.T) {
	if _, err := DoStream(context.Background(), nil, Request{URL: "http://127.0.0.1:1"}); err == nil {
		t.Fatal("expected network error, got nil")
	}
}
