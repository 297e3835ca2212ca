package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

func TestEmbeddingsArguments_InputShape(t *testing.T) {
	single, _ := json.Marshal(NewEmbeddingsArguments("text-embedding-3-small", "hello"))
	if string(single) != `{"model":"text-embedding-3-small","input":"hello"}` {
		t.Errorf("expected single input as string, got %s", single)
	}

	many, _ := json.Marshal(NewEmbeddingsArguments("m", "a", "b").WithUser("u"))
	if string(many) != `{"model":"m","input":["a","b"],"user":"u"}` {
		t.Errorf("expected several inputs as array, got %s", many)
	}
}

func TestCreateEmbeddings(t *testing.T) {
	var body string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		fmt.Fprint(w, `{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","embedding":[0.0023064255,-0.009327292],"index":0},
			        {"object":"embedding","embedding":[0.5,0.25],"index":1}],
			"usage":{"prompt_tokens":8,"total_tokens":8}}`)
	})

	response, err := client.CreateEmbeddings(context.Background(), NewEmbeddingsArguments("text-embedding-3-small", "a", "b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != `{"model":"text-embedding-3-small","input":["a","b"]}` {
		t.Errorf("unexpected request body %s", body)
	}
	if len(response.Data) != 2 || response.Data[1].Index != 1 || response.Data[1].Embedding[0] != 0.5 {
		t.Errorf("unexpected data %+v", response.Data)
	}
	if response.Data[0].Embedding[0] != float32(0.0023064255) {
		t.Errorf("unexpected first component %v", response.Data[0].Embedding[0])
	}
	if response.Usage.PromptTokens != 8 || response.Usage.CompletionTokens != 0 {
		t.Errorf("unexpected usage %+v", response.Usage)
	}
}

func TestCreateEmbeddings_LargeResponse(t *testing.T) {
	const (
		inputs     = 800
		dimensions = 1536
	)
	var written atomic.Int64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		counted := &countingWriter{w: w}
		out := bufio.NewWriter(counted)
		vector := "[" + strings.TrimSuffix(strings.Repeat("0.0123456,", dimensions), ",") + "]"
		fmt.Fprint(out, `{"object":"list","model":"text-embedding-3-small","data":[`)
		for i := range inputs {
			if i > 0 {
				fmt.Fprint(out, ",")
			}
			fmt.Fprintf(out, `{"object":"embedding","index":%d,"embedding":%s}`, i, vector)
		}
		fmt.Fprint(out, `],"usage":{"prompt_tokens":800,"total_tokens":800}}`)
		_ = out.Flush()
		written.Store(int64(counted.n))
	})

	response, err := client.CreateEmbeddings(context.Background(), NewEmbeddingsArguments("text-embedding-3-small", "a", "b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := written.Load(); n <= 10*1024*1024 {
		t.Fatalf("expected a body over 10 MiB, wrote %d bytes", n)
	}
	if len(response.Data) != inputs {
		t.Fatalf("expected %d embeddings, got %d", inputs, len(response.Data))
	}
	last := response.Data[inputs-1]
	if last.Index != inputs-1 || len(last.Embedding) != dimensions || last.Embedding[dimensions-1] != float32(0.0123456) {
		t.Errorf("unexpected last embedding: index %d, %d dims", last.Index, len(last.Embedding))
	}
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
