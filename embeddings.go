package openai

import (
	"context"
	"net/http"
)

// EmbeddingsArguments is the request body of POST /embeddings.
type EmbeddingsArguments struct {
	Model string         `json:"model"`
	Input EmbeddingInput `json:"input"`
	User  *string        `json:"user,omitempty"`
}

// NewEmbeddingsArguments embeds one or more inputs with model.
func NewEmbeddingsArguments(model string, input ...string) EmbeddingsArguments {
	return EmbeddingsArguments{Model: model, Input: input}
}

// WithUser tags the request with an end-user id for abuse monitoring.
func (a EmbeddingsArguments) WithUser(user string) EmbeddingsArguments {
	a.User = &user
	return a
}

// Embedding is the vector of one input, identified by its position.
type Embedding struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// EmbeddingsResponse is the response of POST /embeddings.
type EmbeddingsResponse struct {
	Object string      `json:"object"`
	Data   []Embedding `json:"data"`
	Model  string      `json:"model"`
	Usage  *Usage      `json:"usage,omitempty"`
}

func (r *EmbeddingsResponse) usageInfo() *Usage {
	return r.Usage
}

// CreateEmbeddings returns one vector per input.
func (c *Client) CreateEmbeddings(ctx context.Context, args EmbeddingsArguments) (*EmbeddingsResponse, error) {
	return doJSON[EmbeddingsResponse](ctx, c, "create_embeddings", http.MethodPost, "/embeddings", args.Model, args)
}
