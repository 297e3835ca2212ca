package openai

import (
	"context"
	"net/http"
	"time"
)

// Model describes a model available to the account.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// CreatedAt converts the Unix creation time.
func (m Model) CreatedAt() time.Time {
	return time.Unix(m.Created, 0)
}

type listModelsResponse struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// Usage reports the tokens consumed by a call. CompletionTokens is zero for
// embeddings.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens"`
}

// ListModels lists the models available to the account (GET /models).
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	response, err := doJSON[listModelsResponse](ctx, c, "list_models", http.MethodGet, "/models", "", nil)
	if err != nil {
		return nil, err
	}
	return response.Data, nil
}

// RetrieveModel fetches one model by id (GET /models/{id}).
func (c *Client) RetrieveModel(ctx context.Context, id string) (*Model, error) {
	return doJSON[Model](ctx, c, "retrieve_model", http.MethodGet, modelPath(id), id, nil)
}
