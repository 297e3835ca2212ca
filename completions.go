package openai

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/leofalp/openai-go/internal/utils"
)

// CompletionArguments is the request body of POST /completions.
type CompletionArguments struct {
	Model            string             `json:"model"`
	Prompt           string             `json:"prompt"`
	Suffix           *string            `json:"suffix,omitempty"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	Temperature      *float32           `json:"temperature,omitempty"`
	TopP             *float32           `json:"top_p,omitempty"`
	N                *int               `json:"n,omitempty"`
	Stream           *bool              `json:"stream,omitempty"`
	Logprobs         *int               `json:"logprobs,omitempty"`
	Echo             *bool              `json:"echo,omitempty"`
	Stop             StopSequences      `json:"stop,omitempty"`
	PresencePenalty  *float32           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float32           `json:"frequency_penalty,omitempty"`
	BestOf           *int               `json:"best_of,omitempty"`
	LogitBias        map[string]float32 `json:"logit_bias,omitempty"`
	User             *string            `json:"user,omitempty"`
}

// NewCompletionArguments builds arguments with only the required fields set.
func NewCompletionArguments(model, prompt string) CompletionArguments {
	return CompletionArguments{Model: model, Prompt: prompt}
}

// WithSuffix sets the text that follows the inserted completion.
func (a CompletionArguments) WithSuffix(suffix string) CompletionArguments {
	a.Suffix = &suffix
	return a
}

// WithMaxTokens caps the tokens generated for each choice.
func (a CompletionArguments) WithMaxTokens(maxTokens int) CompletionArguments {
	a.MaxTokens = &maxTokens
	return a
}

// WithTemperature sets the sampling temperature, 0 to 2.
func (a CompletionArguments) WithTemperature(temperature float32) CompletionArguments {
	a.Temperature = &temperature
	return a
}

// WithTopP enables nucleus sampling over the top_p probability mass.
func (a CompletionArguments) WithTopP(topP float32) CompletionArguments {
	a.TopP = &topP
	return a
}

// WithN asks for n completions per prompt.
func (a CompletionArguments) WithN(n int) CompletionArguments {
	a.N = &n
	return a
}

// WithLogprobs requests the log probabilities of the n most likely tokens.
func (a CompletionArguments) WithLogprobs(n int) CompletionArguments {
	a.Logprobs = &n
	return a
}

// WithEcho returns the prompt in front of the completion text.
func (a CompletionArguments) WithEcho(echo bool) CompletionArguments {
	a.Echo = &echo
	return a
}

// WithStop sets up to four sequences that end generation.
func (a CompletionArguments) WithStop(stop ...string) CompletionArguments {
	a.Stop = stop
	return a
}

// WithPresencePenalty penalizes tokens that already appeared, -2 to 2.
func (a CompletionArguments) WithPresencePenalty(penalty float32) CompletionArguments {
	a.PresencePenalty = &penalty
	return a
}

// WithFrequencyPenalty penalizes tokens by how often they appeared, -2 to 2.
func (a CompletionArguments) WithFrequencyPenalty(penalty float32) CompletionArguments {
	a.FrequencyPenalty = &penalty
	return a
}

// WithBestOf generates bestOf candidates server side and returns the best n. It must not be smaller than n.
func (a CompletionArguments) WithBestOf(bestOf int) CompletionArguments {
	a.BestOf = &bestOf
	return a
}

// WithLogitBias maps token ids to a bias in [-100, 100].
func (a CompletionArguments) WithLogitBias(bias map[string]float32) CompletionArguments {
	a.LogitBias = bias
	return a
}

// WithUser tags the request with an end-user id for abuse monitoring.
func (a CompletionArguments) WithUser(user string) CompletionArguments {
	a.User = &user
	return a
}

// LogProbs holds per-token log probabilities of a completion choice.
type LogProbs struct {
	Tokens        []string             `json:"tokens"`
	TokenLogprobs []float32            `json:"token_logprobs"`
	TopLogprobs   []map[string]float32 `json:"top_logprobs"`
	TextOffset    []int                `json:"text_offset"`
}

// CompletionChoice is one generated alternative.
type CompletionChoice struct {
	Text         string    `json:"text"`
	Index        int       `json:"index"`
	Logprobs     *LogProbs `json:"logprobs,omitempty"`
	FinishReason string    `json:"finish_reason"`
}

// CompletionResponse is the response of POST /completions, and also the shape
// of each event of a streamed completion.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *Usage             `json:"usage,omitempty"`
}

// String returns the text of the first choice.
func (r CompletionResponse) String() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Text
}

// CreatedAt converts the Unix creation time.
func (r CompletionResponse) CreatedAt() time.Time {
	return time.Unix(r.Created, 0)
}

func (r *CompletionResponse) usageInfo() *Usage {
	return r.Usage
}

func (r CompletionResponse) summary() (string, string) {
	if len(r.Choices) == 0 {
		return r.ID, ""
	}
	return r.ID, r.Choices[0].FinishReason
}

// CreateCompletion generates a completion for args.Prompt. Stream is ignored.
func (c *Client) CreateCompletion(ctx context.Context, args CompletionArguments) (*CompletionResponse, error) {
	args.Stream = nil
	return doJSON[CompletionResponse](ctx, c, "create_completion", http.MethodPost, "/completions", args.Model, args)
}

// CompletionStream is a streamed text completion.
type CompletionStream struct {
	*Stream[CompletionResponse]
}

// CreateCompletionStream starts a streamed completion, with the same error
// split as CreateChatStream.
func (c *Client) CreateCompletionStream(ctx context.Context, args CompletionArguments) (*CompletionStream, error) {
	args.Stream = utils.Ptr(true)

	response, cl, err := c.openStream(ctx, "create_completion_stream", "/completions", args.Model, args)
	if err != nil {
		return nil, err
	}
	return &CompletionStream{newStream(ctx, response, cl, func(event CompletionResponse) *Usage {
		return event.Usage
	})}, nil
}

// Collect consumes the stream and concatenates the text of every choice.
// Log probabilities are not merged.
func (s *CompletionStream) Collect() (*CompletionResponse, error) {
	collected := &CompletionResponse{Object: "text_completion"}
	texts := map[int]*strings.Builder{}
	finish := map[int]string{}

	var streamErr error
	for event, err := range s.Iter() {
		if err != nil {
			streamErr = err
			break
		}
		if collected.ID == "" {
			collected.ID = event.ID
			collected.Created = event.Created
			collected.Model = event.Model
		}
		if event.Usage != nil {
			collected.Usage = event.Usage
		}
		for _, choice := range event.Choices {
			text, ok := texts[choice.Index]
			if !ok {
				text = &strings.Builder{}
				texts[choice.Index] = text
			}
			text.WriteString(choice.Text)
			if choice.FinishReason != "" {
				finish[choice.Index] = choice.FinishReason
			}
		}
	}

	indexes := make([]int, 0, len(texts))
	for index := range texts {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	for _, index := range indexes {
		collected.Choices = append(collected.Choices, CompletionChoice{
			Text:         texts[index].String(),
			Index:        index,
			FinishReason: finish[index],
		})
	}
	return collected, streamErr
}
