package openai

import (
	"context"
	"net/http"
)

// EditArguments is the request body of POST /edits.
//
// Deprecated: the edits endpoint is retired upstream; use CreateChat with an
// instruction in the system message.
type EditArguments struct {
	Model       string   `json:"model"`
	Input       *string  `json:"input,omitempty"`
	Instruction string   `json:"instruction"`
	N           *int     `json:"n,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
}

// NewEditArguments asks model to rewrite input following instruction. An
// empty input is omitted from the request.
func NewEditArguments(model, input, instruction string) EditArguments {
	args := EditArguments{Model: model, Instruction: instruction}
	if input != "" {
		args.Input = &input
	}
	return args
}

// WithN asks for n edited alternatives.
func (a EditArguments) WithN(n int) EditArguments {
	a.N = &n
	return a
}

// WithTemperature sets the sampling temperature, 0 to 2.
func (a EditArguments) WithTemperature(temperature float32) EditArguments {
	a.Temperature = &temperature
	return a
}

// WithTopP enables nucleus sampling over the top_p probability mass.
func (a EditArguments) WithTopP(topP float32) EditArguments {
	a.TopP = &topP
	return a
}

// EditChoice is one edited alternative.
type EditChoice struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// EditResponse is the response of POST /edits.
type EditResponse struct {
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Choices []EditChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// String returns the text of the first choice.
func (r EditResponse) String() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Text
}

func (r *EditResponse) usageInfo() *Usage {
	return r.Usage
}

// CreateEdit rewrites args.Input according to args.Instruction.
//
// Deprecated: see EditArguments.
func (c *Client) CreateEdit(ctx context.Context, args EditArguments) (*EditResponse, error) {
	return doJSON[EditResponse](ctx, c, "create_edit", http.MethodPost, "/edits", args.Model, args)
}
