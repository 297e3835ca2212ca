package openai

import (
	"context"
	"sort"
	"strings"

	"github.com/leofalp/openai-go/internal/utils"
)

// ChatDelta is the incremental part of a message carried by a chunk.
type ChatDelta struct {
	Role    Role   `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ChatChunkChoice is one choice of a streamed chunk.
type ChatChunkChoice struct {
	Index        int       `json:"index"`
	Delta        ChatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

// ChatCompletionChunk is one event of a streamed chat completion.
type ChatCompletionChunk struct {
	ID      string            `json:"id"`
	Object  string            `json:"object"`
	Created int64             `json:"created"`
	Model   string            `json:"model"`
	Choices []ChatChunkChoice `json:"choices"`
	Usage   *Usage            `json:"usage,omitempty"`
}

// String returns the delta content of the first choice.
func (c ChatCompletionChunk) String() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}

func (c ChatCompletionChunk) summary() (string, string) {
	if len(c.Choices) == 0 || c.Choices[0].FinishReason == nil {
		return c.ID, ""
	}
	return c.ID, *c.Choices[0].FinishReason
}

// ChatStream is a streamed chat completion.
//
//	stream, err := client.CreateChatStream(ctx, args)
//	if err != nil { ... }
//	for chunk, err := range stream.Iter() {
//	    if err != nil { ... }
//	    fmt.Print(chunk)
//	}
type ChatStream struct {
	*Stream[ChatCompletionChunk]
}

// CreateChatStream starts a streamed chat completion. Failures before the
// first event (missing key, transport errors, non-2xx replies) are returned
// here; later ones are yielded by the iterator.
func (c *Client) CreateChatStream(ctx context.Context, args ChatArguments) (*ChatStream, error) {
	args.Stream = utils.Ptr(true)

	response, cl, err := c.openStream(ctx, "create_chat_stream", "/chat/completions", args.Model, args)
	if err != nil {
		return nil, err
	}
	return &ChatStream{newStream(ctx, response, cl, func(chunk ChatCompletionChunk) *Usage {
		return chunk.Usage
	})}, nil
}

type choiceBuilder struct {
	role         Role
	content      strings.Builder
	finishReason string
}

// Collect consumes the stream and merges the deltas of every choice into a
// complete response. On a mid-stream error the partial response is returned
// with the error.
func (s *ChatStream) Collect() (*ChatCompletion, error) {
	completion := &ChatCompletion{Object: "chat.completion"}
	builders := map[int]*choiceBuilder{}

	var streamErr error
	for chunk, err := range s.Iter() {
		if err != nil {
			streamErr = err
			break
		}
		if completion.ID == "" {
			completion.ID = chunk.ID
			completion.Created = chunk.Created
			completion.Model = chunk.Model
		}
		if chunk.Usage != nil {
			completion.Usage = chunk.Usage
		}
		for _, choice := range chunk.Choices {
			builder, ok := builders[choice.Index]
			if !ok {
				builder = &choiceBuilder{}
				builders[choice.Index] = builder
			}
			if choice.Delta.Role != "" {
				builder.role = choice.Delta.Role
			}
			builder.content.WriteString(choice.Delta.Content)
			if choice.FinishReason != nil {
				builder.finishReason = *choice.FinishReason
			}
		}
	}

	indexes := make([]int, 0, len(builders))
	for index := range builders {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)
	for _, index := range indexes {
		builder := builders[index]
		role := builder.role
		if role == "" {
			role = RoleAssistant
		}
		completion.Choices = append(completion.Choices, ChatChoice{
			Index:        index,
			Message:      Message{Role: role, Content: builder.content.String()},
			FinishReason: builder.finishReason,
		})
	}
	return completion, streamErr
}
