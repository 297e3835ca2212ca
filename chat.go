package openai

import (
	"context"
	"net/http"
	"time"

	"github.com/leofalp/openai-go/internal/utils"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// SystemMessage returns a message with the system role.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a message with the user role.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns a message with the assistant role.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// StreamOptions tunes streaming responses.
type StreamOptions struct {
	// IncludeUsage asks for a final chunk carrying token usage.
	IncludeUsage bool `json:"include_usage"`
}

// ChatArguments is the request body of POST /chat/completions. Unset optional
// fields are omitted.
type ChatArguments struct {
	Model            string             `json:"model"`
	Messages         []Message          `json:"messages"`
	Temperature      *float32           `json:"temperature,omitempty"`
	TopP             *float32           `json:"top_p,omitempty"`
	N                *int               `json:"n,omitempty"`
	Stream           *bool              `json:"stream,omitempty"`
	StreamOptions    *StreamOptions     `json:"stream_options,omitempty"`
	Stop             StopSequences      `json:"stop,omitempty"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	PresencePenalty  *float32           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float32           `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]float32 `json:"logit_bias,omitempty"`
	User             *string            `json:"user,omitempty"`
}

// NewChatArguments builds arguments with only the required fields set.
func NewChatArguments(model string, messages ...Message) ChatArguments {
	if messages == nil {
		messages = []Message{}
	}
	return ChatArguments{Model: model, Messages: messages}
}

// WithTemperature sets the sampling temperature, 0 to 2. Higher values give more varied replies.
func (a ChatArguments) WithTemperature(temperature float32) ChatArguments {
	a.Temperature = &temperature
	return a
}

// WithTopP enables nucleus sampling over the top_p probability mass. Usually set instead of the temperature.
func (a ChatArguments) WithTopP(topP float32) ChatArguments {
	a.TopP = &topP
	return a
}

// WithN asks for n alternative replies, returned as separate choices.
func (a ChatArguments) WithN(n int) ChatArguments {
	a.N = &n
	return a
}

// WithStop sets up to four sequences that end generation. One sequence is sent as a plain string.
func (a ChatArguments) WithStop(stop ...string) ChatArguments {
	a.Stop = stop
	return a
}

// WithMaxTokens caps the tokens generated for each choice.
func (a ChatArguments) WithMaxTokens(maxTokens int) ChatArguments {
	a.MaxTokens = &maxTokens
	return a
}

// WithPresencePenalty penalizes tokens that already appeared, -2 to 2.
func (a ChatArguments) WithPresencePenalty(penalty float32) ChatArguments {
	a.PresencePenalty = &penalty
	return a
}

// WithFrequencyPenalty penalizes tokens by how often they appeared, -2 to 2.
func (a ChatArguments) WithFrequencyPenalty(penalty float32) ChatArguments {
	a.FrequencyPenalty = &penalty
	return a
}

// WithLogitBias maps token ids to a bias in [-100, 100].
func (a ChatArguments) WithLogitBias(bias map[string]float32) ChatArguments {
	a.LogitBias = bias
	return a
}

// WithUser tags the request with an end-user id for abuse monitoring.
func (a ChatArguments) WithUser(user string) ChatArguments {
	a.User = &user
	return a
}

func (a ChatArguments) messageCount() int {
	return len(a.Messages)
}

// ChatChoice is one generated alternative.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatCompletion is the response of POST /chat/completions.
type ChatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// String returns the content of the first choice, or "" when there is none.
func (c ChatCompletion) String() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

// CreatedAt converts the Unix creation time.
func (c ChatCompletion) CreatedAt() time.Time {
	return time.Unix(c.Created, 0)
}

func (c *ChatCompletion) usageInfo() *Usage {
	return c.Usage
}

func (c ChatCompletion) summary() (string, string) {
	if len(c.Choices) == 0 {
		return c.ID, ""
	}
	return c.ID, c.Choices[0].FinishReason
}

// CreateChat generates a reply for the conversation in args. Any stream
// settings in args are ignored.
func (c *Client) CreateChat(ctx context.Context, args ChatArguments) (*ChatCompletion, error) {
	args.Stream = nil
	args.StreamOptions = nil
	return doJSON[ChatCompletion](ctx, c, "create_chat", http.MethodPost, "/chat/completions", args.Model, args)
}

// ParseContentAs decodes the first choice content of completion into T.
// Malformed JSON is repaired before decoding, and markdown code fences are
// removed.
func ParseContentAs[T any](completion *ChatCompletion) (T, error) {
	if completion == nil {
		var zero T
		return zero, errEmptyCompletion
	}
	return utils.ParseStringAs[T](completion.String())
}
