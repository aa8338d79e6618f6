package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system", "tool"
	Content string

	// Optional image attachment for vision-capable providers.
	// ImageURL references a remotely hosted image; ImageB64/ImageMIME
	// inline the bytes when the URL is not independently fetchable.
	ImageURL  string
	ImageB64  string
	ImageMIME string

	// Tool plumbing. ToolCalls is set on assistant messages that requested
	// tool invocations; ToolCallID/Name are set on "tool" role messages
	// carrying a result back.
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

// Tool describes a function the model may request.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema
}

// ToolCall is a model-requested invocation (name + raw JSON arguments).
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ChatResult is the outcome of a tool-capable chat round.
type ChatResult struct {
	Content   string
	ToolCalls []ToolCall
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response text
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// ChatWithTools sends a chat history along with tool definitions.
	// Providers without tool support return a plain-text ChatResult.
	ChatWithTools(ctx context.Context, history []Message, tools []Tool, options ...Option) (*ChatResult, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
