package llm

import (
	"context"
	"encoding/json"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role       string // "user", "assistant", "system", "tool"
	Content    string
	ToolCalls  []ToolCall // assistant messages requesting tool execution
	ToolCallId string     // set on "tool" role messages carrying a result
}

// ToolCall is a model request to execute a tool.
type ToolCall struct {
	Id        string
	Name      string
	Arguments json.RawMessage
}

// ToolDefinition describes a callable tool in a provider-agnostic way.
// Parameters is a JSON Schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// Chunk is one unit of a streamed completion. Exactly one terminal chunk is
// delivered per stream: Done or Err.
type Chunk struct {
	Text     string    // partial response text
	ToolCall *ToolCall // a completed tool call (arguments fully accumulated)
	Done     bool
	Err      error
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

// Provider defines the contract for any LLM backend.
type Provider interface {
	// ChatStream sends a chat history to the model and streams the response.
	// The returned channel is closed after the terminal chunk.
	ChatStream(ctx context.Context, history []Message, tools []ToolDefinition, options ...Option) (<-chan Chunk, error)
}
