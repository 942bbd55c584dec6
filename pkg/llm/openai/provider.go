package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"ai-chatspace-be/pkg/llm"

	openai "github.com/sashabaranov/go-openai"
)

// Provider speaks the OpenAI chat-completions protocol, which also covers
// OpenRouter and other compatible gateways via BaseURL.
type Provider struct {
	client    *openai.Client
	modelName string
}

var _ llm.Provider = (*Provider)(nil)

func NewProvider(apiKey, baseURL, modelName string) *Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Provider{
		client:    openai.NewClientWithConfig(cfg),
		modelName: modelName,
	}
}

func (p *Provider) ChatStream(ctx context.Context, history []llm.Message, tools []llm.ToolDefinition, opts ...llm.Option) (<-chan llm.Chunk, error) {
	options := &llm.Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}

	model := p.modelName
	if options.Model != "" {
		model = options.Model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    toOpenAIMessages(history),
		Temperature: float32(options.Temperature),
		Stream:      true,
	}
	if options.MaxTokens > 0 {
		req.MaxTokens = options.MaxTokens
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create completion stream: %w", err)
	}

	chunks := make(chan llm.Chunk)
	go p.processStream(ctx, stream, chunks)
	return chunks, nil
}

// processStream forwards text deltas as they arrive and accumulates
// tool-call argument fragments by index until the stream marks them
// complete. Arguments stream as partial JSON, so a tool call is only
// emitted once fully assembled.
func (p *Provider) processStream(ctx context.Context, stream *openai.ChatCompletionStream, chunks chan<- llm.Chunk) {
	defer close(chunks)
	defer stream.Close()

	pending := make(map[int]*llm.ToolCall)

	flushPending := func() {
		for _, tc := range completedToolCalls(pending) {
			chunks <- llm.Chunk{ToolCall: tc}
		}
		pending = make(map[int]*llm.ToolCall)
	}

	for {
		select {
		case <-ctx.Done():
			chunks <- llm.Chunk{Err: ctx.Err()}
			return
		default:
		}

		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				flushPending()
				chunks <- llm.Chunk{Done: true}
				return
			}
			chunks <- llm.Chunk{Err: err}
			return
		}

		if len(resp.Choices) == 0 {
			continue
		}
		choice := resp.Choices[0]

		if choice.Delta.Content != "" {
			chunks <- llm.Chunk{Text: choice.Delta.Content}
		}

		for _, tc := range choice.Delta.ToolCalls {
			index := 0
			if tc.Index != nil {
				index = *tc.Index
			}
			if pending[index] == nil {
				pending[index] = &llm.ToolCall{}
			}
			if tc.ID != "" {
				pending[index].Id = tc.ID
			}
			if tc.Function.Name != "" {
				pending[index].Name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				args := string(pending[index].Arguments) + tc.Function.Arguments
				pending[index].Arguments = json.RawMessage(args)
			}
		}

		if choice.FinishReason == openai.FinishReasonToolCalls {
			flushPending()
		}
	}
}

// completedToolCalls returns the fully assembled calls in index order. Some
// gateways stream sparse or non-zero-based indices, so the map keys are
// sorted rather than assumed contiguous.
func completedToolCalls(pending map[int]*llm.ToolCall) []*llm.ToolCall {
	indices := make([]int, 0, len(pending))
	for i := range pending {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	calls := make([]*llm.ToolCall, 0, len(pending))
	for _, i := range indices {
		tc := pending[i]
		if tc != nil && tc.Id != "" && tc.Name != "" {
			calls = append(calls, tc)
		}
	}
	return calls
}

func toOpenAIMessages(history []llm.Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		m := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		if msg.Role == llm.RoleTool {
			m.ToolCallID = msg.ToolCallId
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
				ID:   tc.Id,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		messages = append(messages, m)
	}
	return messages
}

func toOpenAITools(tools []llm.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}
