package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-chatspace-be/internal/pkg/logger"
	"ai-chatspace-be/pkg/llm"
)

const (
	DefaultMaxIterations = 5
	eventBufferSize      = 64
)

// Tool is anything the runtime can hand to the model. A returned error is
// reported back to the model as an error result; it never aborts the turn.
type Tool interface {
	Name() string
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error)
}

type Config struct {
	// MaxIterations bounds reasoning rounds per turn. Each round is one model
	// call; rounds after the first only happen when the model requested tools.
	MaxIterations int
	SystemPrompt  string
}

// Runtime drives a single conversational turn: stream model output, execute
// requested tools, feed results back, repeat until the model answers in plain
// text or the iteration bound is hit.
type Runtime struct {
	provider llm.Provider
	tools    map[string]Tool
	defs     []llm.ToolDefinition
	config   Config
	logger   logger.ILogger
}

func NewRuntime(provider llm.Provider, config Config, log logger.ILogger, tools ...Tool) *Runtime {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}

	byName := make(map[string]Tool, len(tools))
	defs := make([]llm.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
		defs = append(defs, t.Definition())
	}

	return &Runtime{
		provider: provider,
		tools:    byName,
		defs:     defs,
		config:   config,
		logger:   log,
	}
}

// Run starts the turn and returns its event stream. The channel is always
// closed after exactly one terminal event (TurnEnd or TurnError). Cancelling
// ctx aborts the turn with a TurnError.
func (r *Runtime) Run(ctx context.Context, history []llm.Message) <-chan Event {
	events := make(chan Event, eventBufferSize)

	go func() {
		defer close(events)
		r.run(ctx, history, events)
	}()

	return events
}

func (r *Runtime) run(ctx context.Context, history []llm.Message, events chan<- Event) {
	messages := make([]llm.Message, 0, len(history)+1)
	if r.config.SystemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: r.config.SystemPrompt})
	}
	messages = append(messages, history...)

	for iteration := 0; iteration < r.config.MaxIterations; iteration++ {
		text, toolCalls, err := r.streamOnce(ctx, messages, events)
		if err != nil {
			events <- TurnError{Err: err}
			return
		}

		if len(toolCalls) == 0 {
			events <- TurnEnd{}
			return
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   text,
			ToolCalls: toolCalls,
		})

		for _, call := range toolCalls {
			result, err := r.execute(ctx, call, events)
			if err != nil {
				// Only context cancellation surfaces here; tool failures are
				// degraded into error results inside execute.
				events <- TurnError{Err: err}
				return
			}
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    string(result),
				ToolCallId: call.Id,
			})
		}
	}

	// Iteration bound hit with the model still asking for tools. Whatever text
	// was streamed stands as the answer.
	r.logger.Warn("Agent", "iteration bound reached", map[string]interface{}{"max_iterations": r.config.MaxIterations})
	events <- TurnEnd{}
}

// streamOnce performs one model call, forwarding text deltas as they arrive
// and collecting completed tool calls.
func (r *Runtime) streamOnce(ctx context.Context, messages []llm.Message, events chan<- Event) (string, []llm.ToolCall, error) {
	chunks, err := r.provider.ChatStream(ctx, messages, r.defs)
	if err != nil {
		return "", nil, fmt.Errorf("model stream: %w", err)
	}

	var text string
	var toolCalls []llm.ToolCall

	for chunk := range chunks {
		if chunk.Err != nil {
			return "", nil, fmt.Errorf("model stream: %w", chunk.Err)
		}
		if chunk.Text != "" {
			text += chunk.Text
			select {
			case events <- TextDelta{Text: chunk.Text}:
			case <-ctx.Done():
				// Unblock the provider goroutine before bailing out; it
				// observes the same ctx and closes the channel on its own.
				go func() {
					for range chunks {
					}
				}()
				return "", nil, ctx.Err()
			}
		}
		if chunk.ToolCall != nil {
			toolCalls = append(toolCalls, *chunk.ToolCall)
		}
		if chunk.Done {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	return text, toolCalls, nil
}

func (r *Runtime) execute(ctx context.Context, call llm.ToolCall, events chan<- Event) (json.RawMessage, error) {
	events <- ToolCallStart{ToolCallId: call.Id, ToolName: call.Name}
	events <- ToolCallArgsComplete{ToolCallId: call.Id, Args: call.Arguments}

	tool, ok := r.tools[call.Name]
	if !ok {
		// The model asked for a tool we never offered. Tell it instead of
		// failing the turn.
		r.logger.Warn("Agent", "unknown tool requested", map[string]interface{}{"tool": call.Name})
		out := json.RawMessage(fmt.Sprintf(`{"error":"unknown tool %q"}`, call.Name))
		events <- ToolResult{ToolCallId: call.Id, ToolName: call.Name, Output: out}
		return out, nil
	}

	out, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// A broken tool degrades the answer, it does not end the turn. The
		// model sees the failure and can answer without the result.
		r.logger.Error("Agent", "tool execution failed", map[string]interface{}{"tool": call.Name, "error": err.Error()})
		out = json.RawMessage(fmt.Sprintf(`{"error":"tool %s failed"}`, call.Name))
	}

	events <- ToolResult{ToolCallId: call.Id, ToolName: call.Name, Output: out}
	return out, nil
}
