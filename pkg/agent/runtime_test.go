package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chatspace-be/pkg/llm"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// scriptedProvider plays back one chunk sequence per model call.
type scriptedProvider struct {
	rounds    [][]llm.Chunk
	calls     int
	lastSeen  []llm.Message
	streamErr error
}

func (p *scriptedProvider) ChatStream(ctx context.Context, history []llm.Message, tools []llm.ToolDefinition, options ...llm.Option) (<-chan llm.Chunk, error) {
	if p.streamErr != nil {
		return nil, p.streamErr
	}
	p.lastSeen = history
	round := p.rounds[p.calls%len(p.rounds)]
	p.calls++

	ch := make(chan llm.Chunk, len(round)+1)
	for _, c := range round {
		ch <- c
	}
	ch <- llm.Chunk{Done: true}
	close(ch)
	return ch, nil
}

type fakeTool struct {
	name   string
	output json.RawMessage
	err    error
	args   []json.RawMessage
}

func (t *fakeTool) Name() string { return t.name }

func (t *fakeTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{Name: t.name, Parameters: map[string]interface{}{"type": "object"}}
}

func (t *fakeTool) Execute(ctx context.Context, args json.RawMessage) (json.RawMessage, error) {
	t.args = append(t.args, args)
	return t.output, t.err
}

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatal("event stream never closed")
		}
	}
}

func TestRunPlainTextTurn(t *testing.T) {
	provider := &scriptedProvider{rounds: [][]llm.Chunk{{
		{Text: "Hello"},
		{Text: ", world"},
	}}}
	rt := NewRuntime(provider, Config{SystemPrompt: "be brief"}, nopLogger{})

	events := collect(t, rt.Run(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}}))

	require.Len(t, events, 3)
	assert.Equal(t, TextDelta{Text: "Hello"}, events[0])
	assert.Equal(t, TextDelta{Text: ", world"}, events[1])
	assert.Equal(t, TurnEnd{}, events[2])

	require.Len(t, provider.lastSeen, 2)
	assert.Equal(t, llm.RoleSystem, provider.lastSeen[0].Role)
	assert.Equal(t, "be brief", provider.lastSeen[0].Content)
}

func TestRunToolRoundTrip(t *testing.T) {
	call := llm.ToolCall{Id: "call_1", Name: "web_search", Arguments: json.RawMessage(`{"query":"go"}`)}
	provider := &scriptedProvider{rounds: [][]llm.Chunk{
		{{ToolCall: &call}},
		{{Text: "answer"}},
	}}
	tool := &fakeTool{name: "web_search", output: json.RawMessage(`{"results":[]}`)}
	rt := NewRuntime(provider, Config{}, nopLogger{}, tool)

	events := collect(t, rt.Run(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "search go"}}))

	require.Len(t, events, 5)
	assert.Equal(t, ToolCallStart{ToolCallId: "call_1", ToolName: "web_search"}, events[0])
	assert.Equal(t, ToolCallArgsComplete{ToolCallId: "call_1", Args: call.Arguments}, events[1])
	assert.Equal(t, ToolResult{ToolCallId: "call_1", ToolName: "web_search", Output: tool.output}, events[2])
	assert.Equal(t, TextDelta{Text: "answer"}, events[3])
	assert.Equal(t, TurnEnd{}, events[4])

	require.Len(t, tool.args, 1)
	assert.JSONEq(t, `{"query":"go"}`, string(tool.args[0]))

	// Second model call must carry the assistant tool request and the tool result.
	require.Len(t, provider.lastSeen, 3)
	assert.Equal(t, llm.RoleAssistant, provider.lastSeen[1].Role)
	assert.Equal(t, []llm.ToolCall{call}, provider.lastSeen[1].ToolCalls)
	assert.Equal(t, llm.RoleTool, provider.lastSeen[2].Role)
	assert.Equal(t, "call_1", provider.lastSeen[2].ToolCallId)
	assert.Equal(t, `{"results":[]}`, provider.lastSeen[2].Content)
}

func TestRunIterationBound(t *testing.T) {
	call := llm.ToolCall{Id: "call_n", Name: "web_search", Arguments: json.RawMessage(`{}`)}
	provider := &scriptedProvider{rounds: [][]llm.Chunk{{{ToolCall: &call}}}}
	tool := &fakeTool{name: "web_search", output: json.RawMessage(`{}`)}
	rt := NewRuntime(provider, Config{MaxIterations: 3}, nopLogger{}, tool)

	events := collect(t, rt.Run(context.Background(), nil))

	assert.Equal(t, 3, provider.calls)
	require.NotEmpty(t, events)
	assert.Equal(t, TurnEnd{}, events[len(events)-1])
	for _, ev := range events[:len(events)-1] {
		_, isTerminal := ev.(TurnEnd)
		_, isError := ev.(TurnError)
		assert.False(t, isTerminal || isError, "terminal event before the end")
	}
}

func TestRunProviderError(t *testing.T) {
	provider := &scriptedProvider{streamErr: errors.New("upstream unavailable")}
	rt := NewRuntime(provider, Config{}, nopLogger{})

	events := collect(t, rt.Run(context.Background(), nil))

	require.Len(t, events, 1)
	terminal, ok := events[0].(TurnError)
	require.True(t, ok)
	assert.ErrorContains(t, terminal.Err, "upstream unavailable")
}

func TestRunMidStreamError(t *testing.T) {
	provider := &scriptedProvider{rounds: [][]llm.Chunk{{
		{Text: "partial"},
		{Err: errors.New("connection reset")},
	}}}
	rt := NewRuntime(provider, Config{}, nopLogger{})

	events := collect(t, rt.Run(context.Background(), nil))

	require.Len(t, events, 2)
	assert.Equal(t, TextDelta{Text: "partial"}, events[0])
	terminal, ok := events[1].(TurnError)
	require.True(t, ok)
	assert.ErrorContains(t, terminal.Err, "connection reset")
}

func TestRunUnknownToolContinues(t *testing.T) {
	call := llm.ToolCall{Id: "call_x", Name: "crystal_ball", Arguments: json.RawMessage(`{}`)}
	provider := &scriptedProvider{rounds: [][]llm.Chunk{
		{{ToolCall: &call}},
		{{Text: "fallback answer"}},
	}}
	rt := NewRuntime(provider, Config{}, nopLogger{})

	events := collect(t, rt.Run(context.Background(), nil))

	require.Len(t, events, 5)
	result, ok := events[2].(ToolResult)
	require.True(t, ok)
	assert.Contains(t, string(result.Output), "unknown tool")
	assert.Equal(t, TurnEnd{}, events[4])
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{rounds: [][]llm.Chunk{{{Text: "never"}}}}
	rt := NewRuntime(provider, Config{}, nopLogger{})

	events := collect(t, rt.Run(ctx, nil))

	require.NotEmpty(t, events)
	_, ok := events[len(events)-1].(TurnError)
	assert.True(t, ok)
}

// floodProvider streams deltas on an unbuffered channel so an abandoned
// receive would leave its goroutine stuck mid-send.
type floodProvider struct {
	total    int
	buffered chan struct{} // closed once the consumer's event buffer is saturated
	done     chan struct{} // closed when the streaming goroutine exits
}

func (p *floodProvider) ChatStream(ctx context.Context, history []llm.Message, tools []llm.ToolDefinition, options ...llm.Option) (<-chan llm.Chunk, error) {
	ch := make(chan llm.Chunk)
	go func() {
		defer close(p.done)
		defer close(ch)
		for i := 0; i < p.total; i++ {
			ch <- llm.Chunk{Text: "x"}
			if i == eventBufferSize {
				close(p.buffered)
			}
		}
		ch <- llm.Chunk{Done: true}
	}()
	return ch, nil
}

func TestRunCancelReleasesProviderStream(t *testing.T) {
	provider := &floodProvider{
		total:    eventBufferSize * 2,
		buffered: make(chan struct{}),
		done:     make(chan struct{}),
	}
	rt := NewRuntime(provider, Config{}, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	events := rt.Run(ctx, nil)

	select {
	case <-provider.buffered:
	case <-time.After(2 * time.Second):
		t.Fatal("provider never saturated the event buffer")
	}
	cancel()

	select {
	case <-provider.done:
	case <-time.After(2 * time.Second):
		t.Fatal("provider stream was abandoned mid-send")
	}

	evs := collect(t, events)
	require.NotEmpty(t, evs)
	terminal, ok := evs[len(evs)-1].(TurnError)
	require.True(t, ok)
	assert.ErrorIs(t, terminal.Err, context.Canceled)
}

func TestRunToolFailureContinuesTurn(t *testing.T) {
	call := llm.ToolCall{Id: "call_f", Name: "web_search", Arguments: json.RawMessage(`{}`)}
	provider := &scriptedProvider{
		rounds: [][]llm.Chunk{
			{{ToolCall: &call}},
			{{Text: "answered without search"}},
		},
	}
	tool := &fakeTool{name: "web_search", err: errors.New("tool exploded")}
	rt := NewRuntime(provider, Config{}, nopLogger{}, tool)

	events := collect(t, rt.Run(context.Background(), nil))

	var result *ToolResult
	for _, ev := range events {
		if tr, ok := ev.(ToolResult); ok {
			result = &tr
		}
	}
	require.NotNil(t, result)
	assert.Contains(t, string(result.Output), "error")

	require.NotEmpty(t, events)
	_, ok := events[len(events)-1].(TurnEnd)
	assert.True(t, ok)

	// The second model call sees the error result as a tool message.
	require.Equal(t, 2, provider.calls)
	last := provider.lastSeen[len(provider.lastSeen)-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.Contains(t, last.Content, "error")
}
