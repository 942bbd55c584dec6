package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ai-chatspace-be/internal/pkg/logger"
	"ai-chatspace-be/pkg/agent"
)

const (
	FrameTextDelta     = "text-delta"
	FrameToolCallStart = "tool-call-start"
	FrameToolCallArgs  = "tool-call-args"
	FrameToolResult    = "tool-result"
	FrameFinish        = "finish"
	FrameError         = "error"
)

// Frame is the wire shape of one server-sent event.
type Frame struct {
	Type       string          `json:"type"`
	Text       string          `json:"text,omitempty"`
	ToolCallId string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// FrameWriter is the client side of the stream. A *bufio.Writer from
// fasthttp's body stream satisfies it.
type FrameWriter interface {
	io.Writer
	Flush() error
}

// CompletionFunc receives the full accumulated assistant text and the
// terminal error, if any. It runs after the event stream is exhausted,
// whether or not the client is still connected.
type CompletionFunc func(text string, turnErr error)

// Multiplexer fans one turn's event stream out to the SSE client and to the
// completion callback. A failed client write detaches the client but never
// stops event consumption, so persistence does not depend on the connection
// surviving the turn.
type Multiplexer struct {
	logger logger.ILogger
}

func NewMultiplexer(log logger.ILogger) *Multiplexer {
	return &Multiplexer{logger: log}
}

// Pump blocks until the event channel closes, then invokes onComplete exactly
// once. It returns true if the client received the whole stream.
func (m *Multiplexer) Pump(events <-chan agent.Event, w FrameWriter, onComplete CompletionFunc) bool {
	var text strings.Builder
	var turnErr error
	clientGone := false

	send := func(f Frame) {
		if clientGone {
			return
		}
		if err := writeFrame(w, f); err != nil {
			clientGone = true
			m.logger.Warn("Stream", "client disconnected mid-turn", map[string]interface{}{"error": err.Error()})
		}
	}

	for ev := range events {
		switch e := ev.(type) {
		case agent.TextDelta:
			text.WriteString(e.Text)
			send(Frame{Type: FrameTextDelta, Text: e.Text})
		case agent.ToolCallStart:
			send(Frame{Type: FrameToolCallStart, ToolCallId: e.ToolCallId, ToolName: e.ToolName})
		case agent.ToolCallArgsComplete:
			send(Frame{Type: FrameToolCallArgs, ToolCallId: e.ToolCallId, Args: e.Args})
		case agent.ToolResult:
			send(Frame{Type: FrameToolResult, ToolCallId: e.ToolCallId, ToolName: e.ToolName, Output: e.Output})
		case agent.TurnEnd:
			send(Frame{Type: FrameFinish})
		case agent.TurnError:
			turnErr = e.Err
			send(Frame{Type: FrameError, Message: "the assistant failed to respond"})
		}
	}

	if onComplete != nil {
		onComplete(text.String(), turnErr)
	}

	return !clientGone
}

func writeFrame(w FrameWriter, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
