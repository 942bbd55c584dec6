package agent

import "encoding/json"

// Event is the closed union of everything a turn can produce. The multiplexer
// switches exhaustively over these variants; adding one is a wire-protocol
// change.
type Event interface {
	isEvent()
}

// TextDelta carries a fragment of assistant text in model order.
type TextDelta struct {
	Text string
}

// ToolCallStart announces a tool invocation before its arguments are known
// downstream. Start always precedes ArgsComplete and Result for the same id.
type ToolCallStart struct {
	ToolCallId string
	ToolName   string
}

// ToolCallArgsComplete delivers the fully accumulated argument payload.
type ToolCallArgsComplete struct {
	ToolCallId string
	Args       json.RawMessage
}

// ToolResult delivers the tool's output for a previously started call.
type ToolResult struct {
	ToolCallId string
	ToolName   string
	Output     json.RawMessage
}

// TurnEnd is the success terminal. Exactly one of TurnEnd/TurnError closes
// every turn.
type TurnEnd struct{}

// TurnError is the failure terminal. Text already emitted is not retracted.
type TurnError struct {
	Err error
}

func (TextDelta) isEvent()            {}
func (ToolCallStart) isEvent()        {}
func (ToolCallArgsComplete) isEvent() {}
func (ToolResult) isEvent()           {}
func (TurnEnd) isEvent()              {}
func (TurnError) isEvent()            {}
