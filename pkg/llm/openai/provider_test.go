package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chatspace-be/pkg/llm"
)

func TestCompletedToolCallsSparseIndices(t *testing.T) {
	pending := map[int]*llm.ToolCall{
		3: {Id: "call_c", Name: "web_search", Arguments: json.RawMessage(`{"query":"c"}`)},
		0: {Id: "call_a", Name: "web_search", Arguments: json.RawMessage(`{"query":"a"}`)},
		7: {Id: "call_b", Name: "web_search", Arguments: json.RawMessage(`{"query":"b"}`)},
	}

	calls := completedToolCalls(pending)

	require.Len(t, calls, 3)
	assert.Equal(t, "call_a", calls[0].Id)
	assert.Equal(t, "call_c", calls[1].Id)
	assert.Equal(t, "call_b", calls[2].Id)
}

func TestCompletedToolCallsSkipsPartials(t *testing.T) {
	pending := map[int]*llm.ToolCall{
		0: {Id: "call_a", Name: "web_search"},
		1: {Id: "call_noname"},
		2: {Name: "orphan_args"},
		3: nil,
	}

	calls := completedToolCalls(pending)

	require.Len(t, calls, 1)
	assert.Equal(t, "call_a", calls[0].Id)
}
