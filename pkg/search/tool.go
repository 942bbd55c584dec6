package search

import (
	"context"
	"encoding/json"

	"ai-chatspace-be/internal/pkg/logger"
	"ai-chatspace-be/pkg/llm"
)

const ToolName = "web_search"

type toolArgs struct {
	Query string `json:"query"`
}

// Output is what the model sees as the tool message content.
type Output struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// Tool exposes web search to the agent runtime. Failures never surface as
// errors: a broken search provider degrades to an empty result set so the
// model can answer from its own knowledge.
type Tool struct {
	client Client
	logger logger.ILogger
}

func NewTool(client Client, logger logger.ILogger) *Tool {
	return &Tool{client: client, logger: logger}
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        ToolName,
		Description: "Search the web for current information. Use this for questions about recent events, news, or anything that may have changed after your training data.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The search query.",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute runs a search for the model-provided arguments. The error return is
// always nil; malformed arguments and provider failures both yield an Output
// with empty Results.
func (t *Tool) Execute(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	var args toolArgs
	if err := json.Unmarshal(rawArgs, &args); err != nil {
		t.logger.Error("Search", "malformed tool arguments", map[string]interface{}{"error": err.Error()})
		return mustMarshalOutput(Output{Results: []Result{}}), nil
	}

	query := NormalizeQuery(args.Query)
	results, err := t.client.Search(ctx, query)
	if err != nil {
		t.logger.Error("Search", "search request failed", map[string]interface{}{"query": query, "error": err.Error()})
		return mustMarshalOutput(Output{Query: query, Results: []Result{}}), nil
	}
	if results == nil {
		results = []Result{}
	}

	return mustMarshalOutput(Output{Query: query, Results: results}), nil
}

func mustMarshalOutput(out Output) json.RawMessage {
	data, err := json.Marshal(out)
	if err != nil {
		return json.RawMessage(`{"query":"","results":[]}`)
	}
	return data
}
