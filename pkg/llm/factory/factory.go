package factory

import (
	"fmt"

	"ai-chatspace-be/pkg/llm"
	"ai-chatspace-be/pkg/llm/openai"
)

func NewProvider(providerType, apiKey, baseURL, modelName string) (llm.Provider, error) {
	switch providerType {
	case "openai", "openrouter":
		return openai.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
