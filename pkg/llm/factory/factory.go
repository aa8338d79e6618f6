package factory

import (
	"fmt"

	"ai-marketplace-be/pkg/llm"
	"ai-marketplace-be/pkg/llm/ollama"
	"ai-marketplace-be/pkg/llm/openai"
)

// NewLLMProvider creates the configured LLM backend.
func NewLLMProvider(providerName, modelName, ollamaBaseURL, openAIKey string) (llm.LLMProvider, error) {
	switch providerName {
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai provider selected but OPENAI_API_KEY is empty")
		}
		return openai.NewOpenAIProvider(openAIKey, modelName), nil

	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", providerName)
	}
}
