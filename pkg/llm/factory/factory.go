package factory

import (
	"fmt"
	"net/http"
	"strings"

	"concierge-be/pkg/llm"
	"concierge-be/pkg/llm/ollama"
	"concierge-be/pkg/llm/openai"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// NewLLMProvider builds the provider named by providerType. An empty type means openai.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, client *http.Client) (llm.Provider, error) {
	switch strings.ToLower(providerType) {
	case "", ProviderOpenAI:
		return openai.NewProvider(apiKey, baseURL, modelName, client), nil
	case ProviderOllama:
		p := ollama.NewProvider(baseURL, modelName)
		if client != nil {
			p.Client = client
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
