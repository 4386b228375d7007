package llm

import (
	"fmt"
	"os"
)

// NewProviderFromEnv creates a new LLM provider based on the given
// provider type and model, resolving API keys from the environment.
// Supported provider types: "groq", "openai", "ollama".
func NewProviderFromEnv(providerType string, model string, baseURL string) (Provider, error) {
	switch providerType {
	case "groq":
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable is not set")
		}
		if baseURL != "" {
			return NewCompatProvider("groq", apiKey, baseURL, model), nil
		}
		return NewGroqProvider(apiKey, model), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		if baseURL != "" {
			return NewCompatProvider("openai", apiKey, baseURL, model), nil
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "ollama":
		host := baseURL
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
