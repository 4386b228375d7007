package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ragchat/internal/config"
	"ragchat/internal/embeddings"
	"ragchat/internal/llm"
	"ragchat/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `ragchat init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildEmbedder creates an embeddings.Embedder based on config.
// Shared by the serve and index commands.
func buildEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.Embedding.Provider
	if provider == "" {
		provider = cfg.LLM.Provider
	}
	model := cfg.Embedding.Model

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(model, 768, ""), nil
	default:
		// Groq has no embeddings endpoint; OpenAI serves all cloud
		// providers.
		apiKey := config.APIKey(config.ProviderOpenAI)
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required (used for embeddings when provider is %s)", provider)
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(model)), nil
	}
}

// buildProvider creates an LLM provider for the given model, wrapping
// it in a rate limiter when one is configured.
func buildProvider(cfg *config.Config, model string) (llm.Provider, error) {
	provider, err := llm.NewProviderFromEnv(string(cfg.LLM.Provider), model, cfg.LLM.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.RPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.LLM.RPM)
	}
	return provider, nil
}

// openVectorStore creates the chromem store and loads any persisted
// index from the data directory. A missing index is not an error; the
// store starts empty.
func openVectorStore(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder) (vectordb.Store, string, error) {
	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, "", fmt.Errorf("creating vector store: %w", err)
	}

	vectorDir := filepath.Join(cfg.DataDir, "vectordb")
	if _, err := os.Stat(vectorDir); err == nil {
		if err := store.Load(ctx, vectorDir); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load vector store from %s: %v\n", vectorDir, err)
		}
	}
	return store, vectorDir, nil
}
