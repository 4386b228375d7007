package config

// defaultModels maps each provider to its chat and condenser models.
// The condenser model handles summarization and reformulation, where a
// smaller model keeps latency and cost down.
var defaultModels = map[ProviderType]struct {
	Chat      string
	Condenser string
	Embedding string
}{
	ProviderGroq:   {Chat: "llama-3.3-70b-versatile", Condenser: "llama-3.1-8b-instant", Embedding: "text-embedding-3-small"},
	ProviderOpenAI: {Chat: "gpt-4o", Condenser: "gpt-4o-mini", Embedding: "text-embedding-3-small"},
	ProviderOllama: {Chat: "llama3", Condenser: "llama3", Embedding: "nomic-embed-text"},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	models := defaultModels[ProviderGroq]
	return &Config{
		Server: ServerConfig{
			Port:     8000,
			AllowAll: true,
		},
		DataDir: "data",
		LLM: LLMConfig{
			Provider:       ProviderGroq,
			Model:          models.Chat,
			CondenserModel: models.Condenser,
			Temperature:    0.2,
			RPM:            60,
		},
		Embedding: EmbeddingConfig{
			Provider: ProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		Retrieval: RetrievalConfig{
			TopK:            2,
			WikipediaTopK:   3,
			WikipediaMaxLen: 4000,
			ChunkSize:       1000,
			ChunkOverlap:    200,
		},
		Chat: ChatConfig{
			HistoryLimit:      10,
			SessionTTLMinutes: 0,
		},
		Auth: AuthConfig{
			TokenTTLMins: 60 * 24,
		},
		Log: LogConfig{
			File: "logs/ragchat.log",
		},
	}
}

// DefaultModelsFor returns the default chat, condenser and embedding
// models for the given provider. Falls back to the Groq defaults for an
// unknown provider.
func DefaultModelsFor(provider ProviderType) (chat, condenser, embedding string) {
	m, ok := defaultModels[provider]
	if !ok {
		m = defaultModels[ProviderGroq]
	}
	return m.Chat, m.Condenser, m.Embedding
}
