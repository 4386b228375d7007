package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderGroq   ProviderType = "groq"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level ragchat configuration, corresponding to .ragchat.yml.
type Config struct {
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	DataDir   string          `yaml:"data_dir" koanf:"data_dir"`
	LLM       LLMConfig       `yaml:"llm" koanf:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Chat      ChatConfig      `yaml:"chat" koanf:"chat"`
	Auth      AuthConfig      `yaml:"auth" koanf:"auth"`
	Log       LogConfig       `yaml:"log" koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LLMConfig selects the chat-completion backend. CondenserModel is the
// (typically smaller) model used for history summarization and question
// reformulation; Model answers the user's question.
type LLMConfig struct {
	Provider       ProviderType `yaml:"provider" koanf:"provider"`
	Model          string       `yaml:"model" koanf:"model"`
	CondenserModel string       `yaml:"condenser_model" koanf:"condenser_model"`
	BaseURL        string       `yaml:"base_url" koanf:"base_url"`
	Temperature    float64      `yaml:"temperature" koanf:"temperature"`
	RPM            int          `yaml:"rpm" koanf:"rpm"`
}

// EmbeddingConfig selects the embedding backend for the document index.
type EmbeddingConfig struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
}

// RetrievalConfig controls both retriever variants.
type RetrievalConfig struct {
	TopK            int `yaml:"top_k" koanf:"top_k"`
	WikipediaTopK   int `yaml:"wikipedia_top_k" koanf:"wikipedia_top_k"`
	WikipediaMaxLen int `yaml:"wikipedia_max_len" koanf:"wikipedia_max_len"`
	ChunkSize       int `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap    int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
}

// ChatConfig controls conversational state.
type ChatConfig struct {
	HistoryLimit int `yaml:"history_limit" koanf:"history_limit"`
	// SessionTTLMinutes expires idle sessions; 0 keeps them until
	// explicitly cleared.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" koanf:"session_ttl_minutes"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret    string `yaml:"jwt_secret" koanf:"jwt_secret"`
	TokenTTLMins int    `yaml:"token_ttl_minutes" koanf:"token_ttl_minutes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	File  string `yaml:"file" koanf:"file"`
	Debug bool   `yaml:"debug" koanf:"debug"`
}
