package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .ragchat.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to ragchat! Let's configure your backend.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. LLM provider.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"groq", "openai", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)
	chatModel, condenserModel, embeddingModel := DefaultModelsFor(provider)

	cfg.LLM.Provider = provider
	cfg.LLM.Model = chatModel
	cfg.LLM.CondenserModel = condenserModel
	if provider == ProviderOllama {
		cfg.Embedding.Provider = ProviderOllama
	}
	cfg.Embedding.Model = embeddingModel

	// 2. Chat model override.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: chatModel,
	}
	if model, err := modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	} else if model != "" {
		cfg.LLM.Model = model
	}

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 4. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory (database, uploads, vector index)",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	// Check for API keys.
	for _, p := range []ProviderType{cfg.LLM.Provider, cfg.Embedding.Provider} {
		if envVar := APIKeyEnvVar(p); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: set %s in your environment before starting the server.\n", envVar)
		}
	}
	fmt.Println("Note: set RAGCHAT_AUTH__JWT_SECRET (or auth.jwt_secret) before enabling user accounts.")

	configPath := ".ragchat.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}
