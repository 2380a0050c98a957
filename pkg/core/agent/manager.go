// Package agent maps pipeline roles to configured model providers. Which
// model handles extraction versus embedding is configuration, not code.
package agent

import (
	"fmt"

	"ppm_extraction/pkg/core/llm"
)

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider"` // Optional override
	Model       string `yaml:"model"`    // Optional model override
	Description string `yaml:"description"`
}

// Manager resolves the provider and embedder for each pipeline role
// ("extraction", "embedding") from the loaded configuration.
type Manager struct {
	config    Config
	providers map[string]llm.Provider
	embedders map[string]llm.Embedder
}

func NewManager(config Config) *Manager {
	// Model overrides only apply to the provider they were configured
	// for; a fallback provider uses its own default model.
	geminiExtraction := ""
	if config.providerFor("extraction") == "gemini" {
		geminiExtraction = config.ModelFor("extraction")
	}
	geminiEmbedding := ""
	if config.providerFor("embedding") == "gemini" {
		geminiEmbedding = config.ModelFor("embedding")
	}

	providers := map[string]llm.Provider{
		"gemini": &llm.GeminiProvider{Model: geminiExtraction},
	}
	embedders := map[string]llm.Embedder{
		"gemini": &llm.GeminiEmbedder{Model: geminiEmbedding},
	}

	openaiExtraction := ""
	if config.providerFor("extraction") == "openai" {
		openaiExtraction = config.ModelFor("extraction")
	}

	// OpenAI needs its key at construction time; register only when configured.
	if p, err := llm.NewOpenAIProviderFromEnv(openaiExtraction); err == nil {
		providers["openai"] = p
	}
	if e, err := llm.NewOpenAIEmbedderFromEnv(); err == nil {
		embedders["openai"] = e
	}

	return &Manager{
		config:    config,
		providers: providers,
		embedders: embedders,
	}
}

// ModelFor returns the configured model override for a role, or "".
func (c Config) ModelFor(role string) string {
	if agentConfig, ok := c.Agents[role]; ok {
		return agentConfig.Model
	}
	return ""
}

func (c Config) providerFor(role string) string {
	if agentConfig, ok := c.Agents[role]; ok && agentConfig.Provider != "" {
		return agentConfig.Provider
	}
	return c.ActiveProvider
}

// GetProvider resolves the LLM provider for a pipeline role, preferring the
// role's override, then the global active provider, then Gemini.
func (m *Manager) GetProvider(role string) llm.Provider {
	if p, ok := m.providers[m.config.providerFor(role)]; ok {
		return p
	}
	return m.providers["gemini"]
}

// GetEmbedder resolves the embedder the same way GetProvider does.
func (m *Manager) GetEmbedder(role string) llm.Embedder {
	if e, ok := m.embedders[m.config.providerFor(role)]; ok {
		return e
	}
	return m.embedders["gemini"]
}

// RegisterProvider adds or replaces a named provider. Callers can plug in
// deterministic stubs or providers constructed outside the manager.
func (m *Manager) RegisterProvider(name string, p llm.Provider) {
	m.providers[name] = p
}

// RegisterEmbedder adds or replaces a named embedder.
func (m *Manager) RegisterEmbedder(name string, e llm.Embedder) {
	m.embedders[name] = e
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	fmt.Printf("Global provider set to: %s\n", newProvider)
	return nil
}

func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}
