package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the transport default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "explainer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Provider identifies the text-generation backend.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
	// ProviderHTTP forwards prompts to another explainer server's /api/explain.
	ProviderHTTP Provider = "http"
)

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the length of a generated answer (default 1024).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// GenerationConfig holds settings for the generation collaborator.
type GenerationConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// Provider selects the backend: claude, gemini, or http.
	Provider Provider `json:"provider" yaml:"provider"`

	// BaseURL is the server root used by the http provider
	// (e.g. "http://localhost:3001").
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// CacheSize is the number of prompt/output pairs kept in memory.
	// Zero disables the cache.
	CacheSize int `json:"cache_size" yaml:"cache_size"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (default ":3001").
	Addr string `json:"addr" yaml:"addr"`

	// TemplatesFile is an optional YAML file that replaces the built-in
	// block templates.
	TemplatesFile string `json:"templates_file,omitempty" yaml:"templates_file,omitempty"`
}

// ExportFormat selects an export rendering.
type ExportFormat string

const (
	ExportJSON     ExportFormat = "json"
	ExportYAML     ExportFormat = "yaml"
	ExportMarkdown ExportFormat = "markdown"
	ExportHTML     ExportFormat = "html"
)

// Config groups all settings read from explainer.yaml.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
}
