// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate reaches the text-generation collaborator. Every backend
// satisfies Generator, so the session controller and the HTTP server never
// depend on a particular provider and tests can supply a mock.
package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/explainer/pkg/types"
)

// ErrEmptyOutput is returned when a backend answers without any text.
var ErrEmptyOutput = errors.New("generator returned empty output")

// Generator turns a prompt into generated text. A call either returns
// text or fails; there are no partial results.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

const (
	defaultClaudeModel = "claude-sonnet-4-5-20250929"
	defaultGeminiModel = "gemini-2.5-flash"
	defaultMaxTokens   = 1024
)

// New builds the generator selected by cfg.Provider, wrapped in an LRU
// cache when cfg.CacheSize is positive. client is used by the HTTP based
// backends; nil builds one from cfg.Timeout.
func New(ctx context.Context, cfg types.GenerationConfig, client *http.Client) (Generator, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var g Generator
	switch types.Provider(strings.ToLower(string(cfg.Provider))) {
	case types.ProviderClaude, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("claude provider: API key required (set generation.api_key or .secrets/%s)", "anthropic-api-key")
		}
		model := cfg.Model
		if model == "" {
			model = defaultClaudeModel
		}
		g = &ClaudeBackend{
			APIKey:    cfg.APIKey,
			Model:     model,
			MaxTokens: maxTokens,
			UserAgent: cfg.UserAgent,
			Client:    client,
		}
	case types.ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider: API key required (set generation.api_key or .secrets/%s)", "gemini-api-key")
		}
		model := cfg.Model
		if model == "" {
			model = defaultGeminiModel
		}
		gb, err := NewGeminiBackend(ctx, GeminiOptions{
			APIKey: cfg.APIKey,
			Model:  model,
			Client: client,
		})
		if err != nil {
			return nil, err
		}
		g = gb
	case types.ProviderHTTP:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("http provider: base_url required")
		}
		g = &HTTPClient{BaseURL: cfg.BaseURL, UserAgent: cfg.UserAgent, Client: client}
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}

	if cfg.CacheSize > 0 {
		cached, err := NewCached(g, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		g = cached
	}
	return g, nil
}
