// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads provider API keys kept outside the config file.
// Each key is one file in .secrets/, named after the key.
//
// Recognised files: anthropic-api-key (claude) and gemini-api-key (gemini).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/explainer/pkg/types"
)

// Key file names.
const (
	AnthropicAPIKey = "anthropic-api-key"
	GeminiAPIKey    = "gemini-api-key"
)

// Load returns the non-empty files of dir keyed by filename, values trimmed.
// Dotfiles and subdirectories are skipped. A missing dir yields an empty
// map; a file that cannot be read is reported on stderr and left out.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// KeyFor names the key file that holds the API key for provider. The http
// provider needs no key and yields "".
func KeyFor(provider types.Provider) string {
	switch provider {
	case types.ProviderClaude, "":
		return AnthropicAPIKey
	case types.ProviderGemini:
		return GeminiAPIKey
	}
	return ""
}
