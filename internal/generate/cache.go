// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached remembers recent successful generations keyed by prompt.
// Failures are never cached.
type Cached struct {
	next  Generator
	cache *lru.Cache[string, string]
}

// NewCached wraps next with an LRU cache holding up to size entries.
func NewCached(next Generator, size int) (*Cached, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating generation cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

// Generate returns the cached output for prompt or calls the wrapped generator.
func (c *Cached) Generate(ctx context.Context, prompt string) (string, error) {
	if out, ok := c.cache.Get(prompt); ok {
		return out, nil
	}
	out, err := c.next.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.cache.Add(prompt, out)
	return out, nil
}

// Len returns the number of cached prompts.
func (c *Cached) Len() int {
	return c.cache.Len()
}
