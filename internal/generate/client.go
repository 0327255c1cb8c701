// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/explainer/internal/httputil"
)

// ExplainPath is the route served by the explainer server for generation.
const ExplainPath = "/api/explain"

// ExplainRequest is the body of POST /api/explain.
type ExplainRequest struct {
	Prompt string `json:"prompt"`
}

// ExplainResponse is the success body of POST /api/explain.
type ExplainResponse struct {
	Output string `json:"output"`
}

// HTTPClient calls an explainer server's /api/explain endpoint. Non-2xx
// responses, malformed bodies and empty output are all failures.
type HTTPClient struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// Generate posts prompt and returns the server's output.
func (c *HTTPClient) Generate(ctx context.Context, prompt string) (string, error) {
	var header http.Header
	if c.UserAgent != "" {
		header = http.Header{}
		header.Set("User-Agent", c.UserAgent)
	}

	url := strings.TrimRight(c.BaseURL, "/") + ExplainPath
	var resp ExplainResponse
	if err := httputil.PostJSON(ctx, c.Client, url, header, ExplainRequest{Prompt: prompt}, &resp); err != nil {
		return "", fmt.Errorf("calling %s: %w", url, err)
	}
	if strings.TrimSpace(resp.Output) == "" {
		return "", ErrEmptyOutput
	}
	return resp.Output, nil
}
