// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package templates provides the catalog of block templates offered by the
// editor palette.
package templates

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/explainer/pkg/types"
)

// Defaults is the built-in palette.
var Defaults = []types.Template{
	{Type: "Definition", Icon: "📘", Description: "Define the core term in plain language"},
	{Type: "Example", Icon: "🧩", Description: "Ground the idea in a concrete example"},
	{Type: "Analogy", Icon: "🔗", Description: "Relate the idea to something familiar"},
	{Type: "Claim", Icon: "📣", Description: "State the key claim the reader should accept"},
	{Type: "Custom", Icon: "✏️", Description: "Describe your own communicative intent"},
}

// Catalog is an ordered set of templates addressable by type name.
type Catalog struct {
	Templates []types.Template `json:"templates" yaml:"templates"`
}

// Default returns a catalog holding a copy of Defaults.
func Default() *Catalog {
	c := &Catalog{Templates: make([]types.Template, len(Defaults))}
	copy(c.Templates, Defaults)
	return c
}

// Load reads a catalog from a YAML file of the form:
//
//	templates:
//	  - type: Definition
//	    icon: "📘"
//	    description: Define the core term
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	for i, t := range c.Templates {
		if strings.TrimSpace(t.Type) == "" {
			return nil, fmt.Errorf("template %d: empty type", i)
		}
	}
	if len(c.Templates) == 0 {
		return nil, fmt.Errorf("templates file %s lists no templates", path)
	}
	return &c, nil
}

// LoadOrDefault loads path when it is set, falling back to Default.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Lookup finds a template by type, ignoring case.
func (c *Catalog) Lookup(typ string) (types.Template, bool) {
	for _, t := range c.Templates {
		if strings.EqualFold(t.Type, typ) {
			return t, true
		}
	}
	return types.Template{}, false
}
