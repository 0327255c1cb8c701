// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders a session document as JSON, YAML, Markdown or
// sanitized HTML. All functions are pure formatting over an
// ExportDocument.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/explainer/pkg/types"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

var sanitizer = bluemonday.UGCPolicy()

// Formats lists the supported export formats.
var Formats = []types.ExportFormat{types.ExportJSON, types.ExportYAML, types.ExportMarkdown, types.ExportHTML}

// ContentType returns the MIME type and file extension for format.
func ContentType(format types.ExportFormat) (mime, ext string, err error) {
	switch format {
	case types.ExportJSON:
		return "application/json", ".json", nil
	case types.ExportYAML:
		return "application/yaml", ".yaml", nil
	case types.ExportMarkdown:
		return "text/markdown; charset=utf-8", ".md", nil
	case types.ExportHTML:
		return "text/html; charset=utf-8", ".html", nil
	}
	return "", "", fmt.Errorf("unsupported export format %q", format)
}

// Write renders doc to w in format.
func Write(w io.Writer, format types.ExportFormat, doc types.ExportDocument) error {
	switch format {
	case types.ExportJSON:
		return JSON(w, doc)
	case types.ExportYAML:
		return YAML(w, doc)
	case types.ExportMarkdown:
		_, err := io.WriteString(w, Markdown(doc))
		return err
	case types.ExportHTML:
		html, err := HTML(doc)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// JSON writes doc as indented JSON.
func JSON(w io.Writer, doc types.ExportDocument) error {
	if doc.Structure == nil {
		doc.Structure = []types.Block{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ReadJSON parses a document written by JSON.
func ReadJSON(r io.Reader) (types.ExportDocument, error) {
	var doc types.ExportDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return types.ExportDocument{}, fmt.Errorf("decoding JSON export: %w", err)
	}
	return doc, nil
}

// YAML writes doc as YAML.
func YAML(w io.Writer, doc types.ExportDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// Markdown lists the structure as bullet items followed by the explanation.
func Markdown(doc types.ExportDocument) string {
	var b strings.Builder
	b.WriteString("# Explanation\n\n")
	if doc.Prompt != "" {
		fmt.Fprintf(&b, "**Prompt:** %s\n\n", doc.Prompt)
	}
	b.WriteString("## Structure\n\n")
	if len(doc.Structure) == 0 {
		b.WriteString("_No blocks._\n")
	}
	for _, blk := range doc.Structure {
		b.WriteString("- ")
		if blk.Icon != "" {
			b.WriteString(blk.Icon + " ")
		}
		fmt.Fprintf(&b, "**%s**: %s\n", blk.Type, blk.Description)
		if blk.FullText != "" {
			for _, line := range strings.Split(strings.TrimSpace(blk.FullText), "\n") {
				fmt.Fprintf(&b, "  > %s\n", line)
			}
		}
	}
	b.WriteString("\n## Result\n\n")
	if strings.TrimSpace(doc.Explanation) == "" {
		b.WriteString("_Nothing generated yet._\n")
	} else {
		b.WriteString(strings.TrimSpace(doc.Explanation) + "\n")
	}
	return b.String()
}

// HTML renders the Markdown export and strips anything unsafe.
func HTML(doc types.ExportDocument) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(doc)), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}
