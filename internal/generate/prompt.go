// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/explainer/pkg/types"
)

// explanationPromptTmpl asks for an explanation that follows the block
// structure in order.
var explanationPromptTmpl = template.Must(template.New("explanation").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`You are an expert explainer. Write an explanation of the topic below.

Follow the structure exactly, one part per block, in the order given. Each block names its communicative role and what it should achieve.

Topic: {{.Prompt}}

Structure:
{{range $i, $b := .Blocks}}{{inc $i}}. {{$b.Type}}: {{$b.Description}}
{{end}}
Write flowing prose. Do not label the parts and do not add a preamble.
`))

// blendPromptTmpl asks for one passage that fuses two blocks.
var blendPromptTmpl = template.Must(template.New("blend").Parse(`Combine these two explanation blocks into a single coherent passage that achieves both intents at once.

Block A ({{.A.Type}}): {{.A.Description}}
Block B ({{.B.Type}}): {{.B.Description}}
{{if .A.FullText}}
Existing text for A:
{{.A.FullText}}
{{end}}{{if .B.FullText}}
Existing text for B:
{{.B.FullText}}
{{end}}
Respond with the passage only.
`))

// ExplanationPrompt renders the prompt sent for a chain of blocks.
func ExplanationPrompt(prompt string, blocks []types.Block) (string, error) {
	var buf bytes.Buffer
	err := explanationPromptTmpl.Execute(&buf, struct {
		Prompt string
		Blocks []types.Block
	}{Prompt: prompt, Blocks: blocks})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BlendPrompt renders the prompt that merges two blocks.
func BlendPrompt(a, b types.Block) (string, error) {
	var buf bytes.Buffer
	if err := blendPromptTmpl.Execute(&buf, struct{ A, B types.Block }{A: a, B: b}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
