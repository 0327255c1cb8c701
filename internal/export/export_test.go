// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/explainer/internal/chain"
	"github.com/pdiddy/explainer/pkg/types"
)

func sampleDoc() types.ExportDocument {
	return types.ExportDocument{
		Prompt: "What is entropy?",
		Structure: []types.Block{
			{ID: "1", Type: "Definition", Icon: "📘", Description: "Define entropy"},
			{ID: "2", Type: "Example+Analogy", Icon: "🔀", Description: chain.BlendDescription, FullText: "Ice melts.\nRooms get messy."},
		},
		Explanation: "Entropy measures how spread out energy is.",
	}
}

func TestJSONRoundTripMatchesLiveChain(t *testing.T) {
	s := chain.New()
	s.Add(types.MainChain, types.Template{Type: "Definition", Icon: "📘", Description: "Define it"})
	ex := s.Add(types.MainChain, types.Template{Type: "Example", Icon: "🧩", Description: "Show it"})
	s.Grow(ex.ID)
	s.Add(types.MainChain, types.Template{Type: "Claim", Icon: "📣", Description: "Assert it"})

	doc := types.ExportDocument{Prompt: "p", Structure: s.Main(), Explanation: "e"}
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, doc))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)

	live := s.Main()
	require.Len(t, got.Structure, len(live))
	for i := range live {
		assert.Equal(t, live[i].ID, got.Structure[i].ID)
		assert.Equal(t, live[i].Type, got.Structure[i].Type)
		assert.Equal(t, live[i].Description, got.Structure[i].Description)
	}
	assert.Equal(t, "p", got.Prompt)
	assert.Equal(t, "e", got.Explanation)
}

func TestJSONEmptyStructure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, types.ExportDocument{}))
	assert.Contains(t, buf.String(), `"structure": []`)
}

func TestReadJSONInvalid(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, sampleDoc()))

	var got types.ExportDocument
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleDoc(), got)
}

func TestMarkdown(t *testing.T) {
	got := Markdown(sampleDoc())

	assert.Contains(t, got, "**Prompt:** What is entropy?")
	assert.Contains(t, got, "- 📘 **Definition**: Define entropy\n")
	assert.Contains(t, got, "  > Ice melts.\n  > Rooms get messy.\n")
	assert.Contains(t, got, "## Result\n\nEntropy measures how spread out energy is.\n")
	assert.Less(t, strings.Index(got, "Definition"), strings.Index(got, "Example+Analogy"))
}

func TestMarkdownEmpty(t *testing.T) {
	got := Markdown(types.ExportDocument{})
	assert.Contains(t, got, "_No blocks._")
	assert.Contains(t, got, "_Nothing generated yet._")
	assert.NotContains(t, got, "**Prompt:**")
}

func TestHTMLIsSanitized(t *testing.T) {
	doc := sampleDoc()
	doc.Explanation = "Safe text <script>alert('x')</script> and **bold**."

	got, err := HTML(doc)
	require.NoError(t, err)

	assert.Contains(t, got, "<h1")
	assert.Contains(t, got, "<strong>bold</strong>")
	assert.NotContains(t, got, "<script>")
}

func TestWriteFormats(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, f, sampleDoc()))
			assert.NotEmpty(t, buf.String())

			mime, ext, err := ContentType(f)
			require.NoError(t, err)
			assert.NotEmpty(t, mime)
			assert.True(t, strings.HasPrefix(ext, "."))
		})
	}

	assert.Error(t, Write(&bytes.Buffer{}, "pdf", sampleDoc()))
	_, _, err := ContentType("pdf")
	assert.Error(t, err)
}
