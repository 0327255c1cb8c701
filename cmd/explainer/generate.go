// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/explainer/internal/export"
	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/internal/session"
	"github.com/pdiddy/explainer/internal/templates"
	"github.com/pdiddy/explainer/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate an explanation from a prompt and a list of block types",
	Long: `Generate builds a main chain from the --block types (in order), renders
the explanation prompt and prints the generated text. With --format the
whole session is written as an export document instead.

Use --provider http --base-url to route the call through a running
explainer server.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt, _ := cmd.Flags().GetString("prompt")
	if prompt == "" && len(args) > 0 {
		prompt = strings.Join(args, " ")
	}
	blocks, _ := cmd.Flags().GetStringSlice("block")
	tmplFile, _ := cmd.Flags().GetString("templates")
	format, _ := cmd.Flags().GetString("format")

	catalog, err := templates.LoadOrDefault(tmplFile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	gen, err := generate.New(ctx, generationConfig(), nil)
	if err != nil {
		return err
	}

	sess, err := session.New(gen,
		session.WithCatalog(catalog),
		session.WithLog(os.Stderr),
	)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.SetPrompt(prompt)
	for _, typ := range blocks {
		if _, err := sess.Add(types.MainChain, typ); err != nil {
			return err
		}
	}

	out, err := sess.Generate(ctx)
	if err != nil {
		return err
	}
	if out.Failed {
		return fmt.Errorf("generation failed: %s", out.Reason)
	}

	if format == "" {
		_, err := io.WriteString(os.Stdout, out.Output+"\n")
		return err
	}
	return export.Write(os.Stdout, types.ExportFormat(format), sess.Document())
}

func init() {
	generateCmd.Flags().String("prompt", "", "what to explain")
	generateCmd.Flags().StringSlice("block", []string{"Definition", "Example"}, "block types for the main chain, in order")
	generateCmd.Flags().String("templates", "", "YAML file that replaces the built-in block templates")
	generateCmd.Flags().String("format", "", "write an export document instead of plain text: json, yaml, markdown or html")

	rootCmd.AddCommand(generateCmd)
}
