// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/explainer/internal/export"
	"github.com/pdiddy/explainer/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render [export.json]",
	Short: "Convert a JSON export into Markdown, HTML or YAML",
	Long: `Render reads a JSON export downloaded from /api/session/export (or stdin
when no file is given) and writes it in another format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening export: %w", err)
		}
		defer f.Close()
		in = f
	}

	doc, err := export.ReadJSON(in)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, types.ExportFormat(format), doc); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d blocks)\n", outPath, len(doc.Structure))
	}
	return nil
}

func init() {
	renderCmd.Flags().String("format", "markdown", "output format: markdown, html, yaml or json")
	renderCmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")

	rootCmd.AddCommand(renderCmd)
}
