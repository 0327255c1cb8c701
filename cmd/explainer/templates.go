// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/explainer/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the block templates",
	Long: `Templates prints the block palette: the built-in templates, or the
ones in the file given by --templates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("templates")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		catalog, err := templates.LoadOrDefault(path)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(catalog.Templates)
		}

		fmt.Fprintf(os.Stdout, "%-4s  %-12s  %s\n", "Icon", "Type", "Description")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 60))
		for _, t := range catalog.Templates {
			fmt.Fprintf(os.Stdout, "%-4s  %-12s  %s\n", t.Icon, t.Type, t.Description)
		}
		return nil
	},
}

func init() {
	templatesCmd.Flags().String("templates", "", "YAML file that replaces the built-in block templates")
	templatesCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(templatesCmd)
}
