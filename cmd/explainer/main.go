// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the explainer CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/explainer/internal/secrets"
	"github.com/pdiddy/explainer/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the explainer CLI.
var rootCmd = &cobra.Command{
	Use:   "explainer",
	Short: "Build explanations from chains of typed blocks",
	Long: `explainer assembles explanation blocks (definitions, examples, analogies,
claims, custom notes) into a main chain and nested branches, and asks a
language model to turn the active chain into a finished explanation.

serve runs the HTTP API used by the browser editor. generate produces a
one-shot explanation from the command line, and render converts an
exported session into Markdown, HTML or YAML.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./explainer.yaml or ~/.config/explainer/config.yaml)")

	// Generation flags are shared by serve and generate.
	rootCmd.PersistentFlags().String("provider", "claude", "generation backend: claude, gemini or http")
	rootCmd.PersistentFlags().String("model", "", "AI model identifier (default depends on provider)")
	rootCmd.PersistentFlags().String("base-url", "", "explainer server root for the http provider")
	rootCmd.PersistentFlags().Int("max-tokens", 1024, "maximum tokens per generated answer")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP timeout for generation calls (0 = none)")
	rootCmd.PersistentFlags().Int("cache-size", 0, "number of prompt/output pairs to cache (0 = off)")

	viper.BindPFlag("generation.provider", rootCmd.PersistentFlags().Lookup("provider"))
	viper.BindPFlag("generation.model", rootCmd.PersistentFlags().Lookup("model"))
	viper.BindPFlag("generation.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("generation.max_tokens", rootCmd.PersistentFlags().Lookup("max-tokens"))
	viper.BindPFlag("generation.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("generation.cache_size", rootCmd.PersistentFlags().Lookup("cache-size"))
}

func initConfig() {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded .env")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("explainer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "explainer"))
		}
	}

	viper.SetEnvPrefix("EXPLAINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// generationConfig assembles the generation settings from flags, config
// file, environment and .secrets/, in that order of precedence.
func generationConfig() types.GenerationConfig {
	provider := types.Provider(viper.GetString("generation.provider"))
	return types.GenerationConfig{
		AIConfig: types.AIConfig{
			Model:     viper.GetString("generation.model"),
			APIKey:    secretDefault(secrets.KeyFor(provider), viper.GetString("generation.api_key")),
			MaxTokens: viper.GetInt("generation.max_tokens"),
		},
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("generation.timeout"),
			UserAgent: "explainer/" + version,
		},
		Provider:  provider,
		BaseURL:   viper.GetString("generation.base_url"),
		CacheSize: viper.GetInt("generation.cache_size"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
