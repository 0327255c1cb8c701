// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/internal/server"
	"github.com/pdiddy/explainer/internal/session"
	"github.com/pdiddy/explainer/internal/templates"
	"github.com/pdiddy/explainer/pkg/types"
)

// shutdownGrace bounds how long in-flight requests may run after a signal.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the explainer HTTP API",
	Long: `Serve starts the HTTP API used by the browser editor. It exposes the
generation pass-through at /api/explain and one in-memory editing session
under /api/session. Session state is lost when the server stops.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := types.ServerConfig{
		Addr:          viper.GetString("server.addr"),
		TemplatesFile: viper.GetString("server.templates_file"),
	}

	gen, err := generate.New(ctx, generationConfig(), nil)
	if err != nil {
		return err
	}

	catalog, err := templates.LoadOrDefault(cfg.TemplatesFile)
	if err != nil {
		return err
	}

	sess, err := session.New(gen, session.WithCatalog(catalog), session.WithLog(os.Stderr))
	if err != nil {
		return err
	}
	defer sess.Close()

	srv := server.New(cfg.Addr, server.NewMux(server.NewHandler(gen, sess)))

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(os.Stderr, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errc
}

func init() {
	serveCmd.Flags().String("addr", ":3001", "listen address")
	serveCmd.Flags().String("templates", "", "YAML file that replaces the built-in block templates")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("server.templates_file", serveCmd.Flags().Lookup("templates"))

	rootCmd.AddCommand(serveCmd)
}
