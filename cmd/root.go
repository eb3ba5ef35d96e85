package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/satheeshds/invoicer/config"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoicing REST backend for the mobile and desktop apps",
	Long: `invoicer serves the invoicing API: invoices with their line items, the product
catalog, categories, user accounts and image uploads, backed by PostgreSQL.

Running it without a subcommand starts the HTTP server.`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the default logger it describes.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	return cfg, nil
}
