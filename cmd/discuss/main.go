// Package main is the entry point for the discuss CLI.
//
// Run without a subcommand, discuss serves a Neovim job on stdin/stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixml/discuss/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "discuss",
		Short: "Line comments for Neovim",
		Long: `discuss keeps free-text comments on line ranges of files and shows them
in Neovim as signs. Without a subcommand it serves the editor on stdin/stdout.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file")

	cmd.AddCommand(serveCmd(&envFile))
	cmd.AddCommand(listCmd(&envFile))
	cmd.AddCommand(deleteCmd(&envFile))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
