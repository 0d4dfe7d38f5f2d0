package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helixml/discuss"
	"github.com/helixml/discuss/internal/log"
)

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve Neovim on stdin/stdout",
		Long: `Serve a Neovim job over msgpack-RPC on stdin/stdout.

Start it from the editor with jobstart(['discuss'], {'rpc': v:true}).
Logs go to the log file because stdout carries RPC frames.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *envFile)
		},
	}
}

func runServe(ctx context.Context, envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}

	logger, logFile, err := log.NewFileLogger(cfg)
	if err != nil {
		return err
	}
	log.SetDefaultLogger(logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	attrs := []any{slog.String("version", version)}
	for _, a := range cfg.LogAttrs() {
		attrs = append(attrs, a)
	}
	logger.InfoContext(ctx, "starting discuss", attrs...)

	client, err := discuss.New(
		discuss.WithConfig(cfg),
		discuss.WithLogger(logger.Slog()),
		discuss.WithCloser(logFile),
	)
	if err != nil {
		logger.Error("failed to open comment store", slog.String("error", err.Error()))
		_ = logFile.Close()
		return fmt.Errorf("create discuss client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	err = client.Serve(ctx, os.Stdin, os.Stdout)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutting down")
		return nil
	case err != nil:
		logger.Error("serve failed", slog.String("error", err.Error()))
	}
	return err
}
