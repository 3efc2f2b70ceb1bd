// Package main is the entrypoint for the qaimport CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "qaimport",
		Short:         "Load QA analysis documents into the relational store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newStatsCmd(), newMigrateCmd())

	if err := root.Execute(); err != nil {
		slog.Error("qaimport failed", "error", err)
		os.Exit(1)
	}
}
