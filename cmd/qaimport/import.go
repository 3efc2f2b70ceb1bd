package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phoneqa/qaimport/internal/batch"
	"github.com/phoneqa/qaimport/internal/config"
	"github.com/phoneqa/qaimport/internal/importer"
	"github.com/phoneqa/qaimport/internal/roster"
	"github.com/phoneqa/qaimport/internal/store"
)

func newImportCmd() *cobra.Command {
	var sourceRoot string
	var rosterFile string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the most recent batch of analysis documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if sourceRoot != "" {
				cfg.Importer.SourceRoot = sourceRoot
			}
			if rosterFile != "" {
				cfg.Importer.RosterFile = rosterFile
			}
			if cfg.Importer.SourceRoot == "" {
				return fmt.Errorf("source root is required (--source-root or QAIMPORT_SOURCE_ROOT)")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool, err := store.Connect(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			if err := store.RunMigrations(cfg.Database.URL, cfg.Importer.MigrationsDir); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			members, err := roster.Load(cfg.Importer.RosterFile)
			if err != nil {
				return fmt.Errorf("load roster: %w", err)
			}
			slog.Info("roster loaded", "file", cfg.Importer.RosterFile, "members", len(members))

			pg := store.NewPostgresStore(pool)
			imp := importer.New(pg, slog.Default())
			drv := batch.NewDriver(imp, members, slog.Default())

			sum, err := drv.Run(ctx, cfg.Importer.SourceRoot)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Batch %s (%s)\n", filepath.Base(sum.BatchDir), sum.RunID)
			fmt.Fprintf(out, "  found: %d  stored: %d  failed: %d\n", sum.Found, sum.Stored, sum.Failed)
			for _, f := range sum.FailedFiles {
				fmt.Fprintf(out, "  failed: %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceRoot, "source-root", "", "directory holding the dated batch folders")
	cmd.Flags().StringVar(&rosterFile, "roster", "", "agents-by-extension roster file")
	return cmd
}
