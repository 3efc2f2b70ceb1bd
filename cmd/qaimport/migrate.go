package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phoneqa/qaimport/internal/config"
	"github.com/phoneqa/qaimport/internal/store"
)

func newMigrateCmd() *cobra.Command {
	var dir string
	var down bool
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dir == "" {
				dir = cfg.Importer.MigrationsDir
			}
			if down {
				return store.RollbackMigrations(cfg.Database.URL, dir, steps)
			}
			return store.RunMigrations(cfg.Database.URL, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory")
	cmd.Flags().BoolVar(&down, "down", false, "roll back instead of applying")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps to roll back (0 = all)")
	return cmd
}
