package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phoneqa/qaimport/internal/cache"
	"github.com/phoneqa/qaimport/internal/config"
	"github.com/phoneqa/qaimport/internal/stats"
	"github.com/phoneqa/qaimport/internal/store"
)

func newStatsCmd() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-agent finding counts for the most recent analysis date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool, err := store.Connect(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			var c cache.Cache
			if cfg.Redis.URL != "" && !noCache {
				rc, err := cache.NewRedisCache(cfg.Redis.URL)
				if err != nil {
					return fmt.Errorf("create redis cache: %w", err)
				}
				defer rc.Close()
				c = rc
			}

			svc := stats.NewService(store.NewPostgresStore(pool), c, cfg.Redis.StatsTTL, slog.Default())
			result, err := svc.Daily(ctx)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "No analysis data found.")
				return nil
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Agent stats for %s\n", result[0].ReportDate.Format("2006-01-02"))
			fmt.Fprintln(w, "AGENT\tPOSITIVE\tNEGATIVE\tNEUTRAL\tTOTAL\tSCORE")
			for _, st := range result {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.1f%%\n",
					st.AgentName, st.PositiveCount, st.NegativeCount,
					st.NeutralCount, st.TotalFindings, st.ScorePercentage)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the stats cache")
	return cmd
}
