// Package stats computes per-agent finding aggregates for the most recent
// processing date, with optional Redis caching in front of the store.
package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/phoneqa/qaimport/internal/cache"
	"github.com/phoneqa/qaimport/internal/store"
	"github.com/phoneqa/qaimport/pkg/models"
)

type Service struct {
	store store.Store
	cache cache.Cache // nil disables caching
	ttl   time.Duration
	log   *slog.Logger
}

func NewService(s store.Store, c cache.Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{store: s, cache: c, ttl: ttl, log: log}
}

// Daily returns the per-agent stats for the latest processing date, serving
// from cache when fresh. Cache failures degrade to a store query.
func (s *Service) Daily(ctx context.Context) ([]*models.AgentDailyStat, error) {
	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, cache.DailyStatsKey)
		if err != nil {
			s.log.Warn("stats cache read failed", "error", err)
		} else if ok {
			var cached []*models.AgentDailyStat
			if err := json.Unmarshal(raw, &cached); err == nil && len(cached) > 0 {
				return cached, nil
			}
			s.log.Warn("stats cache entry unusable, recomputing")
		}
	}

	result, err := s.store.DailyAgentStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, cache.DailyStatsKey, raw, s.ttl); err != nil {
				s.log.Warn("stats cache write failed", "error", err)
			}
		}
	}
	return result, nil
}
