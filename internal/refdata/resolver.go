// Package refdata resolves external identifiers (agent extensions, quality
// point labels) to store surrogate keys, creating reference rows on first
// sight. Resolution happens inside the calling document's transaction; the
// store's uniqueness constraints are the backstop against concurrent runs.
package refdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phoneqa/qaimport/internal/store"
	"github.com/phoneqa/qaimport/pkg/models"
)

// bonusMarker flags a quality point as bonus-scored when present in its
// label, case-insensitively.
const bonusMarker = "[BONUS]"

// ResolveAgent returns the surrogate key for the agent with the given
// extension, inserting a new row when none exists. Name and email of an
// existing agent are never reconciled. A lost insert race against a
// concurrent run is absorbed by retrying the lookup once.
func ResolveAgent(ctx context.Context, tx store.Tx, agent models.AgentDetails) (int64, error) {
	if agent.Name == "" || agent.Extension == "" {
		return 0, fmt.Errorf("agent details missing name or extension: %+v", agent)
	}

	id, err := tx.GetAgentByExtension(ctx, agent.Extension)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	id, err = tx.CreateAgent(ctx, agent)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, store.ErrDuplicateKey) {
		return 0, err
	}

	// Another run created this extension between our lookup and insert.
	// Keep ErrDuplicateKey as the sentinel if the retry still misses, so
	// callers classify this as a uniqueness race.
	id, err = tx.GetAgentByExtension(ctx, agent.Extension)
	if err != nil {
		return 0, fmt.Errorf("agent %q vanished after duplicate insert (%v): %w",
			agent.Extension, err, store.ErrDuplicateKey)
	}
	return id, nil
}

// ResolveQualityPoints maps raw quality point labels to surrogate keys,
// inserting master rows for labels never seen before. The result is keyed by
// the original labels as supplied; labels that fail to resolve are omitted.
// Blank labels are discarded and labels differing only by surrounding
// whitespace collapse to one row.
func ResolveQualityPoints(ctx context.Context, tx store.Tx, labels []string) (map[string]int64, error) {
	trimmed := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		trimmed = append(trimmed, t)
	}
	if len(trimmed) == 0 {
		return map[string]int64{}, nil
	}

	existing, err := tx.LookupQualityPoints(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	var missing []models.QualityPoint
	for _, t := range trimmed {
		if _, ok := existing[t]; !ok {
			missing = append(missing, models.QualityPoint{
				Text:    t,
				IsBonus: strings.Contains(strings.ToUpper(t), bonusMarker),
			})
		}
	}
	if len(missing) > 0 {
		if err := tx.InsertQualityPoints(ctx, missing); err != nil {
			return nil, err
		}
		existing, err = tx.LookupQualityPoints(ctx, trimmed)
		if err != nil {
			return nil, err
		}
	}

	result := make(map[string]int64, len(labels))
	for _, l := range labels {
		if id, ok := existing[strings.TrimSpace(l)]; ok {
			result[l] = id
		}
	}
	return result, nil
}
