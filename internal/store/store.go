package store

import (
	"context"
	"errors"

	"github.com/phoneqa/qaimport/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// WithinTx runs fn inside a single transaction. A nil return commits;
	// any error rolls back everything fn wrote.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// DailyAgentStats aggregates per-agent finding counts for the most
	// recent processing date. Returns ErrNotFound when the store holds no
	// individual analyses yet.
	DailyAgentStats(ctx context.Context) ([]*models.AgentDailyStat, error)
}

// Tx is the write surface available inside one document's transaction.
type Tx interface {
	GetAgentByExtension(ctx context.Context, extension string) (int64, error)
	CreateAgent(ctx context.Context, agent models.AgentDetails) (int64, error)

	LookupQualityPoints(ctx context.Context, texts []string) (map[string]int64, error)
	InsertQualityPoints(ctx context.Context, points []models.QualityPoint) error

	InsertIndividualAnalysis(ctx context.Context, a *models.IndividualAnalysis) (int64, error)
	InsertEvaluationItems(ctx context.Context, items []models.EvaluationItem) error

	InsertCombinedAnalysis(ctx context.Context, a *models.CombinedAnalysis) (int64, error)
	InsertStrengths(ctx context.Context, combinedID int64, strengths []string) error
	InsertDevelopmentAreas(ctx context.Context, combinedID int64, areas []string) error
	InsertCoachingFocus(ctx context.Context, combinedID int64, area string) (int64, error)
	InsertCoachingActions(ctx context.Context, focusID int64, actions []string) error
	InsertQualityPointDetails(ctx context.Context, details []models.QualityPointDetail) error
}
