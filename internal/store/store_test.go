package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phoneqa/qaimport/internal/store"
	"github.com/phoneqa/qaimport/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("qaimport_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func testAgentDetails(ext string) models.AgentDetails {
	return models.AgentDetails{
		Name:      "Agent " + ext,
		Email:     strp("agent" + ext + "@example.com"),
		Extension: ext,
	}
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n)
	require.NoError(t, err)
	return n
}

// --- Agent Tests ---

func TestAgent_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	var created, fetched int64
	err := s.WithinTx(ctx, func(tx store.Tx) error {
		var err error
		created, err = tx.CreateAgent(ctx, testAgentDetails("1001"))
		if err != nil {
			return err
		}
		fetched, err = tx.GetAgentByExtension(ctx, "1001")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
	assert.NotZero(t, created)
}

func TestAgent_GetNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		_, err := tx.GetAgentByExtension(ctx, "9999")
		return err
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAgent_DuplicateExtension(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		if _, err := tx.CreateAgent(ctx, testAgentDetails("1001")); err != nil {
			return err
		}
		_, err := tx.CreateAgent(ctx, testAgentDetails("1001"))
		if !errors.Is(err, store.ErrDuplicateKey) {
			return err
		}
		// The failed insert must not poison the transaction: the lookup
		// afterwards still works, and the commit goes through.
		_, err = tx.GetAgentByExtension(ctx, "1001")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, pool, "agents"))
}

// --- Quality Point Tests ---

func TestQualityPoints_InsertAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		err := tx.InsertQualityPoints(ctx, []models.QualityPoint{
			{Text: "Greeting"},
			{Text: "[BONUS] Upsell Attempt", IsBonus: true},
		})
		if err != nil {
			return err
		}
		found, err := tx.LookupQualityPoints(ctx, []string{"Greeting", "[BONUS] Upsell Attempt", "Unknown"})
		if err != nil {
			return err
		}
		assert.Len(t, found, 2)
		assert.Contains(t, found, "Greeting")
		assert.Contains(t, found, "[BONUS] Upsell Attempt")
		return nil
	})
	require.NoError(t, err)

	var isBonus bool
	err = pool.QueryRow(ctx,
		`SELECT is_bonus FROM quality_points_master WHERE quality_point_text = $1`,
		"[BONUS] Upsell Attempt").Scan(&isBonus)
	require.NoError(t, err)
	assert.True(t, isBonus)
}

func TestQualityPoints_DuplicateText(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertQualityPoints(ctx, []models.QualityPoint{{Text: "Greeting"}}); err != nil {
			return err
		}
		err := tx.InsertQualityPoints(ctx, []models.QualityPoint{{Text: "Greeting"}})
		if !errors.Is(err, store.ErrDuplicateKey) {
			return err
		}
		// Transaction survives the rejected insert.
		_, err = tx.LookupQualityPoints(ctx, []string{"Greeting"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, pool, "quality_points_master"))
}

func TestQualityPoints_LookupEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		found, err := tx.LookupQualityPoints(ctx, nil)
		if err != nil {
			return err
		}
		assert.Empty(t, found)
		return nil
	})
	require.NoError(t, err)
}

// --- Transaction Tests ---

func insertIndividualGraph(ctx context.Context, tx store.Tx, ext string, ts time.Time, findings []string) error {
	agentID, err := tx.CreateAgent(ctx, testAgentDetails(ext))
	if err != nil {
		return err
	}
	if err := tx.InsertQualityPoints(ctx, []models.QualityPoint{{Text: "QP for " + ext}}); err != nil {
		return err
	}
	qps, err := tx.LookupQualityPoints(ctx, []string{"QP for " + ext})
	if err != nil {
		return err
	}

	analysisID, err := tx.InsertIndividualAnalysis(ctx, &models.IndividualAnalysis{
		AgentID:               agentID,
		OriginalAudioFileName: "call_" + ext + ".wav",
		ClientName:            strp("Dana Smith"),
		TicketNumber:          strp("T-100"),
		ProcessingDateTime:    ts,
	})
	if err != nil {
		return err
	}

	items := make([]models.EvaluationItem, 0, len(findings))
	for _, f := range findings {
		items = append(items, models.EvaluationItem{
			AnalysisID:          analysisID,
			QualityPointID:      qps["QP for "+ext],
			Finding:             strp(f),
			ExplanationSnippets: strp("observed on call"),
		})
	}
	return tx.InsertEvaluationItems(ctx, items)
}

func TestWithinTx_IndividualCommit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	ts := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		return insertIndividualGraph(ctx, tx, "1001", ts, []string{"Positive", "Negative"})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, pool, "agents"))
	assert.Equal(t, 1, countRows(t, pool, "individual_call_analyses"))
	assert.Equal(t, 2, countRows(t, pool, "individual_evaluation_items"))
}

func TestWithinTx_RollbackLeavesNothing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	boom := errors.New("document invalid")
	err := s.WithinTx(ctx, func(tx store.Tx) error {
		if err := insertIndividualGraph(ctx, tx, "1001", time.Now().UTC(), []string{"Positive"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing survives the rollback, reference rows included.
	assert.Equal(t, 0, countRows(t, pool, "agents"))
	assert.Equal(t, 0, countRows(t, pool, "quality_points_master"))
	assert.Equal(t, 0, countRows(t, pool, "individual_call_analyses"))
	assert.Equal(t, 0, countRows(t, pool, "individual_evaluation_items"))
}

func TestWithinTx_CombinedCommit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	ts := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	err := s.WithinTx(ctx, func(tx store.Tx) error {
		agentID, err := tx.CreateAgent(ctx, testAgentDetails("1001"))
		if err != nil {
			return err
		}
		if err := tx.InsertQualityPoints(ctx, []models.QualityPoint{{Text: "Greeting"}}); err != nil {
			return err
		}
		qps, err := tx.LookupQualityPoints(ctx, []string{"Greeting"})
		if err != nil {
			return err
		}

		combinedID, err := tx.InsertCombinedAnalysis(ctx, &models.CombinedAnalysis{
			AgentID:               agentID,
			AnalysisPeriodNote:    strp("Week of 2024-06-09"),
			ReportsProvided:       intp(5),
			ReportsAnalyzed:       intp(4),
			SnapshotTotalCalls:    intp(4),
			SnapshotPositiveCount: intp(10),
			SnapshotNegativeCount: intp(3),
			SnapshotNeutralCount:  intp(2),
			ProcessingDateTime:    ts,
		})
		if err != nil {
			return err
		}

		if err := tx.InsertStrengths(ctx, combinedID, []string{"Empathy", "Product knowledge"}); err != nil {
			return err
		}
		if err := tx.InsertDevelopmentAreas(ctx, combinedID, []string{"Call control"}); err != nil {
			return err
		}
		focusID, err := tx.InsertCoachingFocus(ctx, combinedID, "Closing")
		if err != nil {
			return err
		}
		if err := tx.InsertCoachingActions(ctx, focusID, []string{"Summarize next steps", "Confirm callback"}); err != nil {
			return err
		}
		return tx.InsertQualityPointDetails(ctx, []models.QualityPointDetail{{
			CombinedAnalysisID: combinedID,
			QualityPointID:     qps["Greeting"],
			PositiveCount:      intp(4),
			NegativeCount:      intp(0),
			NeutralCount:       intp(0),
			TrendObservation:   strp("Consistently strong"),
		}})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, pool, "combined_analyses"))
	assert.Equal(t, 2, countRows(t, pool, "combined_analysis_strengths"))
	assert.Equal(t, 1, countRows(t, pool, "combined_analysis_development_areas"))
	assert.Equal(t, 1, countRows(t, pool, "combined_analysis_coaching_focus"))
	assert.Equal(t, 2, countRows(t, pool, "combined_analysis_coaching_actions"))
	assert.Equal(t, 1, countRows(t, pool, "combined_analysis_quality_point_details"))

	// Action ordering is preserved through the position column.
	var first string
	err = pool.QueryRow(ctx,
		`SELECT action_text FROM combined_analysis_coaching_actions ORDER BY position LIMIT 1`,
	).Scan(&first)
	require.NoError(t, err)
	assert.Equal(t, "Summarize next steps", first)
}

// --- Stats Tests ---

func TestDailyAgentStats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	older := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	latest := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	// Older data must not contribute to the report.
	err := s.WithinTx(ctx, func(tx store.Tx) error {
		return insertIndividualGraph(ctx, tx, "1001", older, []string{"Negative", "Negative"})
	})
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(tx store.Tx) error {
		agentID, err := tx.GetAgentByExtension(ctx, "1001")
		if err != nil {
			return err
		}
		qps, err := tx.LookupQualityPoints(ctx, []string{"QP for 1001"})
		if err != nil {
			return err
		}
		analysisID, err := tx.InsertIndividualAnalysis(ctx, &models.IndividualAnalysis{
			AgentID:               agentID,
			OriginalAudioFileName: "call_latest.wav",
			ProcessingDateTime:    latest,
		})
		if err != nil {
			return err
		}
		items := []models.EvaluationItem{}
		for _, f := range []string{"Positive", "Positive", "Neutral", "Negative"} {
			items = append(items, models.EvaluationItem{
				AnalysisID:     analysisID,
				QualityPointID: qps["QP for 1001"],
				Finding:        strp(f),
			})
		}
		return tx.InsertEvaluationItems(ctx, items)
	})
	require.NoError(t, err)

	stats, err := s.DailyAgentStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	st := stats[0]
	assert.Equal(t, "Agent 1001", st.AgentName)
	assert.Equal(t, 2, st.PositiveCount)
	assert.Equal(t, 1, st.NegativeCount)
	assert.Equal(t, 1, st.NeutralCount)
	assert.Equal(t, 4, st.TotalFindings)
	// (2 positive + 1 neutral / 2) / 4 findings = 62.5%
	assert.InDelta(t, 62.5, st.ScorePercentage, 0.001)
	assert.Equal(t, latest.Truncate(24*time.Hour), st.ReportDate.UTC())
}

func TestDailyAgentStats_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.DailyAgentStats(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Ping Test ---

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.Ping(context.Background())
	assert.NoError(t, err)
}
