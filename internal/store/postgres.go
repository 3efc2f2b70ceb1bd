package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phoneqa/qaimport/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithinTx runs fn inside a single transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgxTx{tx: tx})
	})
}

// pgxTx adapts a pgx transaction to the Tx interface.
type pgxTx struct {
	tx pgx.Tx
}

// --- Agents ---

func (t *pgxTx) GetAgentByExtension(ctx context.Context, extension string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`SELECT agent_id FROM agents WHERE extension = $1`, extension,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get agent by extension: %w", err)
	}
	return id, nil
}

func (t *pgxTx) CreateAgent(ctx context.Context, agent models.AgentDetails) (int64, error) {
	// Savepoint so a unique-violation here does not poison the enclosing
	// transaction; the resolver retries the lookup after a lost race.
	nested, err := t.tx.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin savepoint: %w", err)
	}

	var id int64
	err = nested.QueryRow(ctx,
		`INSERT INTO agents (agent_name, email_address, extension)
		 VALUES ($1, $2, $3) RETURNING agent_id`,
		agent.Name, agent.Email, agent.Extension,
	).Scan(&id)
	if err != nil {
		_ = nested.Rollback(ctx)
		if isDuplicateKeyError(err) {
			return 0, ErrDuplicateKey
		}
		return 0, fmt.Errorf("create agent: %w", err)
	}
	if err := nested.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit savepoint: %w", err)
	}
	return id, nil
}

// --- Quality points ---

func (t *pgxTx) LookupQualityPoints(ctx context.Context, texts []string) (map[string]int64, error) {
	result := make(map[string]int64, len(texts))
	if len(texts) == 0 {
		return result, nil
	}

	rows, err := t.tx.Query(ctx,
		`SELECT quality_point_text, quality_point_id
		 FROM quality_points_master WHERE quality_point_text = ANY($1)`, texts)
	if err != nil {
		return nil, fmt.Errorf("lookup quality points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var text string
		var id int64
		if err := rows.Scan(&text, &id); err != nil {
			return nil, fmt.Errorf("scan quality point: %w", err)
		}
		result[text] = id
	}
	return result, rows.Err()
}

func (t *pgxTx) InsertQualityPoints(ctx context.Context, points []models.QualityPoint) error {
	if len(points) == 0 {
		return nil
	}

	nested, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}

	b := &pgx.Batch{}
	for _, p := range points {
		b.Queue(`INSERT INTO quality_points_master (quality_point_text, is_bonus) VALUES ($1, $2)`,
			p.Text, p.IsBonus)
	}
	if err := execBatch(ctx, nested, b); err != nil {
		_ = nested.Rollback(ctx)
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert quality points: %w", err)
	}
	if err := nested.Commit(ctx); err != nil {
		return fmt.Errorf("commit savepoint: %w", err)
	}
	return nil
}

// --- Individual analyses ---

func (t *pgxTx) InsertIndividualAnalysis(ctx context.Context, a *models.IndividualAnalysis) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO individual_call_analyses (
		   agent_id, tech_dispatcher_name_raw, original_audio_file_name, call_duration,
		   client_name, client_facility_company, ticket_number, client_callback_number,
		   ticket_status_type, call_subject_summary, concluding_remarks_positive,
		   concluding_remarks_negative, concluding_remarks_coaching, processing_datetime)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING analysis_id`,
		a.AgentID, a.TechDispatcherNameRaw, a.OriginalAudioFileName, a.CallDuration,
		a.ClientName, a.ClientFacilityCompany, a.TicketNumber, a.ClientCallbackNumber,
		a.TicketStatusType, a.CallSubjectSummary, a.RemarksPositive,
		a.RemarksNegative, a.RemarksCoaching, a.ProcessingDateTime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert individual analysis: %w", err)
	}
	return id, nil
}

func (t *pgxTx) InsertEvaluationItems(ctx context.Context, items []models.EvaluationItem) error {
	if len(items) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, it := range items {
		b.Queue(`INSERT INTO individual_evaluation_items (analysis_id, quality_point_id, finding, explanation_snippets)
		         VALUES ($1, $2, $3, $4)`,
			it.AnalysisID, it.QualityPointID, it.Finding, it.ExplanationSnippets)
	}
	if err := execBatch(ctx, t.tx, b); err != nil {
		return fmt.Errorf("insert evaluation items: %w", err)
	}
	return nil
}

// --- Combined analyses ---

func (t *pgxTx) InsertCombinedAnalysis(ctx context.Context, a *models.CombinedAnalysis) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO combined_analyses (
		   agent_id, analysis_period_note, number_of_reports_provided,
		   number_of_reports_successfully_analyzed, snapshot_total_calls_contributing,
		   snapshot_positive_count, snapshot_negative_count, snapshot_neutral_count,
		   processing_datetime)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING combined_analysis_id`,
		a.AgentID, a.AnalysisPeriodNote, a.ReportsProvided, a.ReportsAnalyzed,
		a.SnapshotTotalCalls, a.SnapshotPositiveCount, a.SnapshotNegativeCount,
		a.SnapshotNeutralCount, a.ProcessingDateTime,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert combined analysis: %w", err)
	}
	return id, nil
}

func (t *pgxTx) InsertStrengths(ctx context.Context, combinedID int64, strengths []string) error {
	if len(strengths) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, s := range strengths {
		b.Queue(`INSERT INTO combined_analysis_strengths (combined_analysis_id, strength_text) VALUES ($1, $2)`,
			combinedID, s)
	}
	if err := execBatch(ctx, t.tx, b); err != nil {
		return fmt.Errorf("insert strengths: %w", err)
	}
	return nil
}

func (t *pgxTx) InsertDevelopmentAreas(ctx context.Context, combinedID int64, areas []string) error {
	if len(areas) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, a := range areas {
		b.Queue(`INSERT INTO combined_analysis_development_areas (combined_analysis_id, development_area_text) VALUES ($1, $2)`,
			combinedID, a)
	}
	if err := execBatch(ctx, t.tx, b); err != nil {
		return fmt.Errorf("insert development areas: %w", err)
	}
	return nil
}

func (t *pgxTx) InsertCoachingFocus(ctx context.Context, combinedID int64, area string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO combined_analysis_coaching_focus (combined_analysis_id, area_text)
		 VALUES ($1, $2) RETURNING coaching_focus_id`,
		combinedID, area,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert coaching focus: %w", err)
	}
	return id, nil
}

func (t *pgxTx) InsertCoachingActions(ctx context.Context, focusID int64, actions []string) error {
	if len(actions) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for i, a := range actions {
		b.Queue(`INSERT INTO combined_analysis_coaching_actions (coaching_focus_id, action_text, position) VALUES ($1, $2, $3)`,
			focusID, a, i+1)
	}
	if err := execBatch(ctx, t.tx, b); err != nil {
		return fmt.Errorf("insert coaching actions: %w", err)
	}
	return nil
}

func (t *pgxTx) InsertQualityPointDetails(ctx context.Context, details []models.QualityPointDetail) error {
	if len(details) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, d := range details {
		b.Queue(`INSERT INTO combined_analysis_quality_point_details (
		           combined_analysis_id, quality_point_id, findings_summary_positive,
		           findings_summary_negative, findings_summary_neutral, trend_observation)
		         VALUES ($1, $2, $3, $4, $5, $6)`,
			d.CombinedAnalysisID, d.QualityPointID, d.PositiveCount,
			d.NegativeCount, d.NeutralCount, d.TrendObservation)
	}
	if err := execBatch(ctx, t.tx, b); err != nil {
		return fmt.Errorf("insert quality point details: %w", err)
	}
	return nil
}

// --- Stats ---

func (s *PostgresStore) DailyAgentStats(ctx context.Context) ([]*models.AgentDailyStat, error) {
	rows, err := s.pool.Query(ctx,
		`WITH latest_date AS (
		   SELECT MAX(processing_datetime::date) AS max_date FROM individual_call_analyses
		 )
		 SELECT
		   a.agent_name,
		   COUNT(*) FILTER (WHERE iei.finding = 'Positive') AS positive_findings,
		   COUNT(*) FILTER (WHERE iei.finding = 'Negative') AS negative_findings,
		   COUNT(*) FILTER (WHERE iei.finding = 'Neutral')  AS neutral_findings,
		   COUNT(iei.finding) AS total_findings,
		   (
		     (COUNT(*) FILTER (WHERE iei.finding = 'Positive')
		      + COUNT(*) FILTER (WHERE iei.finding = 'Neutral') / 2.0)
		     / NULLIF(COUNT(iei.finding), 0)
		   ) * 100 AS score_percentage,
		   (SELECT max_date FROM latest_date) AS report_date
		 FROM individual_evaluation_items iei
		 JOIN individual_call_analyses ica ON iei.analysis_id = ica.analysis_id
		 JOIN agents a ON ica.agent_id = a.agent_id
		 WHERE ica.processing_datetime::date = (SELECT max_date FROM latest_date)
		 GROUP BY a.agent_name
		 HAVING COUNT(iei.finding) > 0
		 ORDER BY a.agent_name`)
	if err != nil {
		return nil, fmt.Errorf("daily agent stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.AgentDailyStat
	for rows.Next() {
		var st models.AgentDailyStat
		if err := rows.Scan(&st.AgentName, &st.PositiveCount, &st.NegativeCount,
			&st.NeutralCount, &st.TotalFindings, &st.ScorePercentage, &st.ReportDate); err != nil {
			return nil, fmt.Errorf("scan agent stat: %w", err)
		}
		stats = append(stats, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, ErrNotFound
	}
	return stats, nil
}

// execBatch sends a queued batch over tx and surfaces the first error.
func execBatch(ctx context.Context, tx pgx.Tx, b *pgx.Batch) error {
	br := tx.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	return br.Close()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
