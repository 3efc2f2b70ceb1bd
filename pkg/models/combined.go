package models

import "time"

// CombinedAnalysis is a row in combined_analyses: one agent's aggregate
// analysis over a reporting period.
type CombinedAnalysis struct {
	ID                    int64     `db:"combined_analysis_id"`
	AgentID               int64     `db:"agent_id"`
	AnalysisPeriodNote    *string   `db:"analysis_period_note"`
	ReportsProvided       *int      `db:"number_of_reports_provided"`
	ReportsAnalyzed       *int      `db:"number_of_reports_successfully_analyzed"`
	SnapshotTotalCalls    *int      `db:"snapshot_total_calls_contributing"`
	SnapshotPositiveCount *int      `db:"snapshot_positive_count"`
	SnapshotNegativeCount *int      `db:"snapshot_negative_count"`
	SnapshotNeutralCount  *int      `db:"snapshot_neutral_count"`
	ProcessingDateTime    time.Time `db:"processing_datetime"`
}

// CoachingFocus is one coaching-focus group with its ordered actions.
type CoachingFocus struct {
	ID                 int64  `db:"coaching_focus_id"`
	CombinedAnalysisID int64  `db:"combined_analysis_id"`
	Area               string `db:"area_text"`
	Actions            []string
}

// QualityPointDetail is a row in combined_analysis_quality_point_details:
// per-category aggregate counts plus a trend observation.
type QualityPointDetail struct {
	CombinedAnalysisID int64   `db:"combined_analysis_id"`
	QualityPointID     int64   `db:"quality_point_id"`
	PositiveCount      *int    `db:"findings_summary_positive"`
	NegativeCount      *int    `db:"findings_summary_negative"`
	NeutralCount       *int    `db:"findings_summary_neutral"`
	TrendObservation   *string `db:"trend_observation"`
}
