package models

import "time"

// IndividualAnalysis is a row in individual_call_analyses: one scored call
// for one agent, stamped with the batch-wide processing timestamp.
type IndividualAnalysis struct {
	ID                    int64     `db:"analysis_id"`
	AgentID               int64     `db:"agent_id"`
	TechDispatcherNameRaw *string   `db:"tech_dispatcher_name_raw"`
	OriginalAudioFileName string    `db:"original_audio_file_name"`
	CallDuration          *string   `db:"call_duration"`
	ClientName            *string   `db:"client_name"`
	ClientFacilityCompany *string   `db:"client_facility_company"`
	TicketNumber          *string   `db:"ticket_number"`
	ClientCallbackNumber  *string   `db:"client_callback_number"`
	TicketStatusType      *string   `db:"ticket_status_type"`
	CallSubjectSummary    *string   `db:"call_subject_summary"`
	RemarksPositive       *string   `db:"concluding_remarks_positive"`
	RemarksNegative       *string   `db:"concluding_remarks_negative"`
	RemarksCoaching       *string   `db:"concluding_remarks_coaching"`
	ProcessingDateTime    time.Time `db:"processing_datetime"`
}

// EvaluationItem is a row in individual_evaluation_items.
type EvaluationItem struct {
	AnalysisID          int64   `db:"analysis_id"`
	QualityPointID      int64   `db:"quality_point_id"`
	Finding             *string `db:"finding"`
	ExplanationSnippets *string `db:"explanation_snippets"`
}
