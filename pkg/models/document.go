package models

// JSON shapes of the two recognized input documents, as emitted by the
// upstream scoring process. Which shape applies is decided by filename
// convention, never by sniffing content.

// IndividualDocument is the per-call analysis file (*_analysis.json).
type IndividualDocument struct {
	CallSummary        CallSummary       `json:"call_summary"`
	DetailedEvaluation []EvaluationEntry `json:"detailed_evaluation"`
	ConcludingRemarks  ConcludingRemarks `json:"concluding_remarks"`
}

type CallSummary struct {
	TechDispatcherName    *string `json:"tech_dispatcher_name"`
	CallDuration          *string `json:"call_duration"`
	ClientName            *string `json:"client_name"`
	ClientFacilityCompany *string `json:"client_facility_company"`
	TicketNumber          *string `json:"ticket_number"`
	ClientCallbackNumber  *string `json:"client_callback_number"`
	TicketStatusType      *string `json:"ticket_status_type"`
	CallSubjectSummary    *string `json:"call_subject_summary"`
}

type EvaluationEntry struct {
	QualityPoint        string  `json:"quality_point"`
	Finding             *string `json:"finding"`
	ExplanationSnippets *string `json:"explanation_snippets"`
}

type ConcludingRemarks struct {
	SummaryPositiveFindings *string `json:"summary_positive_findings"`
	SummaryNegativeFindings *string `json:"summary_negative_findings"`
	CoachingPlanForGrowth   *string `json:"coaching_plan_for_growth"`
}

// CombinedDocument is the per-agent aggregate file
// (Combined_Analysis_Report.json).
type CombinedDocument struct {
	ReportHeader       ReportHeader         `json:"report_header"`
	Snapshot           PerformanceSnapshot  `json:"overall_performance_snapshot"`
	QualitativeSummary QualitativeSummary   `json:"qualitative_summary_and_coaching_plan"`
	QualityPointDetail []QualityPointResult `json:"detailed_quality_point_analysis"`
}

type ReportHeader struct {
	AnalysisPeriodNote *string `json:"analysis_period_note"`
	ReportsProvided    *int    `json:"number_of_reports_provided"`
	ReportsAnalyzed    *int    `json:"number_of_reports_successfully_analyzed"`
}

type PerformanceSnapshot struct {
	TotalCalls      *int          `json:"total_calls_contributing_to_aggregates"`
	AggregateCounts FindingCounts `json:"aggregate_findings_counts"`
}

type FindingCounts struct {
	PositiveCount *int `json:"positive_count"`
	NegativeCount *int `json:"negative_count"`
	NeutralCount  *int `json:"neutral_count"`
}

type QualitativeSummary struct {
	Strengths        []string            `json:"overall_strengths_observed"`
	DevelopmentAreas []string            `json:"overall_areas_for_development"`
	CoachingFocus    []CoachingFocusItem `json:"consolidated_coaching_focus"`
}

type CoachingFocusItem struct {
	Area            string   `json:"area"`
	SpecificActions []string `json:"specific_actions"`
}

type QualityPointResult struct {
	QualityPoint     string        `json:"quality_point"`
	FindingsSummary  FindingCounts `json:"findings_summary"`
	TrendObservation *string       `json:"trend_observation"`
}
