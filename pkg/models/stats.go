package models

import "time"

// AgentDailyStat aggregates one agent's evaluation findings for the most
// recent processing date in the store.
type AgentDailyStat struct {
	AgentName       string    `json:"agent_name"`
	PositiveCount   int       `json:"positive_count"`
	NegativeCount   int       `json:"negative_count"`
	NeutralCount    int       `json:"neutral_count"`
	TotalFindings   int       `json:"total_findings"`
	ScorePercentage float64   `json:"score_percentage"`
	ReportDate      time.Time `json:"report_date"`
}
