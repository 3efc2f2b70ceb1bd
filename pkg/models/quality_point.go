package models

// Finding values recognized in evaluation items.
const (
	FindingPositive = "Positive"
	FindingNegative = "Negative"
	FindingNeutral  = "Neutral"
)

// QualityPoint is a row in the quality_points_master reference table.
// Text is unique and immutable; IsBonus is derived once at creation time.
type QualityPoint struct {
	ID      int64  `db:"quality_point_id"   json:"quality_point_id"`
	Text    string `db:"quality_point_text" json:"quality_point_text"`
	IsBonus bool   `db:"is_bonus"           json:"is_bonus"`
}
