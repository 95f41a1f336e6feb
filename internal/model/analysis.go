package model

import "time"

// Analysis is a persisted record of one coordination run: the bill that was
// analyzed plus the final numbers, kept as per-user history.
type Analysis struct {
	ID        string         `json:"id"`
	PolicyID  string         `json:"policy_id"`
	Region    string         `json:"region"`
	Bill      BillRecord     `json:"bill"`
	Result    AnalysisResult `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
}
