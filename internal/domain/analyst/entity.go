package analyst

import "time"

// AnalysisID identifier type
type AnalysisID string

// Kind tells which completion flow produced a record.
type Kind string

const (
	KindSamples  Kind = "samples"
	KindDietPlan Kind = "diet_plan"
)

// Status enum
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Analysis is one completion round-trip kept for auditing and the history screen.
type Analysis struct {
	ID          AnalysisID `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Kind        Kind       `json:"kind"`
	Status      Status     `json:"status"`
	SampleCount int        `json:"sample_count"`
	Species     string     `json:"species,omitempty"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	ReportURL   string     `json:"report_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
