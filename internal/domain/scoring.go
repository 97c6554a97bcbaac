package domain

import "time"

// RiskLevel is the discrete classification of a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AlertThreshold is the score above which a fraud alert fires
// (strict comparison) and at which classification becomes HIGH
// (inclusive). The two uses deliberately share one constant.
const AlertThreshold = 0.8

// NeutralScore is substituted when inference fails or no score can be
// extracted from the model response.
const NeutralScore = 0.5

// FallbackExplanation is the explanation attached to a fallback result.
const FallbackExplanation = "Error during scoring"

// ScoringResult is the outcome of one orchestration run. Constructed
// once per scoring call and never mutated afterwards.
type ScoringResult struct {
	TransactionID string        `json:"transaction_id"`
	RiskScore     float64       `json:"risk_score"`
	RiskLevel     RiskLevel     `json:"risk_level"`
	Explanation   string        `json:"explanation"`
	Latency       time.Duration `json:"-"`

	// Fallback marks results produced by the degraded path after an
	// inference failure. Operational only, not part of the API surface.
	Fallback bool `json:"-"`
}

// Flagged reports whether the result exceeds the alert threshold.
func (r *ScoringResult) Flagged() bool {
	return r.RiskScore > AlertThreshold
}

// ScoreRecord is the durable projection of a ScoringResult plus its
// source Transaction, keyed by transaction ID. Re-scoring the same
// transaction overwrites the prior record (last-write-wins).
type ScoreRecord struct {
	TransactionID          string    `json:"transaction_id"`
	StoredAt               int64     `json:"timestamp"` // epoch seconds at write time
	Amount                 float64   `json:"amount"`
	Merchant               string    `json:"merchant"`
	Location               string    `json:"location"`
	CardPresent            bool      `json:"card_present"`
	RecentTransactionCount int       `json:"recent_transaction_count"`
	RiskScore              float64   `json:"risk_score"`
	RiskLevel              RiskLevel `json:"risk_level"`
	Explanation            string    `json:"explanation"`

	// Stored redundantly for cheap downstream filtering.
	Flagged bool `json:"flagged"`
}

// FraudAlert is the event published for high-risk outcomes.
type FraudAlert struct {
	TransactionID string  `json:"transaction_id"`
	RiskScore     float64 `json:"risk_score"`
	Amount        float64 `json:"amount"`
	Merchant      string  `json:"merchant"`
}
