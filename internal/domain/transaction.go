// Package domain defines the core types and interfaces for Kestrel.
package domain

import (
	"errors"
	"time"
)

// Transaction is an immutable input record describing a single financial
// event to be risk-scored. Transaction IDs are caller-assigned and unique
// by contract.
type Transaction struct {
	TransactionID string `json:"transaction_id"`

	// Financial details
	Amount   float64 `json:"amount"`
	Merchant string  `json:"merchant"`
	Location string  `json:"location"`

	// Card present flag (false for online / card-not-present)
	CardPresent bool `json:"card_present"`

	// Number of transactions seen for this card in the last 24 hours.
	RecentTransactionCount int `json:"recent_transaction_count"`

	// Optional; scoring substitutes processing time into the rendered
	// prompt when zero, without mutating the record.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// Validation errors for incoming transactions.
var (
	ErrMissingTransactionID = errors.New("transaction_id is required")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrNegativeRecentCount  = errors.New("recent_transaction_count must not be negative")
)

// Validate enforces the transaction invariants at the API boundary.
// Transactions that fail validation never reach the scoring pipeline.
func (t *Transaction) Validate() error {
	if t.TransactionID == "" {
		return ErrMissingTransactionID
	}
	if t.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if t.RecentTransactionCount < 0 {
		return ErrNegativeRecentCount
	}
	return nil
}

// ScoreRequest is the API request payload for POST /score.
// Both the nested and the flat transaction format are accepted,
// matching the event payload shape.
type ScoreRequest struct {
	Transaction *Transaction `json:"transaction,omitempty"`

	// Flat format fields, used when Transaction is absent.
	TransactionID          string    `json:"transaction_id,omitempty"`
	Amount                 float64   `json:"amount,omitempty"`
	Merchant               string    `json:"merchant,omitempty"`
	Location               string    `json:"location,omitempty"`
	CardPresent            bool      `json:"card_present,omitempty"`
	RecentTransactionCount int       `json:"recent_transaction_count,omitempty"`
	Timestamp              time.Time `json:"timestamp,omitzero"`
}

// ToTransaction normalizes the request into a Transaction value.
func (r *ScoreRequest) ToTransaction() Transaction {
	if r.Transaction != nil {
		return *r.Transaction
	}
	return Transaction{
		TransactionID:          r.TransactionID,
		Amount:                 r.Amount,
		Merchant:               r.Merchant,
		Location:               r.Location,
		CardPresent:            r.CardPresent,
		RecentTransactionCount: r.RecentTransactionCount,
		Timestamp:              r.Timestamp,
	}
}

// ScoreResponse is the API response for POST /score.
type ScoreResponse struct {
	TransactionID string  `json:"transaction_id"`
	RiskScore     float64 `json:"risk_score"`
	RiskLevel     string  `json:"risk_level"`
	Explanation   string  `json:"explanation"`
	LatencyMs     float64 `json:"latency_ms"`
	Timestamp     string  `json:"timestamp"`
}
