// Package scoring coordinates the risk scoring pipeline: prompt
// construction, inference, score extraction, classification, and the
// persistence/alerting/metrics side effects.
package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/inference"
	"github.com/opensource-finance/kestrel/internal/prompt"
	"github.com/opensource-finance/kestrel/internal/score"
)

// AlertSink publishes fraud alerts. Best-effort from the scorer's
// point of view.
type AlertSink interface {
	Publish(ctx context.Context, alert domain.FraudAlert) error
}

// MetricsSink records per-request samples. Never fails a request.
type MetricsSink interface {
	ObserveScoring(result *domain.ScoringResult)
}

// Scorer runs the scoring pipeline for one transaction at a time.
// Instances hold no per-request state and are safe for concurrent use.
type Scorer struct {
	inference inference.Client
	store     domain.RecordStore
	alerts    AlertSink
	metrics   MetricsSink
	logger    *slog.Logger
}

// New creates a scorer. The store is required; alerts and metrics may
// be nil, in which case those side effects are skipped.
func New(client inference.Client, store domain.RecordStore, alerts AlertSink, metrics MetricsSink) *Scorer {
	return &Scorer{
		inference: client,
		store:     store,
		alerts:    alerts,
		metrics:   metrics,
		logger:    slog.Default().With("component", "scorer"),
	}
}

// Score runs the full pipeline for a single transaction and returns
// the scoring result. Inference and extraction failures degrade to the
// neutral fallback and never fail the call; only a persistence failure
// is returned as an error. The caller sees either a complete result or
// an error, never both.
func (s *Scorer) Score(ctx context.Context, tx domain.Transaction) (*domain.ScoringResult, error) {
	start := time.Now()

	// 1. Build prompt
	p := prompt.Build(tx, start.UTC())

	// 2. Invoke inference; degrade to the fallback result on failure.
	var (
		riskScore   float64
		explanation string
		fallback    bool
	)

	text, err := s.inference.Complete(ctx, p)
	if err != nil {
		s.logger.Warn("inference failed, using fallback result",
			"transaction_id", tx.TransactionID,
			"model_id", s.inference.ModelID(),
			"error", err,
		)
		riskScore = domain.NeutralScore
		explanation = domain.FallbackExplanation
		fallback = true
	} else {
		// 3. Extract score; neutral default when no number is found.
		value, found := score.Extract(text)
		if !found {
			s.logger.Debug("no score in model response, using neutral default",
				"transaction_id", tx.TransactionID,
			)
			value = domain.NeutralScore
		}
		riskScore = value
		explanation = text
	}

	// 4. Classify
	level := score.Level(riskScore)

	// Caller-initiated cancellation aborts here, before persistence.
	// Once persistence is initiated the call runs to completion so
	// external state never ends up half-written.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sideCtx := context.WithoutCancel(ctx)

	// 5. Persist. The only fatal path in the pipeline.
	rec := &domain.ScoreRecord{
		TransactionID:          tx.TransactionID,
		StoredAt:               time.Now().Unix(),
		Amount:                 tx.Amount,
		Merchant:               tx.Merchant,
		Location:               tx.Location,
		CardPresent:            tx.CardPresent,
		RecentTransactionCount: tx.RecentTransactionCount,
		RiskScore:              riskScore,
		RiskLevel:              level,
		Explanation:            explanation,
		Flagged:                riskScore > domain.AlertThreshold,
	}
	if err := s.store.PutScore(sideCtx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist score for %s: %w", tx.TransactionID, err)
	}

	// 6. Alert after the record is durable, so an alert never
	// references an unrecorded transaction. Best-effort.
	if s.alerts != nil && riskScore > domain.AlertThreshold {
		alert := domain.FraudAlert{
			TransactionID: tx.TransactionID,
			RiskScore:     riskScore,
			Amount:        tx.Amount,
			Merchant:      tx.Merchant,
		}
		if err := s.alerts.Publish(sideCtx, alert); err != nil {
			s.logger.Error("failed to publish fraud alert",
				"transaction_id", tx.TransactionID,
				"risk_score", riskScore,
				"error", err,
			)
		}
	}

	result := &domain.ScoringResult{
		TransactionID: tx.TransactionID,
		RiskScore:     riskScore,
		RiskLevel:     level,
		Explanation:   explanation,
		Latency:       time.Since(start),
		Fallback:      fallback,
	}

	// 7. Metrics, always best-effort.
	if s.metrics != nil {
		s.metrics.ObserveScoring(result)
	}

	s.logger.Info("transaction scored",
		"transaction_id", tx.TransactionID,
		"risk_score", riskScore,
		"risk_level", level,
		"flagged", rec.Flagged,
		"fallback", fallback,
		"duration_ms", result.Latency.Milliseconds(),
	)

	return result, nil
}
