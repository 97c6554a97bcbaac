// Package worker provides async transaction scoring from the event bus.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/scoring"
)

// Worker scores transactions published to the transaction topic. It is
// the event-triggered entry into the same pipeline the HTTP handler
// uses; duplicate deliveries are absorbed by the store's idempotent
// upsert.
type Worker struct {
	bus    domain.EventBus
	scorer *scoring.Scorer

	subscriptions []domain.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
	logger        *slog.Logger
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, scorer *scoring.Scorer) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		scorer: scorer,
		ctx:    ctx,
		cancel: cancel,
		logger: slog.With("component", "worker"),
	}
}

// Start subscribes to the transaction topic and begins processing.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicTransactionSubmitted, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	w.logger.Info("worker started", "topic", domain.TopicTransactionSubmitted)
	return nil
}

// Stop unsubscribes and stops processing. In-flight messages finish
// through the scorer's own cancellation checkpointing.
func (w *Worker) Stop() {
	for _, sub := range w.subscriptions {
		_ = sub.Unsubscribe()
	}
	w.subscriptions = nil
	w.cancel()

	w.logger.Info("worker stopped")
}

func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	start := time.Now()

	var tx domain.Transaction
	if err := json.Unmarshal(msg.Payload, &tx); err != nil {
		w.logger.Error("failed to parse transaction message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	if err := tx.Validate(); err != nil {
		w.logger.Error("invalid transaction message dropped",
			"message_id", msg.ID,
			"transaction_id", tx.TransactionID,
			"error", err,
		)
		// Malformed messages are not retryable; drop.
		return nil
	}

	result, err := w.scorer.Score(ctx, tx)
	if err != nil {
		w.logger.Error("async scoring failed",
			"transaction_id", tx.TransactionID,
			"error", err,
		)
		return err
	}

	w.logger.Debug("async transaction scored",
		"transaction_id", result.TransactionID,
		"risk_level", result.RiskLevel,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
