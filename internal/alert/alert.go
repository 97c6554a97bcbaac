// Package alert publishes fraud alerts for high-risk scoring outcomes.
package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Publisher emits FraudAlert events onto the event bus. Downstream
// consumers (case management, notification fan-out) subscribe to the
// alert topic; delivery is at-least-once.
type Publisher struct {
	bus    domain.EventBus
	logger *slog.Logger
}

// NewPublisher creates a publisher backed by the given event bus.
func NewPublisher(bus domain.EventBus) *Publisher {
	return &Publisher{
		bus:    bus,
		logger: slog.With("component", "alert"),
	}
}

// Publish sends a fraud alert to the alert topic.
func (p *Publisher) Publish(ctx context.Context, a domain.FraudAlert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	if err := p.bus.Publish(ctx, domain.TopicFraudAlert, payload); err != nil {
		return fmt.Errorf("failed to publish alert for %s: %w", a.TransactionID, err)
	}

	p.logger.Info("fraud alert published",
		"transaction_id", a.TransactionID,
		"risk_score", a.RiskScore,
		"amount", a.Amount,
		"merchant", a.Merchant,
	)

	return nil
}
