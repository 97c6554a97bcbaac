package alert

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/opensource-finance/kestrel/internal/bus"
	"github.com/opensource-finance/kestrel/internal/domain"
)

func TestPublisher(t *testing.T) {
	eventBus := bus.NewChannelBus(10)
	defer eventBus.Close()

	ctx := context.Background()

	received := make(chan *domain.Message, 1)
	_, err := eventBus.Subscribe(ctx, domain.TopicFraudAlert, func(ctx context.Context, msg *domain.Message) error {
		received <- msg
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	pub := NewPublisher(eventBus)

	alertIn := domain.FraudAlert{
		TransactionID: "tx-high-001",
		RiskScore:     0.91,
		Amount:        4500,
		Merchant:      "CRYPTO_EXCHANGE",
	}

	if err := pub.Publish(ctx, alertIn); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-received:
		var alertOut domain.FraudAlert
		if err := json.Unmarshal(msg.Payload, &alertOut); err != nil {
			t.Fatalf("failed to unmarshal alert payload: %v", err)
		}

		if alertOut.TransactionID != alertIn.TransactionID {
			t.Errorf("expected transaction_id %q, got %q", alertIn.TransactionID, alertOut.TransactionID)
		}
		if alertOut.RiskScore != alertIn.RiskScore {
			t.Errorf("expected risk_score %v, got %v", alertIn.RiskScore, alertOut.RiskScore)
		}
		if alertOut.Amount != alertIn.Amount {
			t.Errorf("expected amount %v, got %v", alertIn.Amount, alertOut.Amount)
		}
		if alertOut.Merchant != alertIn.Merchant {
			t.Errorf("expected merchant %q, got %q", alertIn.Merchant, alertOut.Merchant)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for alert")
	}
}

func TestPublisherClosedBus(t *testing.T) {
	eventBus := bus.NewChannelBus(10)
	eventBus.Close()

	pub := NewPublisher(eventBus)

	err := pub.Publish(context.Background(), domain.FraudAlert{
		TransactionID: "tx-closed",
		RiskScore:     0.95,
	})
	if err == nil {
		t.Error("expected error publishing on closed bus")
	}
}
