package worker

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/opensource-finance/kestrel/internal/bus"
	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/inference"
	"github.com/opensource-finance/kestrel/internal/scoring"
	"github.com/opensource-finance/kestrel/internal/store"
)

func newTestWorker(t *testing.T, stubResponse string) (*Worker, *bus.ChannelBus, domain.RecordStore) {
	t.Helper()

	records, err := store.New(domain.StoreConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "worker.db"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { records.Close() })

	eventBus := bus.NewChannelBus(100)
	t.Cleanup(func() { eventBus.Close() })

	stub := inference.NewStub("stub-model", stubResponse)
	scorer := scoring.New(stub, records, nil, nil)

	w := NewWorker(eventBus, scorer)
	return w, eventBus, records
}

func waitForRecord(t *testing.T, records domain.RecordStore, txID string) *domain.ScoreRecord {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := records.GetScore(context.Background(), txID)
		if err == nil {
			return rec
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for record %s", txID)
	return nil
}

func TestWorkerScoresSubmittedTransactions(t *testing.T) {
	w, eventBus, records := newTestWorker(t, "Score: 0.88 - Unusual merchant and high velocity")

	if err := w.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer w.Stop()

	time.Sleep(10 * time.Millisecond)

	payload, _ := json.Marshal(domain.Transaction{
		TransactionID:          "tx-async-001",
		Amount:                 900,
		Merchant:               "UNKNOWN_MERCHANT",
		RecentTransactionCount: 9,
	})
	if err := eventBus.Publish(context.Background(), domain.TopicTransactionSubmitted, payload); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	rec := waitForRecord(t, records, "tx-async-001")
	if rec.RiskScore != 0.88 {
		t.Errorf("expected risk_score 0.88, got %v", rec.RiskScore)
	}
	if rec.RiskLevel != domain.RiskHigh {
		t.Errorf("expected HIGH, got %s", rec.RiskLevel)
	}
	if !rec.Flagged {
		t.Error("expected record to be flagged")
	}
}

func TestWorkerDropsInvalidMessages(t *testing.T) {
	w, eventBus, records := newTestWorker(t, "Score: 0.10 - ok")

	if err := w.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer w.Stop()

	time.Sleep(10 * time.Millisecond)

	ctx := context.Background()

	// Missing amount fails validation and is dropped.
	bad, _ := json.Marshal(domain.Transaction{TransactionID: "tx-bad-001"})
	eventBus.Publish(ctx, domain.TopicTransactionSubmitted, bad)

	// A valid follow-up proves the worker survived.
	good, _ := json.Marshal(domain.Transaction{TransactionID: "tx-good-001", Amount: 15})
	eventBus.Publish(ctx, domain.TopicTransactionSubmitted, good)

	waitForRecord(t, records, "tx-good-001")

	if _, err := records.GetScore(ctx, "tx-bad-001"); err == nil {
		t.Error("invalid transaction should not have been scored")
	}
}

func TestWorkerStop(t *testing.T) {
	w, eventBus, records := newTestWorker(t, "Score: 0.10 - ok")

	if err := w.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	w.Stop()
	time.Sleep(10 * time.Millisecond)

	payload, _ := json.Marshal(domain.Transaction{TransactionID: "tx-after-stop", Amount: 10})
	eventBus.Publish(context.Background(), domain.TopicTransactionSubmitted, payload)

	time.Sleep(100 * time.Millisecond)

	if _, err := records.GetScore(context.Background(), "tx-after-stop"); err == nil {
		t.Error("no transactions should be scored after stop")
	}
}
