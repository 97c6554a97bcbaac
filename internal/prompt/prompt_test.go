package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func TestBuild(t *testing.T) {
	ts := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	tx := domain.Transaction{
		TransactionID:          "TXN100001",
		Amount:                 4500,
		Merchant:               "CRYPTO_EXCHANGE",
		Location:               "Foreign Country",
		CardPresent:            false,
		RecentTransactionCount: 12,
		Timestamp:              ts,
	}

	got := Build(tx, time.Now().UTC())

	for _, want := range []string{
		"Amount: $4500",
		"Merchant: CRYPTO_EXCHANGE",
		"Location: Foreign Country",
		"Card Present: false",
		"Time: 2025-06-01T14:30:00Z",
		"Recent transactions (24h): 12",
		"Format: Score: X.XX - Explanation",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestBuildSubstitutesProcessingTime(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	tx := domain.Transaction{
		TransactionID: "TXN100002",
		Amount:        19.99,
		Merchant:      "Starbucks",
		Location:      "Chicago",
	}

	got := Build(tx, now)

	if !strings.Contains(got, "Time: 2025-06-02T09:00:00Z") {
		t.Errorf("expected processing time in prompt, got:\n%s", got)
	}

	// Substitution is text-only.
	if !tx.Timestamp.IsZero() {
		t.Error("transaction timestamp must not be mutated")
	}
}
