package generator

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSampleProfiles(t *testing.T) {
	g := New(42)

	t.Run("Fraud", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			s := g.Sample(true)

			if !s.IsFraud {
				t.Fatal("expected fraud label")
			}
			if s.CardPresent {
				t.Error("fraud samples are card-not-present")
			}
			if s.RecentTransactionCount < 5 || s.RecentTransactionCount > 20 {
				t.Errorf("fraud recent count out of range: %d", s.RecentTransactionCount)
			}
			largeAmount := s.Amount >= 500 && s.Amount <= 5000
			microAmount := s.Amount >= 0.01 && s.Amount <= 1.0
			if !largeAmount && !microAmount {
				t.Errorf("fraud amount outside both profiles: %v", s.Amount)
			}
			switch s.Merchant {
			case "UNKNOWN_MERCHANT", "FOREIGN_SITE", "CRYPTO_EXCHANGE":
			default:
				t.Errorf("unexpected fraud merchant: %s", s.Merchant)
			}
		}
	})

	t.Run("Normal", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			s := g.Sample(false)

			if s.IsFraud {
				t.Fatal("expected normal label")
			}
			if s.Amount < 5 || s.Amount > 200 {
				t.Errorf("normal amount out of range: %v", s.Amount)
			}
			if s.RecentTransactionCount < 0 || s.RecentTransactionCount > 3 {
				t.Errorf("normal recent count out of range: %d", s.RecentTransactionCount)
			}
		}
	})

	t.Run("CommonFields", func(t *testing.T) {
		s := g.Sample(false)
		if !strings.HasPrefix(s.TransactionID, "TXN") {
			t.Errorf("unexpected transaction id: %s", s.TransactionID)
		}
		if s.Confidence < 0.85 || s.Confidence > 0.99 {
			t.Errorf("confidence out of range: %v", s.Confidence)
		}
		if err := s.Validate(); err != nil {
			t.Errorf("generated sample failed validation: %v", err)
		}
	})
}

func TestDataset(t *testing.T) {
	g := New(7)

	samples := g.Dataset(1000, 0.05)
	if len(samples) != 1000 {
		t.Fatalf("expected 1000 samples, got %d", len(samples))
	}

	var frauds int
	for _, s := range samples {
		if s.IsFraud {
			frauds++
		}
	}
	if frauds != 50 {
		t.Errorf("expected 50 frauds at 5%% ratio, got %d", frauds)
	}
}

func TestDatasetDeterministic(t *testing.T) {
	a := New(123).Dataset(100, 0.1)
	b := New(123).Dataset(100, 0.1)

	for i := range a {
		if a[i].TransactionID != b[i].TransactionID || a[i].Amount != b[i].Amount {
			t.Fatalf("same seed produced different datasets at index %d", i)
		}
	}

	c := New(124).Dataset(100, 0.1)
	same := true
	for i := range a {
		if a[i].TransactionID != c[i].TransactionID {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical datasets")
	}
}

func TestToRFTRecord(t *testing.T) {
	g := New(42)
	s := g.Sample(true)

	rec, err := ToRFTRecord(s)
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	if !strings.Contains(rec.Prompt, "Analyze this transaction for fraud:") {
		t.Error("prompt missing header")
	}
	if !strings.Contains(rec.Prompt, s.Merchant) {
		t.Error("prompt missing merchant")
	}

	var completion map[string]interface{}
	if err := json.Unmarshal([]byte(rec.Completion), &completion); err != nil {
		t.Fatalf("completion is not valid JSON: %v", err)
	}
	if completion["is_fraud"] != true {
		t.Errorf("expected is_fraud true, got %v", completion["is_fraud"])
	}

	if rec.Reward != 1.0 {
		t.Errorf("expected reward 1.0, got %v", rec.Reward)
	}
}
