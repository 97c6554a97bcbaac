// Package generator produces synthetic labeled transactions for the
// evaluation harness and for fine-tuning dataset exports.
package generator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

var (
	fraudMerchants  = []string{"UNKNOWN_MERCHANT", "FOREIGN_SITE", "CRYPTO_EXCHANGE"}
	fraudLocations  = []string{"Unknown", "Foreign Country", "High-risk Location"}
	normalMerchants = []string{"Amazon", "Walmart", "Starbucks", "Target", "Gas Station"}
	normalLocations = []string{"New York", "Los Angeles", "Chicago", "Houston"}
)

// Generator emits synthetic transactions from a seeded source, so the
// same seed reproduces the same dataset.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New creates a generator seeded deterministically.
func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now().UTC(),
	}
}

// Sample generates one labeled transaction. Fraud samples follow the
// fraud profile (large or micro amounts, risky merchants, card not
// present, rapid recent activity); normal samples look like everyday
// purchases.
func (g *Generator) Sample(isFraud bool) domain.EvaluationSample {
	baseTime := g.now.AddDate(0, 0, -g.rng.Intn(31))

	var (
		amount      float64
		merchant    string
		location    string
		cardPresent bool
		recentCount int
	)

	if isFraud {
		if g.rng.Intn(2) == 0 {
			amount = 500 + g.rng.Float64()*4500 // large amount
		} else {
			amount = 0.01 + g.rng.Float64()*0.99 // micro transaction
		}
		merchant = fraudMerchants[g.rng.Intn(len(fraudMerchants))]
		location = fraudLocations[g.rng.Intn(len(fraudLocations))]
		cardPresent = false
		recentCount = 5 + g.rng.Intn(16) // multiple rapid transactions
	} else {
		amount = 5 + g.rng.Float64()*195
		merchant = normalMerchants[g.rng.Intn(len(normalMerchants))]
		location = normalLocations[g.rng.Intn(len(normalLocations))]
		cardPresent = g.rng.Intn(2) == 0
		recentCount = g.rng.Intn(4)
	}

	return domain.EvaluationSample{
		Transaction: domain.Transaction{
			TransactionID:          fmt.Sprintf("TXN%06d", 100000+g.rng.Intn(900000)),
			Amount:                 round2(amount),
			Merchant:               merchant,
			Location:               location,
			CardPresent:            cardPresent,
			RecentTransactionCount: recentCount,
			Timestamp:              baseTime,
		},
		IsFraud:    isFraud,
		Confidence: 0.85 + g.rng.Float64()*0.14,
	}
}

// Dataset generates a shuffled dataset with the given class imbalance.
func (g *Generator) Dataset(numSamples int, fraudRatio float64) []domain.EvaluationSample {
	numFraud := int(float64(numSamples) * fraudRatio)

	samples := make([]domain.EvaluationSample, 0, numSamples)
	for i := 0; i < numFraud; i++ {
		samples = append(samples, g.Sample(true))
	}
	for i := numFraud; i < numSamples; i++ {
		samples = append(samples, g.Sample(false))
	}

	g.rng.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})

	return samples
}

// RFTRecord is one line of a reinforcement fine-tuning dataset export.
type RFTRecord struct {
	Prompt     string  `json:"prompt"`
	Completion string  `json:"completion"`
	Reward     float64 `json:"reward"`
}

// ToRFTRecord converts a labeled sample to the fine-tuning record
// shape: a fraud-analysis prompt, a JSON completion with the label and
// confidence, and a scalar reward.
func ToRFTRecord(s domain.EvaluationSample) (RFTRecord, error) {
	completion, err := json.Marshal(map[string]interface{}{
		"is_fraud":   s.IsFraud,
		"confidence": s.Confidence,
	})
	if err != nil {
		return RFTRecord{}, err
	}

	prompt := fmt.Sprintf(`Analyze this transaction for fraud:
Amount: $%.2f
Merchant: %s
Location: %s
Time: %s
Card Present: %t
Previous 24h transactions: %d

Is this transaction fraudulent? Provide confidence score.`,
		s.Amount, s.Merchant, s.Location, s.Timestamp.Format(time.RFC3339),
		s.CardPresent, s.RecentTransactionCount)

	return RFTRecord{
		Prompt:     prompt,
		Completion: string(completion),
		Reward:     1.0,
	}, nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
