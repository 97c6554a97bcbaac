// Package prompt renders transactions into model analysis prompts.
package prompt

import (
	"fmt"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

const template = `Analyze this financial transaction for risk indicators:

Transaction Details:
- Amount: $%v
- Merchant: %s
- Location: %s
- Card Present: %t
- Time: %s
- Recent transactions (24h): %d

Provide a risk score from 0.0 (safe) to 1.0 (suspicious) and brief explanation.
Format: Score: X.XX - Explanation`

// Build renders a transaction into the analysis prompt. When the
// transaction carries no timestamp, now is substituted into the
// rendered text only; the transaction itself is never mutated.
func Build(tx domain.Transaction, now time.Time) string {
	ts := tx.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return fmt.Sprintf(template,
		tx.Amount,
		tx.Merchant,
		tx.Location,
		tx.CardPresent,
		ts.Format(time.RFC3339),
		tx.RecentTransactionCount,
	)
}
