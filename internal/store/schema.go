package store

// Schema definitions for the Kestrel database.
// Compatible with both SQLite and PostgreSQL.

const schemaTransactionScores = `
CREATE TABLE IF NOT EXISTS transaction_scores (
    transaction_id TEXT PRIMARY KEY,
    stored_at BIGINT NOT NULL,
    amount REAL NOT NULL,
    merchant TEXT NOT NULL,
    location TEXT NOT NULL,
    card_present INTEGER NOT NULL DEFAULT 0,
    recent_tx_count INTEGER NOT NULL DEFAULT 0,
    risk_score REAL NOT NULL,
    risk_level TEXT NOT NULL,
    explanation TEXT,
    flagged INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_scores_stored_at ON transaction_scores(stored_at);
CREATE INDEX IF NOT EXISTS idx_scores_flagged ON transaction_scores(flagged);
CREATE INDEX IF NOT EXISTS idx_scores_risk_level ON transaction_scores(risk_level);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaTransactionScores,
	}
}
