package domain

import (
	"context"
	"time"
)

// RecordStore defines the interface for durable score persistence.
// Keyed by transaction ID; writes are idempotent upserts with
// last-write-wins visibility. No transactional guarantee across
// concurrent writers to the same ID (IDs are caller-unique by
// contract).
type RecordStore interface {
	// PutScore writes the record, replacing any prior record for the
	// same transaction ID. Failures are surfaced verbatim to the
	// caller; a scored-but-unrecorded transaction is a correctness
	// failure.
	PutScore(ctx context.Context, rec *ScoreRecord) error

	// GetScore retrieves a record by transaction ID.
	GetScore(ctx context.Context, txID string) (*ScoreRecord, error)

	// CountSince returns the number of records stored at or after the
	// given time. Used by the velocity service as a fallback source.
	CountSince(ctx context.Context, since time.Time) (int64, error)

	// Summary returns aggregate statistics over stored records.
	Summary(ctx context.Context) (*StoreSummary, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// StoreSummary is the aggregate view served by GET /stats.
type StoreSummary struct {
	TotalTransactions int64   `json:"total_transactions"`
	FraudDetected     int64   `json:"fraud_detected"`
	FraudRatePercent  float64 `json:"fraud_rate"`
}

// StoreConfig holds configuration for record store initialization.
type StoreConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
