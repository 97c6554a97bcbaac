// Package store provides durable persistence for scored transactions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLStore implements domain.RecordStore using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// New creates a new record store based on configuration.
func New(cfg domain.StoreConfig) (domain.RecordStore, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := &SQLStore{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

func (s *SQLStore) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := s.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// PutScore upserts a score record keyed by transaction ID.
// Last write wins; there is no versioning or append history.
func (s *SQLStore) PutScore(ctx context.Context, rec *domain.ScoreRecord) error {
	if rec == nil || rec.TransactionID == "" {
		return fmt.Errorf("%w: transaction_id is required", ErrInvalidInput)
	}

	cardPresent := 0
	if rec.CardPresent {
		cardPresent = 1
	}
	flagged := 0
	if rec.Flagged {
		flagged = 1
	}

	query := `
		INSERT INTO transaction_scores (
			transaction_id, stored_at, amount, merchant, location,
			card_present, recent_tx_count, risk_score, risk_level,
			explanation, flagged
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			stored_at = excluded.stored_at,
			amount = excluded.amount,
			merchant = excluded.merchant,
			location = excluded.location,
			card_present = excluded.card_present,
			recent_tx_count = excluded.recent_tx_count,
			risk_score = excluded.risk_score,
			risk_level = excluded.risk_level,
			explanation = excluded.explanation,
			flagged = excluded.flagged
	`

	_, err := s.db.ExecContext(ctx, s.rebind(query),
		rec.TransactionID, rec.StoredAt, rec.Amount, rec.Merchant, rec.Location,
		cardPresent, rec.RecentTransactionCount, rec.RiskScore, string(rec.RiskLevel),
		rec.Explanation, flagged,
	)
	return err
}

// GetScore retrieves a score record by transaction ID.
func (s *SQLStore) GetScore(ctx context.Context, txID string) (*domain.ScoreRecord, error) {
	if txID == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", ErrInvalidInput)
	}

	query := `
		SELECT transaction_id, stored_at, amount, merchant, location,
			   card_present, recent_tx_count, risk_score, risk_level,
			   explanation, flagged
		FROM transaction_scores
		WHERE transaction_id = ?
	`

	var rec domain.ScoreRecord
	var level string
	var cardPresent, flagged int

	err := s.db.QueryRowContext(ctx, s.rebind(query), txID).Scan(
		&rec.TransactionID, &rec.StoredAt, &rec.Amount, &rec.Merchant, &rec.Location,
		&cardPresent, &rec.RecentTransactionCount, &rec.RiskScore, &level,
		&rec.Explanation, &flagged,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.RiskLevel = domain.RiskLevel(level)
	rec.CardPresent = cardPresent == 1
	rec.Flagged = flagged == 1

	return &rec, nil
}

// CountSince returns the number of records stored at or after the
// given time.
func (s *SQLStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM transaction_scores WHERE stored_at >= ?`

	var count int64
	if err := s.db.QueryRowContext(ctx, s.rebind(query), since.Unix()).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Summary returns aggregate statistics over all stored records.
func (s *SQLStore) Summary(ctx context.Context) (*domain.StoreSummary, error) {
	query := `
		SELECT COUNT(*),
			   COALESCE(SUM(flagged), 0)
		FROM transaction_scores
	`

	var total, flagged int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&total, &flagged); err != nil {
		return nil, fmt.Errorf("failed to summarize records: %w", err)
	}

	summary := &domain.StoreSummary{
		TotalTransactions: total,
		FraudDetected:     flagged,
	}
	if total > 0 {
		summary.FraudRatePercent = float64(flagged) / float64(total) * 100
	}
	return summary, nil
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
