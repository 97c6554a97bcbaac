// Package velocity tracks recent-transaction counts over a rolling
// window. The count feeds the prompt's "Recent transactions (24h)"
// line when the caller does not supply one.
package velocity

import (
	"context"
	"log/slog"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// Window is the rolling window for recent-transaction counts.
const Window = 24 * time.Hour

// Service maintains windowed counters in the cache, falling back to a
// store scan when the cache is unavailable. Counter and store counts
// can disagree after a cache restart; both are approximations and the
// prompt only needs the order of magnitude.
type Service struct {
	cache  domain.Cache
	store  domain.RecordStore
	logger *slog.Logger
}

// New creates a velocity service. The cache may be nil, in which case
// every lookup goes to the store.
func New(cache domain.Cache, store domain.RecordStore) *Service {
	return &Service{
		cache:  cache,
		store:  store,
		logger: slog.With("component", "velocity"),
	}
}

// Observe records one transaction against the window counter and
// returns the running count including it.
func (s *Service) Observe(ctx context.Context, cardKey string) (int64, error) {
	if s.cache == nil {
		return s.countFromStore(ctx)
	}

	count, err := s.cache.IncrementCounter(ctx, "velocity:"+cardKey, Window)
	if err != nil {
		s.logger.Warn("velocity counter unavailable, falling back to store",
			"card_key", cardKey,
			"error", err,
		)
		return s.countFromStore(ctx)
	}

	return count, nil
}

// RecentCount returns the current count without incrementing. Cache
// counters cannot be read non-destructively through the Cache
// interface, so this always scans the store.
func (s *Service) RecentCount(ctx context.Context) (int64, error) {
	return s.countFromStore(ctx)
}

func (s *Service) countFromStore(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.CountSince(ctx, time.Now().Add(-Window))
}
