package velocity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opensource-finance/kestrel/internal/cache"
	"github.com/opensource-finance/kestrel/internal/domain"
)

type countStore struct {
	domain.RecordStore
	count int64
	err   error
}

func (s *countStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count, s.err
}

type failingCache struct {
	domain.Cache
}

func (c *failingCache) IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error) {
	return 0, errors.New("cache down")
}

func TestServiceObserve(t *testing.T) {
	ctx := context.Background()

	t.Run("CountsViaCache", func(t *testing.T) {
		svc := New(cache.NewLRUCache(100), &countStore{count: 99})

		for want := int64(1); want <= 3; want++ {
			got, err := svc.Observe(ctx, "card-001")
			if err != nil {
				t.Fatalf("observe failed: %v", err)
			}
			if got != want {
				t.Errorf("expected count %d, got %d", want, got)
			}
		}
	})

	t.Run("IndependentCards", func(t *testing.T) {
		svc := New(cache.NewLRUCache(100), nil)

		svc.Observe(ctx, "card-A")
		svc.Observe(ctx, "card-A")

		got, err := svc.Observe(ctx, "card-B")
		if err != nil {
			t.Fatalf("observe failed: %v", err)
		}
		if got != 1 {
			t.Errorf("expected independent count 1, got %d", got)
		}
	})

	t.Run("FallsBackToStoreOnCacheError", func(t *testing.T) {
		svc := New(&failingCache{}, &countStore{count: 7})

		got, err := svc.Observe(ctx, "card-001")
		if err != nil {
			t.Fatalf("observe failed: %v", err)
		}
		if got != 7 {
			t.Errorf("expected store count 7, got %d", got)
		}
	})

	t.Run("NilCacheUsesStore", func(t *testing.T) {
		svc := New(nil, &countStore{count: 4})

		got, err := svc.Observe(ctx, "card-001")
		if err != nil {
			t.Fatalf("observe failed: %v", err)
		}
		if got != 4 {
			t.Errorf("expected store count 4, got %d", got)
		}
	})

	t.Run("NilCacheNilStore", func(t *testing.T) {
		svc := New(nil, nil)

		got, err := svc.Observe(ctx, "card-001")
		if err != nil {
			t.Fatalf("observe failed: %v", err)
		}
		if got != 0 {
			t.Errorf("expected zero count, got %d", got)
		}
	})
}

func TestServiceRecentCount(t *testing.T) {
	svc := New(cache.NewLRUCache(100), &countStore{count: 12})

	got, err := svc.RecentCount(context.Background())
	if err != nil {
		t.Fatalf("recent count failed: %v", err)
	}
	if got != 12 {
		t.Errorf("expected 12, got %d", got)
	}
}
