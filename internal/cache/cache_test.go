package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/opensource-finance/kestrel/internal/domain"
)

func TestLRUCache(t *testing.T) {
	c := NewLRUCache(100)
	defer c.Close()

	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "key1", []byte("value1"), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		val, err := c.Get(ctx, "key1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if string(val) != "value1" {
			t.Errorf("expected 'value1', got '%s'", string(val))
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		val, err := c.Get(ctx, "nonexistent")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil for missing key, got '%s'", string(val))
		}
	})

	t.Run("Expiration", func(t *testing.T) {
		c.Set(ctx, "expiring", []byte("soon gone"), 20*time.Millisecond)

		val, _ := c.Get(ctx, "expiring")
		if val == nil {
			t.Error("expected value before expiry")
		}

		time.Sleep(30 * time.Millisecond)

		val, _ = c.Get(ctx, "expiring")
		if val != nil {
			t.Errorf("expected nil after expiry, got '%s'", string(val))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set(ctx, "doomed", []byte("x"), time.Minute)
		c.Delete(ctx, "doomed")

		val, _ := c.Get(ctx, "doomed")
		if val != nil {
			t.Error("expected nil after delete")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		c.Set(ctx, "key2", []byte("first"), time.Minute)
		c.Set(ctx, "key2", []byte("second"), time.Minute)

		val, _ := c.Get(ctx, "key2")
		if string(val) != "second" {
			t.Errorf("expected 'second', got '%s'", string(val))
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := c.Ping(ctx); err != nil {
			t.Errorf("ping failed: %v", err)
		}
	})
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache(3)
	defer c.Close()

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		c.Set(ctx, fmt.Sprintf("key%d", i), []byte("v"), time.Minute)
	}

	size, capacity := c.Stats()
	if size != 3 {
		t.Errorf("expected size 3 after eviction, got %d", size)
	}
	if capacity != 3 {
		t.Errorf("expected capacity 3, got %d", capacity)
	}

	// Oldest entries evicted
	val, _ := c.Get(ctx, "key0")
	if val != nil {
		t.Error("expected key0 to be evicted")
	}
	val, _ = c.Get(ctx, "key4")
	if val == nil {
		t.Error("expected key4 to survive")
	}
}

func TestLRUCacheIncrementCounter(t *testing.T) {
	c := NewLRUCache(100)
	defer c.Close()

	ctx := context.Background()

	t.Run("SequentialIncrements", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := c.IncrementCounter(ctx, "velocity:card-001", time.Minute)
			if err != nil {
				t.Fatalf("increment failed: %v", err)
			}
			if got != want {
				t.Errorf("expected count %d, got %d", want, got)
			}
		}
	})

	t.Run("WindowReset", func(t *testing.T) {
		c.IncrementCounter(ctx, "velocity:card-002", 20*time.Millisecond)
		c.IncrementCounter(ctx, "velocity:card-002", 20*time.Millisecond)

		time.Sleep(30 * time.Millisecond)

		got, err := c.IncrementCounter(ctx, "velocity:card-002", time.Minute)
		if err != nil {
			t.Fatalf("increment failed: %v", err)
		}
		if got != 1 {
			t.Errorf("expected counter reset to 1 after window, got %d", got)
		}
	})

	t.Run("IndependentKeys", func(t *testing.T) {
		c.IncrementCounter(ctx, "velocity:card-A", time.Minute)
		got, _ := c.IncrementCounter(ctx, "velocity:card-B", time.Minute)
		if got != 1 {
			t.Errorf("expected independent counter to be 1, got %d", got)
		}
	})
}

func TestNewCache(t *testing.T) {
	t.Run("MemoryType", func(t *testing.T) {
		c, err := New(domain.CacheConfig{Type: "memory", LocalMaxSize: 50})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer c.Close()

		_, ok := c.(*LRUCache)
		if !ok {
			t.Error("expected LRUCache for memory type")
		}
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		_, err := New(domain.CacheConfig{Type: "memcached"})
		if err == nil {
			t.Error("expected error for unsupported type")
		}
	})
}
