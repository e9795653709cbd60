package locking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestKeyedLocker(t *testing.T) {
	t.Run("serializes same key", func(t *testing.T) {
		l := NewKeyedLocker()
		var mu sync.Mutex
		inside, maxInside := 0, 0
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := l.Lock(context.Background(), "inv-1")
				if err != nil {
					t.Errorf("lock: %v", err)
					return
				}
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				unlock()
			}()
		}
		wg.Wait()
		if maxInside != 1 {
			t.Fatalf("expected one holder at a time, saw %d", maxInside)
		}
		if l.size() != 0 {
			t.Fatalf("expected no live keys, got %d", l.size())
		}
	})

	t.Run("different keys do not block", func(t *testing.T) {
		l := NewKeyedLocker()
		unlockA, err := l.Lock(context.Background(), "a")
		if err != nil {
			t.Fatalf("lock a: %v", err)
		}
		defer unlockA()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		unlockB, err := l.Lock(ctx, "b")
		if err != nil {
			t.Fatalf("lock b should not wait: %v", err)
		}
		unlockB()
	})

	t.Run("context cancel while waiting", func(t *testing.T) {
		l := NewKeyedLocker()
		unlock, err := l.Lock(context.Background(), "a")
		if err != nil {
			t.Fatalf("lock: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := l.Lock(ctx, "a"); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}

		unlock()
		unlock()
		if l.size() != 0 {
			t.Fatalf("expected no live keys, got %d", l.size())
		}
	})
}
