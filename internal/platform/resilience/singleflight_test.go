package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSingleFlightCollapsesConcurrentCalls(t *testing.T) {
	sf := NewSingleFlight()

	var calls atomic.Int32
	release := make(chan struct{})

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]any, waiters)
	sharedFlags := make([]bool, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, shared, err := sf.Do("roster", func() (any, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = value
			sharedFlags[i] = shared
		}(i)
	}

	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 underlying call, got %d", got)
	}
	sharedCount := 0
	for i, value := range results {
		if value != 42 {
			t.Fatalf("waiter %d got %v", i, value)
		}
		if sharedFlags[i] {
			sharedCount++
		}
	}
	if sharedCount != waiters-1 {
		t.Fatalf("expected %d shared results, got %d", waiters-1, sharedCount)
	}
}

func TestSingleFlightDistinctKeysRunIndependently(t *testing.T) {
	sf := NewSingleFlight()

	var calls atomic.Int32
	fn := func() (any, error) {
		calls.Add(1)
		return nil, nil
	}

	if _, _, err := sf.Do("a", fn); err != nil {
		t.Fatal(err)
	}
	if _, _, err := sf.Do("b", fn); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestSingleFlightKeyReusableAfterCompletion(t *testing.T) {
	sf := NewSingleFlight()

	var calls atomic.Int32
	fn := func() (any, error) {
		calls.Add(1)
		return nil, nil
	}

	_, _, _ = sf.Do("k", fn)
	_, _, _ = sf.Do("k", fn)

	if got := calls.Load(); got != 2 {
		t.Fatalf("sequential calls should both execute, got %d", got)
	}
}
