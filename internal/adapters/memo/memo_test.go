package memo_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"hotel_bookings/internal/adapters/memo"
)

func TestLoad_FirstLoadWins(t *testing.T) {
	m := memo.New("test")
	calls := 0
	load := func(v string) func() (any, error) {
		return func() (any, error) { calls++; return v, nil }
	}

	a, err := m.Load("k", load("first"))
	if err != nil || a != "first" {
		t.Fatalf("got %v %v", a, err)
	}
	b, _ := m.Load("k", load("second"))
	if b != "first" || calls != 1 {
		t.Fatalf("expected cached first value after 1 call, got %v after %d", b, calls)
	}
	c, _ := m.Load("other", load("third"))
	if c != "third" || calls != 2 {
		t.Fatalf("keys should load independently, got %v after %d", c, calls)
	}
}

func TestLoad_ErrorNotCached(t *testing.T) {
	m := memo.New("test")
	boom := errors.New("boom")
	if _, err := m.Load("k", func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := m.Load("k", func() (any, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("retry after failure should load, got %v %v", v, err)
	}
}

func TestLoad_ConcurrentCallersShareOneLoad(t *testing.T) {
	m := memo.New("test")
	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Load("k", func() (any, error) {
				calls.Add(1)
				return struct{}{}, nil
			})
		}()
	}
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single load, got %d", n)
	}
}
