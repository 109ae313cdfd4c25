package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := New(4)

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_VisitsEachIndexOnce(t *testing.T) {
	cfg := New(3)
	n := 500
	seen := make([]int32, n)

	For(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	}, cfg)

	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times", i, c)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := New(0)
	if cfg.Enabled() {
		t.Fatal("New(0) should disable parallelism")
	}

	// Sequential loops run in order on the calling goroutine.
	var order []int
	For(100, func(i int) {
		order = append(order, i)
	}, cfg)

	if len(order) != 100 {
		t.Fatalf("Expected 100, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d", i, v)
		}
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestEach(t *testing.T) {
	var running, peak int32
	err := Each(16, func(_ int) error {
		cur := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		atomic.AddInt32(&running, -1)
		return nil
	}, New(2))
	if err != nil {
		t.Fatal(err)
	}
	if peak > 2 {
		t.Errorf("Expected at most 2 concurrent tasks, saw %d", peak)
	}

	boom := errors.New("boom")
	err = Each(4, func(i int) error {
		if i == 2 {
			return boom
		}
		return nil
	}, New(2))
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := New(1)
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}
