package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunks_Sequential(t *testing.T) {
	var calls int
	Chunks(100_000, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 100_000, end)
	}, Sequential())

	assert.Equal(t, 1, calls)
}

func TestChunks_CoverRangeExactlyOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}
	n := 101
	hits := make([]int32, n)

	var mu sync.Mutex
	var calls int
	Chunks(n, func(start, end int) {
		mu.Lock()
		calls++
		mu.Unlock()
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	}, cfg)

	for i, h := range hits {
		assert.Equal(t, int32(1), h, "index %d", i)
	}
	assert.Greater(t, calls, 1)
}

func TestChunks_SmallInputRunsInline(t *testing.T) {
	cfg := DefaultConfig()

	var calls int
	Chunks(cfg.MinChunkSize-1, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, cfg.MinChunkSize-1, end)
	}, cfg)

	assert.Equal(t, 1, calls)
}

func TestChunks_Empty(t *testing.T) {
	Chunks(0, func(_, _ int) {
		t.Fatal("f must not be called for an empty range")
	}, DefaultConfig())
}

func BenchmarkChunks(b *testing.B) {
	n := 1 << 16
	data := make([]float32, n)
	fill := func(start, end int) {
		for j := start; j < end; j++ {
			data[j] = float32(j) * 0.5
		}
	}

	b.Run("parallel", func(b *testing.B) {
		cfg := DefaultConfig()
		for i := 0; i < b.N; i++ {
			Chunks(n, fill, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfg := Sequential()
		for i := 0; i < b.N; i++ {
			Chunks(n, fill, cfg)
		}
	})
}
