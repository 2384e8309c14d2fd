package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGeneratorUsesClock(t *testing.T) {
	g := NewIDGenerator(0)
	now := time.UnixMilli(1_700_000_000_000)
	g.now = func() time.Time { return now }

	assert.Equal(t, int64(1_700_000_000_000), g.Next())
}

func TestIDGeneratorSameMillisecond(t *testing.T) {
	g := NewIDGenerator(0)
	now := time.UnixMilli(1_700_000_000_000)
	g.now = func() time.Time { return now }

	first := g.Next()
	second := g.Next()
	third := g.Next()

	assert.Equal(t, first+1, second)
	assert.Equal(t, second+1, third)
}

func TestIDGeneratorFloor(t *testing.T) {
	future := time.Now().Add(time.Hour).UnixMilli()
	g := NewIDGenerator(future)

	assert.Equal(t, future+1, g.Next())

	g.Observe(future + 100)
	assert.Equal(t, future+101, g.Next())

	// lower observations are ignored
	g.Observe(5)
	assert.Equal(t, future+102, g.Next())
}

func TestIDGeneratorConcurrentUnique(t *testing.T) {
	g := NewIDGenerator(0)

	const n = 500
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- g.Next()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
