package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs_StartsAtOne(t *testing.T) {
	ids := NewSequentialIDs("impact")
	assert.Equal(t, int64(0), ids.Issued())
	assert.Equal(t, "impact-1", ids.Generate())
	assert.Equal(t, "impact-2", ids.Generate())
	assert.Equal(t, int64(2), ids.Issued())
}

func TestSequentialIDs_DefaultPrefix(t *testing.T) {
	ids := NewSequentialIDs("")
	assert.Equal(t, "impact-1", ids.Generate())
}

func TestSequentialIDs_Reset(t *testing.T) {
	ids := NewSequentialIDs("n")
	ids.Generate()
	ids.Generate()
	ids.Reset()
	assert.Equal(t, int64(0), ids.Issued())
	assert.Equal(t, "n-1", ids.Generate())
}

func TestSequentialIDs_ThreadSafe(t *testing.T) {
	ids := NewSequentialIDs("x")
	const workers = 50
	const perWorker = 40

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := ids.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker, "every generated id must be unique")
	assert.Equal(t, int64(workers*perWorker), ids.Issued())
}
