package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable ledger identifiers for tests.
//
// The first call to Generate returns "<prefix>-1", the next "<prefix>-2", and
// so on. The same scenario run against a fresh SequentialIDs therefore
// produces byte-identical impact chains, which golden files rely on.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialIDs creates a generator. An empty prefix defaults to "impact".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "impact"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next identifier.
//
// Implements store.IDGenerator.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Issued returns how many identifiers have been handed out.
func (g *SequentialIDs) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset starts the sequence over. The next Generate returns "<prefix>-1".
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
