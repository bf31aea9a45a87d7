package mcp

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/nikiitin/ring5/internal/ring5/engine"
)

// batchStore holds in-flight parse batches between a submit_parse call
// and the finalize_parsing call that eventually consumes them. Batches
// are single-use: finalize removes the entry it reads.
type batchStore struct {
	mu      sync.Mutex
	batches map[string]engine.ParseBatchResult
	seq     atomic.Int64
}

func newBatchStore() *batchStore {
	return &batchStore{batches: make(map[string]engine.ParseBatchResult)}
}

// put stores a batch and returns its generated ID.
func (s *batchStore) put(batch engine.ParseBatchResult) string {
	id := "batch-" + strconv.FormatInt(s.seq.Add(1), 10)

	s.mu.Lock()
	s.batches[id] = batch
	s.mu.Unlock()

	return id
}

// take removes and returns the batch for id, reporting whether it existed.
func (s *batchStore) take(id string) (engine.ParseBatchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, ok := s.batches[id]
	if ok {
		delete(s.batches, id)
	}

	return batch, ok
}
