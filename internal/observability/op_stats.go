// Package observability provides operation statistics tracking for table
// diagnostics.
package observability

import (
	"sort"
	"sync"
	"time"
)

// OpStats tracks per-operation frequency and cumulative duration for a
// table lineage. Recording is O(1) and thread-safe so a collector can be
// shared across derived tables.
type OpStats struct {
	mu  sync.RWMutex
	ops map[string]*OpRecord
}

// OpRecord holds statistics for a single operation kind.
type OpRecord struct {
	Op       string
	Count    int64
	Total    time.Duration
	LastSeen time.Time
}

// NewOpStats creates a new operation statistics tracker.
func NewOpStats() *OpStats {
	return &OpStats{ops: make(map[string]*OpRecord)}
}

// Record records one invocation of op with the given duration.
func (s *OpStats) Record(op string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.ops[op]
	if !exists {
		rec = &OpRecord{Op: op}
		s.ops[op] = rec
	}
	rec.Count++
	rec.Total += d
	rec.LastSeen = time.Now()
}

// Count returns the recorded invocation count for op.
func (s *OpStats) Count(op string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.ops[op]; ok {
		return rec.Count
	}
	return 0
}

// Snapshot returns a copy of all records sorted by count (descending).
func (s *OpStats) Snapshot() []OpRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OpRecord, 0, len(s.ops))
	for _, rec := range s.ops {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Op < out[j].Op
	})
	return out
}

// Prune removes records whose LastSeen is older than window.
func (s *OpStats) Prune(window time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := time.Now().Add(-window)
	for op, rec := range s.ops {
		if rec.LastSeen.Before(threshold) {
			delete(s.ops, op)
		}
	}
}
