package cli

import (
	"context"
	"sync"
	"time"
)

// renderStats collects composite and cache events for a single command run.
// It satisfies the observability composite and cache hook interfaces.
type renderStats struct {
	mu      sync.Mutex
	skipped int
	hits    int
	misses  int
}

func (s *renderStats) OnGenerateStart(context.Context, string, int) {}

func (s *renderStats) OnItemSkipped(context.Context, string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped++
}

func (s *renderStats) OnGenerateComplete(context.Context, string, time.Duration, error) {}

func (s *renderStats) OnCacheHit(context.Context, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
}

func (s *renderStats) OnCacheMiss(context.Context, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.misses++
}

func (s *renderStats) OnCacheSet(context.Context, string, int) {}

func (s *renderStats) snapshot() (skipped, hits, misses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped, s.hits, s.misses
}
