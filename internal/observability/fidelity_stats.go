// Package observability tracks local fidelity scores so callers can see how
// well surrogates agree with their global model, per explained class.
package observability

import (
	"sort"
	"sync"
	"time"
)

// FidelityStats aggregates local fidelity scores per global class.
type FidelityStats struct {
	mu      sync.RWMutex
	classes map[int]*ClassStats
	window  time.Duration
}

// ClassStats holds the aggregated scores recorded for one global class.
type ClassStats struct {
	Class      int
	Count      int64
	Sum        float64
	Min        float64
	Max        float64
	Degenerate int64 // runs whose confusion matrix collapsed to one cell
	LastSeen   time.Time
}

// Mean returns the average recorded score, or 0 when nothing was recorded.
func (c ClassStats) Mean() float64 {
	if c.Count == 0 {
		return 0
	}
	return c.Sum / float64(c.Count)
}

// NewFidelityStats creates a new tracker.
// window: time duration for pruning classes that stopped receiving scores
func NewFidelityStats(window time.Duration) *FidelityStats {
	return &FidelityStats{
		classes: make(map[int]*ClassStats),
		window:  window,
	}
}

// Record adds a score computed for globalClass.
// This method is O(1) and thread-safe.
func (f *FidelityStats) Record(globalClass int, score float64, degenerate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stats, exists := f.classes[globalClass]
	if !exists {
		stats = &ClassStats{Class: globalClass, Min: score, Max: score}
		f.classes[globalClass] = stats
	}

	stats.Count++
	stats.Sum += score
	if score < stats.Min {
		stats.Min = score
	}
	if score > stats.Max {
		stats.Max = score
	}
	if degenerate {
		stats.Degenerate++
	}
	stats.LastSeen = time.Now()
}

// Get returns a copy of the stats of one class.
func (f *FidelityStats) Get(globalClass int) (ClassStats, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	stats, ok := f.classes[globalClass]
	if !ok {
		return ClassStats{}, false
	}
	return *stats, true
}

// Snapshot returns a copy of every class's stats sorted by class.
func (f *FidelityStats) Snapshot() []ClassStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]ClassStats, 0, len(f.classes))
	for _, s := range f.classes {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Class < out[j].Class
	})
	return out
}

// Prune removes classes where time.Since(LastSeen) > window.
func (f *FidelityStats) Prune() {
	f.mu.Lock()
	defer f.mu.Unlock()

	threshold := time.Now().Add(-f.window)
	for class, stats := range f.classes {
		if stats.LastSeen.Before(threshold) {
			delete(f.classes, class)
		}
	}
}
