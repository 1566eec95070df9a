// Package metrics counts product detail views for the admin dashboard and
// exports process metrics to Prometheus.
package metrics

import "sync"

// ViewCounter counts detail-page visits per product identifier. It lives for
// the process only: nothing is persisted or sent to the backend. Every visit
// counts, repeated ones included.
type ViewCounter struct {
	mu     sync.RWMutex
	counts map[string]int
	hook   func(productID string)
}

// NewViewCounter creates an empty counter. hook, when not nil, is called on
// every increment.
func NewViewCounter(hook func(productID string)) *ViewCounter {
	return &ViewCounter{
		counts: make(map[string]int),
		hook:   hook,
	}
}

// Increment adds one view for productID and returns the new count.
func (v *ViewCounter) Increment(productID string) int {
	v.mu.Lock()
	v.counts[productID]++
	n := v.counts[productID]
	v.mu.Unlock()

	if v.hook != nil {
		v.hook(productID)
	}
	return n
}

// Count returns the views of productID, 0 when never viewed.
func (v *ViewCounter) Count(productID string) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.counts[productID]
}

// Snapshot returns a copy of all counters.
func (v *ViewCounter) Snapshot() map[string]int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]int, len(v.counts))
	for k, n := range v.counts {
		out[k] = n
	}
	return out
}
