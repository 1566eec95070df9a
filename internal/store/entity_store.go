// Package store holds the in-memory mirrors of backend collections. Each
// EntityStore owns its collection exclusively and keeps it consistent with
// the last successful backend response.
package store

import (
	"context"
	"sync"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/logger"
)

// EntityStore mirrors one backend collection. Operations propagate backend
// errors unchanged and never touch the collection when the backend call
// fails.
type EntityStore[T models.Entity, D any] struct {
	name string
	repo repositories.Repository[T, D]

	mu       sync.RWMutex
	items    []T
	loaded   bool
	inflight int
	issued   uint64
	applied  uint64
}

// New creates an empty store over repo. name is used in log messages.
func New[T models.Entity, D any](name string, repo repositories.Repository[T, D]) *EntityStore[T, D] {
	return &EntityStore[T, D]{
		name:  name,
		repo:  repo,
		items: []T{},
	}
}

// FetchAll replaces the collection with the backend's current list.
// Overlapping calls are sequenced: a response is applied only if no fetch
// issued after it has been applied already. A response that lands after
// ctx is done is dropped.
func (s *EntityStore[T, D]) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.inflight++
	s.mu.Unlock()

	items, err := s.repo.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if seq < s.applied {
		logger.Debug(ctx).
			Str("store", s.name).
			Uint64("seq", seq).
			Uint64("applied", s.applied).
			Msg("Discarding stale fetch response")
		return nil
	}

	s.items = items
	s.applied = seq
	s.loaded = true
	return nil
}

// EnsureLoaded fetches the collection only when it is empty.
func (s *EntityStore[T, D]) EnsureLoaded(ctx context.Context) error {
	if s.Len() > 0 {
		return nil
	}
	return s.FetchAll(ctx)
}

// Create sends draft to the backend and appends the returned record.
func (s *EntityStore[T, D]) Create(ctx context.Context, draft D) (T, error) {
	item, err := s.repo.Create(ctx, draft)
	if err != nil {
		return item, err
	}

	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
	return item, nil
}

// Update sends patch for id and replaces the matching element with the
// returned record. Nothing is added when id is not in the collection.
func (s *EntityStore[T, D]) Update(ctx context.Context, id string, patch D) (T, error) {
	item, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return item, err
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].GetID() == id {
			s.items[i] = item
		}
	}
	s.mu.Unlock()
	return item, nil
}

// Delete removes id on the backend, then locally.
func (s *EntityStore[T, D]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.items[:0:0]
	for _, item := range s.items {
		if item.GetID() != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the collection, in order.
func (s *EntityStore[T, D]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Find returns the element with id.
func (s *EntityStore[T, D]) Find(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the collection size.
func (s *EntityStore[T, D]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loading reports whether a FetchAll is in flight.
func (s *EntityStore[T, D]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Loaded reports whether a FetchAll has succeeded at least once.
func (s *EntityStore[T, D]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// ProductStore mirrors the product catalog.
type ProductStore = EntityStore[models.Product, models.ProductDraft]

// CategoryStore mirrors the categories.
type CategoryStore = EntityStore[models.Category, models.NameDraft]

// ColorStore mirrors the colors.
type ColorStore = EntityStore[models.Color, models.NameDraft]
