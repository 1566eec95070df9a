package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/apiclient"
	"storefront/internal/models"
)

// MockRepository is an in-memory Repository that behaves like the backend:
// it assigns identifiers, keeps insertion order and answers 404 for unknown
// ids.
type MockRepository[T models.Entity, D any] struct {
	mu    sync.RWMutex
	items []T
	build func(id string, d D) T
	fail  error
}

// NewMockRepository creates an empty MockRepository. build turns a payload
// into the stored record.
func NewMockRepository[T models.Entity, D any](build func(id string, d D) T) *MockRepository[T, D] {
	return &MockRepository[T, D]{build: build}
}

// NewMockProductRepository creates an in-memory product repository.
func NewMockProductRepository() *MockRepository[models.Product, models.ProductDraft] {
	return NewMockRepository(func(id string, d models.ProductDraft) models.Product {
		p := models.Product{
			ID:          id,
			Name:        d.Name,
			Description: d.Description,
			Price:       d.Price,
			Sizes:       d.Sizes,
		}
		for _, c := range d.Colors {
			p.Colors = append(p.Colors, models.Ref{ID: c})
		}
		for _, c := range d.Categories {
			p.Categories = append(p.Categories, models.Ref{ID: c})
		}
		for _, img := range d.Images {
			p.Images = append(p.Images, "uploads/"+img.Filename)
		}
		return p
	})
}

// NewMockCategoryRepository creates an in-memory category repository.
func NewMockCategoryRepository() *MockRepository[models.Category, models.NameDraft] {
	return NewMockRepository(func(id string, d models.NameDraft) models.Category {
		return models.Category{ID: id, Name: d.Name}
	})
}

// NewMockColorRepository creates an in-memory color repository.
func NewMockColorRepository() *MockRepository[models.Color, models.NameDraft] {
	return NewMockRepository(func(id string, d models.NameDraft) models.Color {
		return models.Color{ID: id, Name: d.Name}
	})
}

// Seed appends records as they are, keeping their identifiers.
func (r *MockRepository[T, D]) Seed(items ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

// FailWith makes every following call return err, until reset with nil.
func (r *MockRepository[T, D]) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

// List returns all records.
func (r *MockRepository[T, D]) List(_ context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.fail != nil {
		return nil, r.fail
	}
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out, nil
}

// Create stores a new record with a generated identifier.
func (r *MockRepository[T, D]) Create(_ context.Context, draft D) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if r.fail != nil {
		return zero, r.fail
	}
	item := r.build(uuid.New().String(), draft)
	r.items = append(r.items, item)
	return item, nil
}

// Update replaces the record with id.
func (r *MockRepository[T, D]) Update(_ context.Context, id string, patch D) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	if r.fail != nil {
		return zero, r.fail
	}
	for i := range r.items {
		if r.items[i].GetID() == id {
			r.items[i] = r.build(id, patch)
			return r.items[i], nil
		}
	}
	return zero, notFound(id)
}

// Delete removes the record with id.
func (r *MockRepository[T, D]) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	for i := range r.items {
		if r.items[i].GetID() == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return notFound(id)
}

func notFound(id string) error {
	return &apiclient.RequestError{Status: 404, Body: fmt.Sprintf(`{"error":"record %s not found"}`, id)}
}
