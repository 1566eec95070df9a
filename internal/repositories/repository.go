package repositories

import (
	"context"

	"storefront/internal/models"
)

// Repository defines remote access to one backend-owned collection. T is the
// canonical record, D the payload sent on create and update.
type Repository[T models.Entity, D any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft D) (T, error)
	Update(ctx context.Context, id string, patch D) (T, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the interface for product data access.
type ProductRepository = Repository[models.Product, models.ProductDraft]

// CategoryRepository defines the interface for category data access.
type CategoryRepository = Repository[models.Category, models.NameDraft]

// ColorRepository defines the interface for color data access.
type ColorRepository = Repository[models.Color, models.NameDraft]

// PreferenceRepository is the durable key-value storage behind the session.
type PreferenceRepository interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}
