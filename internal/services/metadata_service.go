package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/validation"
	"storefront/pkg/logger"
)

// MetadataService manages categories and colors from the admin panel.
type MetadataService struct {
	categories *store.CategoryStore
	colors     *store.ColorStore
	events     EventPublisher
	validate   *validation.Validator
}

// NewMetadataService creates a new MetadataService.
func NewMetadataService(categories *store.CategoryStore, colors *store.ColorStore, events EventPublisher) *MetadataService {
	return &MetadataService{
		categories: categories,
		colors:     colors,
		events:     events,
		validate:   validation.New(),
	}
}

// Load refreshes both lists concurrently. Each list applies its own
// result independently of the other.
func (s *MetadataService) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.LoadCategories(ctx) })
	g.Go(func() error { return s.LoadColors(ctx) })
	return g.Wait()
}

// LoadCategories refreshes the category list.
func (s *MetadataService) LoadCategories(ctx context.Context) error {
	if err := s.categories.FetchAll(ctx); err != nil {
		logger.Error(ctx).Err(err).Msg("Error loading categories")
		return err
	}
	return nil
}

// LoadColors refreshes the color list.
func (s *MetadataService) LoadColors(ctx context.Context) error {
	if err := s.colors.FetchAll(ctx); err != nil {
		logger.Error(ctx).Err(err).Msg("Error loading colors")
		return err
	}
	return nil
}

// Categories returns the current category list.
func (s *MetadataService) Categories() []models.Category { return s.categories.Items() }

// Colors returns the current color list.
func (s *MetadataService) Colors() []models.Color { return s.colors.Items() }

// CreateCategory adds a category.
func (s *MetadataService) CreateCategory(ctx context.Context, d models.NameDraft) (models.Category, error) {
	return createNamed(ctx, s, s.categories, "category", d)
}

// UpdateCategory renames a category.
func (s *MetadataService) UpdateCategory(ctx context.Context, id string, d models.NameDraft) (models.Category, error) {
	return updateNamed(ctx, s, s.categories, "category", id, d)
}

// DeleteCategory removes a category. Products keep their references.
func (s *MetadataService) DeleteCategory(ctx context.Context, id string) error {
	return deleteNamed(ctx, s, s.categories, "category", id)
}

// CreateColor adds a color.
func (s *MetadataService) CreateColor(ctx context.Context, d models.NameDraft) (models.Color, error) {
	return createNamed(ctx, s, s.colors, "color", d)
}

// UpdateColor renames a color.
func (s *MetadataService) UpdateColor(ctx context.Context, id string, d models.NameDraft) (models.Color, error) {
	return updateNamed(ctx, s, s.colors, "color", id, d)
}

// DeleteColor removes a color. Products keep their references.
func (s *MetadataService) DeleteColor(ctx context.Context, id string) error {
	return deleteNamed(ctx, s, s.colors, "color", id)
}

func createNamed[T models.Entity](ctx context.Context, s *MetadataService, st *store.EntityStore[T, models.NameDraft], entity string, d models.NameDraft) (T, error) {
	var zero T
	if err := s.validate.Struct(d); err != nil {
		return zero, err
	}
	item, err := st.Create(ctx, d)
	if err != nil {
		logger.Error(ctx).Err(err).Str("entity", entity).Msg("Error creating")
		return zero, err
	}
	publish(ctx, s.events, catalogChanged(entity, "create", item.GetID()))
	return item, nil
}

func updateNamed[T models.Entity](ctx context.Context, s *MetadataService, st *store.EntityStore[T, models.NameDraft], entity, id string, d models.NameDraft) (T, error) {
	var zero T
	if err := s.validate.Struct(d); err != nil {
		return zero, err
	}
	item, err := st.Update(ctx, id, d)
	if err != nil {
		logger.Error(ctx).Err(err).Str("entity", entity).Str("id", id).Msg("Error updating")
		return zero, err
	}
	publish(ctx, s.events, catalogChanged(entity, "update", id))
	return item, nil
}

func deleteNamed[T models.Entity](ctx context.Context, s *MetadataService, st *store.EntityStore[T, models.NameDraft], entity, id string) error {
	if err := st.Delete(ctx, id); err != nil {
		logger.Error(ctx).Err(err).Str("entity", entity).Str("id", id).Msg("Error deleting")
		return err
	}
	publish(ctx, s.events, catalogChanged(entity, "delete", id))
	return nil
}
