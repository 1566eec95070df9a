package services

import (
	"context"
	"errors"

	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/projection"
	"storefront/internal/store"
	"storefront/internal/validation"
	"storefront/pkg/logger"
)

// ErrProductNotFound is returned when a product id is not in the catalog.
var ErrProductNotFound = errors.New("product not found")

// ProductDetail is the product page.
type ProductDetail struct {
	Product    models.Product `json:"product"`
	Images     []string       `json:"images"`
	Colors     []string       `json:"colors"`
	Categories []string       `json:"categories"`
	Related    []ProductCard  `json:"related"`
	Inquiry    string         `json:"inquiry"`
}

// ProductViews is one line of the metrics dashboard.
type ProductViews struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Views int    `json:"views"`
}

// ProductService serves the product page and the admin product panel.
type ProductService struct {
	products     *store.ProductStore
	views        *metrics.ViewCounter
	events       EventPublisher
	validate     *validation.Validator
	origin       string
	adminPerPage int
	relatedLimit int
}

// NewProductService creates a new ProductService.
func NewProductService(products *store.ProductStore, views *metrics.ViewCounter, events EventPublisher, origin string, adminPerPage, relatedLimit int) *ProductService {
	return &ProductService{
		products:     products,
		views:        views,
		events:       events,
		validate:     validation.New(),
		origin:       origin,
		adminPerPage: adminPerPage,
		relatedLimit: relatedLimit,
	}
}

// Detail loads the catalog if it is still empty, looks id up and counts a
// view when the product exists.
func (s *ProductService) Detail(ctx context.Context, id string) (*ProductDetail, error) {
	if err := s.products.EnsureLoaded(ctx); err != nil {
		logger.Error(ctx).Err(err).Msg("Error loading product")
		return nil, err
	}

	product, ok := s.products.Find(id)
	if !ok {
		return nil, ErrProductNotFound
	}
	s.views.Increment(id)

	detail := &ProductDetail{
		Product:    product,
		Images:     make([]string, 0, len(product.Images)),
		Colors:     models.RefNames(product.Colors),
		Categories: models.RefNames(product.Categories),
		Related:    []ProductCard{},
		Inquiry:    models.AvailabilityInquiry(product.Name),
	}
	for _, img := range product.Images {
		detail.Images = append(detail.Images, models.ResolveImage(s.origin, img))
	}
	if len(detail.Images) == 0 && product.Image != "" {
		detail.Images = append(detail.Images, models.ResolveImage(s.origin, product.Image))
	}
	for _, p := range s.products.Items() {
		if len(detail.Related) >= s.relatedLimit {
			break
		}
		if p.ID != product.ID && product.SharesCategory(p) {
			detail.Related = append(detail.Related, card(s.origin, p))
		}
	}
	return detail, nil
}

// AdminPage refreshes the product list and returns a fixed-size page of it,
// padded with placeholders. When the refresh fails the previous list is
// shown and the error returned alongside.
func (s *ProductService) AdminPage(ctx context.Context, page int) (projection.Page[models.Product], error) {
	err := s.products.FetchAll(ctx)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Error loading products")
	}
	return s.adminPage(page), err
}

func (s *ProductService) adminPage(page int) projection.Page[models.Product] {
	items := s.products.Items()
	pager := projection.NewPager()
	pager.GoTo(page, projection.TotalPages(len(items), s.adminPerPage))
	return projection.Paginate(items, s.adminPerPage, pager.Page(), nil, true)
}

// Find returns a product from the current list, for the edit form.
func (s *ProductService) Find(id string) (models.Product, bool) {
	return s.products.Find(id)
}

// Save creates the product when id is empty, updates it otherwise, then
// reloads the list.
func (s *ProductService) Save(ctx context.Context, id string, draft models.ProductDraft) (models.Product, error) {
	if err := s.validate.Struct(draft); err != nil {
		return models.Product{}, err
	}

	var (
		saved  models.Product
		err    error
		action = "create"
	)
	if id == "" {
		saved, err = s.products.Create(ctx, draft)
	} else {
		action = "update"
		saved, err = s.products.Update(ctx, id, draft)
	}
	if err != nil {
		logger.Error(ctx).Err(err).Str("action", action).Msg("Error saving product")
		return models.Product{}, err
	}

	publish(ctx, s.events, catalogChanged("product", action, saved.ID))
	if err := s.products.FetchAll(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Error reloading products after save")
	}
	return saved, nil
}

// Delete removes the product and reloads the list. It returns the page to
// show next: one page back when the deleted product was alone on its page.
func (s *ProductService) Delete(ctx context.Context, id string, page int) (int, error) {
	current := s.adminPage(page)
	page = current.CurrentPage
	onPage := len(current.Items)

	if err := s.products.Delete(ctx, id); err != nil {
		logger.Error(ctx).Err(err).Str("id", id).Msg("Error deleting product")
		return page, err
	}
	publish(ctx, s.events, catalogChanged("product", "delete", id))
	if err := s.products.FetchAll(ctx); err != nil {
		logger.Warn(ctx).Err(err).Msg("Error reloading products after delete")
	}

	if onPage == 1 && page > 1 {
		page--
	}
	return page, nil
}

// Load refreshes the product list.
func (s *ProductService) Load(ctx context.Context) error {
	if err := s.products.FetchAll(ctx); err != nil {
		logger.Error(ctx).Err(err).Msg("Error loading products")
		return err
	}
	return nil
}

// Metrics joins the product list with the view counters.
func (s *ProductService) Metrics() []ProductViews {
	counts := s.views.Snapshot()
	items := s.products.Items()
	out := make([]ProductViews, 0, len(items))
	for _, p := range items {
		out = append(out, ProductViews{ID: p.ID, Name: p.Name, Views: counts[p.ID]})
	}
	return out
}
