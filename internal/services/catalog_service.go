package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"storefront/internal/models"
	"storefront/internal/projection"
	"storefront/internal/store"
	"storefront/pkg/logger"
)

// ProductCard is a product as shown in a grid.
type ProductCard struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	AltImage string  `json:"alt_image,omitempty"`
}

// CatalogPage is the public catalog view.
type CatalogPage struct {
	Categories     []models.Category            `json:"categories"`
	Filter         string                       `json:"filter"`
	Products       projection.Page[ProductCard] `json:"products"`
	ShowPagination bool                         `json:"show_pagination"`
	Summary        string                       `json:"summary,omitempty"`
	PrevPage       *int                         `json:"prev_page,omitempty"`
	NextPage       *int                         `json:"next_page,omitempty"`
}

// CatalogService builds the public catalog grid.
type CatalogService struct {
	products   *store.ProductStore
	categories *store.CategoryStore
	origin     string
	pageSize   int
}

// NewCatalogService creates a new CatalogService. origin resolves relative
// image paths.
func NewCatalogService(products *store.ProductStore, categories *store.CategoryStore, origin string, pageSize int) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		origin:     origin,
		pageSize:   pageSize,
	}
}

// Load refreshes products and categories concurrently. Each store applies
// its own result; a failed store keeps its previous collection and the
// first error is returned for display.
func (s *CatalogService) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.products.FetchAll(ctx) })
	g.Go(func() error { return s.categories.FetchAll(ctx) })
	if err := g.Wait(); err != nil {
		logger.Error(ctx).Err(err).Msg("Error loading catalog")
		return err
	}
	return nil
}

// Page projects the catalog for a category filter and a requested page.
// A page outside the available range leaves the view on page 1.
func (s *CatalogService) Page(filter string, page int) CatalogPage {
	pager := projection.NewPager()
	pager.SetFilter(filter)

	items := s.products.Items()
	keep := projection.ByCategory(pager.Filter())
	total := projection.Paginate(items, s.pageSize, 1, keep, false).TotalPages
	pager.GoTo(page, total)

	products := projection.Paginate(items, s.pageSize, pager.Page(), keep, false)
	view := CatalogPage{
		Categories:     s.categories.Items(),
		Filter:         pager.Filter(),
		Products:       mapPage(products, func(p models.Product) ProductCard { return card(s.origin, p) }),
		ShowPagination: products.ShowControls(),
	}
	if view.ShowPagination {
		view.Summary = fmt.Sprintf("Page %d of %d • %d products", products.CurrentPage, products.TotalPages, products.TotalItems)
	}
	if products.HasPrev() {
		prev := products.CurrentPage - 1
		view.PrevPage = &prev
	}
	if products.HasNext() {
		next := products.CurrentPage + 1
		view.NextPage = &next
	}
	return view
}

func card(origin string, p models.Product) ProductCard {
	return ProductCard{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    models.ResolveImage(origin, p.PrimaryImage()),
		AltImage: models.ResolveImage(origin, p.SecondaryImage()),
	}
}

func mapPage[T, U any](page projection.Page[T], f func(T) U) projection.Page[U] {
	out := projection.Page[U]{
		Items:        make([]U, 0, len(page.Items)),
		Placeholders: page.Placeholders,
		CurrentPage:  page.CurrentPage,
		PageSize:     page.PageSize,
		TotalPages:   page.TotalPages,
		TotalItems:   page.TotalItems,
		Window:       page.Window,
	}
	for _, item := range page.Items {
		out.Items = append(out.Items, f(item))
	}
	return out
}
