package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

// CatalogHandler serves the public catalog and product pages.
type CatalogHandler struct {
	catalog  *services.CatalogService
	products *services.ProductService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService, products *services.ProductService) *CatalogHandler {
	return &CatalogHandler{
		catalog:  catalog,
		products: products,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/catalog", h.HandleCatalog)
	router.Get("/products/:id", h.HandleProductDetail)
}

// HandleCatalog returns one page of the catalog, filtered by category name.
// When the refresh fails the last loaded products are still returned.
func (h *CatalogHandler) HandleCatalog(c *fiber.Ctx) error {
	err := h.catalog.Load(c.UserContext())
	view := h.catalog.Page(c.Query("category", "all"), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, nil, "Could not load products", err, fiber.Map{"catalog": view})
	}
	return c.JSON(view)
}

// HandleProductDetail returns a product with its related products. Each
// successful call counts as a view.
func (h *CatalogHandler) HandleProductDetail(c *fiber.Ctx) error {
	detail, err := h.products.Detail(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, nil, "Could not load product", err)
	}
	return c.JSON(detail)
}
