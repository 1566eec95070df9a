package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
	"storefront/internal/session"
)

// MetricsHandler serves the product views dashboard.
type MetricsHandler struct {
	service *services.ProductService
	session *session.Store
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(service *services.ProductService, sess *session.Store) *MetricsHandler {
	return &MetricsHandler{
		service: service,
		session: sess,
	}
}

// RegisterRoutes registers the dashboard route.
func (h *MetricsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/metrics", h.HandleViews)
}

// HandleViews lists every product with its view count since start.
func (h *MetricsHandler) HandleViews(c *fiber.Ctx) error {
	if err := h.service.Load(c.UserContext()); err != nil {
		return respondError(c, h.session, "Could not load products", err, fiber.Map{"products": h.service.Metrics()})
	}
	return c.JSON(h.service.Metrics())
}
