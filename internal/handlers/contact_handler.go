package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/models"
	"storefront/internal/services"
)

// ContactHandler serves the public contact form.
type ContactHandler struct {
	service *services.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// RegisterRoutes registers the contact routes.
func (h *ContactHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/contact", h.HandleForm)
	router.Post("/contact", h.HandleSubmit)
}

// HandleForm returns the initial form, prefilled when productName is given.
func (h *ContactHandler) HandleForm(c *fiber.Ctx) error {
	return c.JSON(h.service.Prefill(c.Query("productName")))
}

// HandleSubmit forwards the message to the backend. On failure the form
// values are echoed back so they can be corrected and resent.
func (h *ContactHandler) HandleSubmit(c *fiber.Ctx) error {
	var msg models.ContactMessage
	if err := c.BodyParser(&msg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.service.Submit(c.UserContext(), msg); err != nil {
		return respondError(c, nil, services.ContactStatus(err), err, fiber.Map{"form": msg})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": services.ContactStatus(nil),
	})
}
