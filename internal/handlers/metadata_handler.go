package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/session"
)

// MetadataHandler serves the category and color admin panels.
type MetadataHandler struct {
	service *services.MetadataService
	session *session.Store
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(service *services.MetadataService, sess *session.Store) *MetadataHandler {
	return &MetadataHandler{
		service: service,
		session: sess,
	}
}

// namedOps binds the operations of one named entity list.
type namedOps[T any] struct {
	label  string
	load   func(context.Context) error
	list   func() []T
	create func(context.Context, models.NameDraft) (T, error)
	update func(context.Context, string, models.NameDraft) (T, error)
	delete func(context.Context, string) error
}

// RegisterRoutes registers the category and color routes. router must
// already be protected by middleware.AdminRequired.
func (h *MetadataHandler) RegisterRoutes(router fiber.Router) {
	registerNamed(router.Group("/categories"), h, namedOps[models.Category]{
		label:  "category",
		load:   h.service.LoadCategories,
		list:   h.service.Categories,
		create: h.service.CreateCategory,
		update: h.service.UpdateCategory,
		delete: h.service.DeleteCategory,
	})
	registerNamed(router.Group("/colors"), h, namedOps[models.Color]{
		label:  "color",
		load:   h.service.LoadColors,
		list:   h.service.Colors,
		create: h.service.CreateColor,
		update: h.service.UpdateColor,
		delete: h.service.DeleteColor,
	})
}

func registerNamed[T any](router fiber.Router, h *MetadataHandler, ops namedOps[T]) {
	router.Get("/", func(c *fiber.Ctx) error {
		if err := ops.load(c.UserContext()); err != nil {
			return respondError(c, h.session, "Could not load "+ops.label+" list", err, fiber.Map{"items": ops.list()})
		}
		return c.JSON(ops.list())
	})

	router.Post("/", func(c *fiber.Ctx) error {
		draft, err := parseNameDraft(c)
		if err != nil {
			return err
		}
		item, err := ops.create(c.UserContext(), draft)
		if err != nil {
			return respondError(c, h.session, "Could not create "+ops.label, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	router.Put("/:id", func(c *fiber.Ctx) error {
		draft, err := parseNameDraft(c)
		if err != nil {
			return err
		}
		item, err := ops.update(c.UserContext(), c.Params("id"), draft)
		if err != nil {
			return respondError(c, h.session, "Could not update "+ops.label, err)
		}
		return c.JSON(item)
	})

	router.Delete("/:id", func(c *fiber.Ctx) error {
		if err := ops.delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, h.session, "Could not delete "+ops.label, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func parseNameDraft(c *fiber.Ctx) (models.NameDraft, error) {
	var draft models.NameDraft
	if err := c.BodyParser(&draft); err != nil {
		return draft, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return draft, nil
}
