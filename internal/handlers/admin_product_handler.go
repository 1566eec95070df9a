package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/session"
)

// AdminProductHandler serves the admin product panel.
type AdminProductHandler struct {
	service *services.ProductService
	session *session.Store
}

// NewAdminProductHandler creates a new AdminProductHandler.
func NewAdminProductHandler(service *services.ProductService, sess *session.Store) *AdminProductHandler {
	return &AdminProductHandler{
		service: service,
		session: sess,
	}
}

// RegisterRoutes registers the product admin routes. router must already be
// protected by middleware.AdminRequired.
func (h *AdminProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Get("/:id", h.HandleEditForm)
	productRoutes.Post("/", h.HandleCreate)
	productRoutes.Put("/:id", h.HandleUpdate)
	productRoutes.Delete("/:id", h.HandleDelete)
}

// HandleList returns one padded page of products.
func (h *AdminProductHandler) HandleList(c *fiber.Ctx) error {
	page, err := h.service.AdminPage(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, h.session, "Could not load products", err, fiber.Map{"products": page})
	}
	return c.JSON(page)
}

// HandleEditForm returns the edit form of a product from the current list.
func (h *AdminProductHandler) HandleEditForm(c *fiber.Ctx) error {
	product, ok := h.service.Find(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %s not found", c.Params("id")),
		})
	}
	return c.JSON(fiber.Map{
		"product": product,
		"form":    models.DraftFromProduct(product),
		"sizes":   models.Sizes,
	})
}

// HandleCreate creates a product from a multipart or JSON form.
func (h *AdminProductHandler) HandleCreate(c *fiber.Ctx) error {
	return h.save(c, "")
}

// HandleUpdate updates a product from a multipart or JSON form.
func (h *AdminProductHandler) HandleUpdate(c *fiber.Ctx) error {
	return h.save(c, c.Params("id"))
}

func (h *AdminProductHandler) save(c *fiber.Ctx, id string) error {
	draft, err := parseProductDraft(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.Save(c.UserContext(), id, draft)
	if err != nil {
		return respondError(c, h.session, "Could not save product", err)
	}
	status := fiber.StatusOK
	if id == "" {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(product)
}

// HandleDelete deletes a product and returns the page to show next.
func (h *AdminProductHandler) HandleDelete(c *fiber.Ctx) error {
	page, err := h.service.Delete(c.UserContext(), c.Params("id"), c.QueryInt("page", 1))
	if err != nil {
		return respondError(c, h.session, "Could not delete product", err, fiber.Map{"page": page})
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted",
		"page":    page,
	})
}

// parseProductDraft reads the product form. Multipart requests may carry
// image files under "images"; list fields accept both "name" and "name[]".
func parseProductDraft(c *fiber.Ctx) (models.ProductDraft, error) {
	var draft models.ProductDraft
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		err := c.BodyParser(&draft)
		return draft, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return draft, err
	}
	draft.Name = first(form, "name")
	draft.Description = first(form, "description")
	if raw := first(form, "price"); raw != "" {
		if draft.Price, err = strconv.ParseFloat(raw, 64); err != nil {
			return draft, fmt.Errorf("invalid price %q", raw)
		}
	}
	draft.Sizes = values(form, "sizes")
	draft.Colors = values(form, "colors")
	draft.Categories = values(form, "categories")

	for _, raw := range values(form, "deletedImages") {
		if !strings.HasPrefix(raw, "[") {
			draft.DeletedImages = append(draft.DeletedImages, raw)
			continue
		}
		var locations []string
		if err := json.Unmarshal([]byte(raw), &locations); err != nil {
			return draft, fmt.Errorf("invalid deletedImages: %w", err)
		}
		draft.DeletedImages = append(draft.DeletedImages, locations...)
	}

	for _, key := range []string{"images", "images[]"} {
		for _, fh := range form.File[key] {
			upload, err := readUpload(fh)
			if err != nil {
				return draft, err
			}
			draft.Images = append(draft.Images, upload)
		}
	}
	return draft, nil
}

func first(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func values(form *multipart.Form, key string) []string {
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range form.Value[k] {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func readUpload(fh *multipart.FileHeader) (models.ImageUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return models.ImageUpload{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return models.ImageUpload{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return models.ImageUpload{Filename: fh.Filename, Data: data}, nil
}
