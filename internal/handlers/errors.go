package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apiclient"
	"storefront/internal/services"
	"storefront/internal/session"
	"storefront/internal/validation"
	"storefront/pkg/logger"
)

// respondError writes the JSON error response for err. Fields in extra are
// added to the body, so views can keep showing their previous data. When
// sess is set, a 401 from the backend logs the admin out.
func respondError(c *fiber.Ctx, sess *session.Store, message string, err error, extra ...fiber.Map) error {
	ctx := c.UserContext()
	status, body := fiber.StatusInternalServerError, fiber.Map{"message": message, "error": err.Error()}

	var (
		validationErr *validation.Error
		loginErr      *services.LoginError
		requestErr    *apiclient.RequestError
	)
	switch {
	case errors.As(err, &validationErr):
		status = fiber.StatusBadRequest
		body = fiber.Map{"message": "Validation failed", "errors": validationErr.Fields}
	case errors.Is(err, services.ErrProductNotFound):
		status = fiber.StatusNotFound
	case errors.As(err, &loginErr):
		status = fiber.StatusUnauthorized
		body["error"] = loginErr.Message
	case errors.Is(err, services.ErrBackendUnavailable), apiclient.IsNetwork(err):
		status = fiber.StatusBadGateway
	case errors.As(err, &requestErr):
		status = requestErr.Status
		if status >= http.StatusInternalServerError {
			status = fiber.StatusBadGateway
		}
		body["error"] = requestErr.Message()
		if sess != nil && sess.Invalidate(ctx, err) {
			status = fiber.StatusUnauthorized
			body["message"] = "Session expired, please log in again"
		}
	}

	for _, m := range extra {
		for k, v := range m {
			body[k] = v
		}
	}
	if status >= fiber.StatusInternalServerError {
		logger.Error(ctx).Err(err).Int("status", status).Str("path", c.Path()).Msg(message)
	}
	return c.Status(status).JSON(body)
}
