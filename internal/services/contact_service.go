package services

import (
	"context"
	"net/http"

	"storefront/internal/apiclient"
	"storefront/internal/models"
	"storefront/internal/validation"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"
)

// Messages shown after a contact form submission.
const (
	ContactSent        = "Message sent successfully. We will contact you soon."
	ContactFailed      = "Error sending the message. Please try again."
	ContactUnreachable = "Connection error. Please try again."
)

// ContactService forwards contact form submissions to the backend.
type ContactService struct {
	client   *apiclient.Client
	events   EventPublisher
	validate *validation.Validator
}

// NewContactService creates a new ContactService.
func NewContactService(client *apiclient.Client, events EventPublisher) *ContactService {
	return &ContactService{
		client:   client,
		events:   events,
		validate: validation.New(),
	}
}

// Prefill returns the initial form, asking about productName when given.
func (s *ContactService) Prefill(productName string) models.ContactMessage {
	if productName == "" {
		return models.ContactMessage{}
	}
	return models.ContactMessage{Message: models.AvailabilityInquiry(productName)}
}

// Submit validates msg and posts it to the backend.
func (s *ContactService) Submit(ctx context.Context, msg models.ContactMessage) error {
	if err := s.validate.Struct(msg); err != nil {
		return err
	}
	_, err := s.client.Request(ctx, "/api/contacts", apiclient.RequestOptions{
		Method: http.MethodPost,
		Body:   apiclient.JSON{Value: msg},
	})
	if err != nil {
		logger.Error(ctx).Err(err).Msg("Error sending contact message")
		return err
	}
	publish(ctx, s.events, rabbitmq.Event{
		Type:    rabbitmq.EventContactSubmitted,
		Payload: msg,
	})
	return nil
}

// ContactStatus turns the result of Submit into the message shown to the
// visitor.
func ContactStatus(err error) string {
	switch {
	case err == nil:
		return ContactSent
	case apiclient.IsNetwork(err):
		return ContactUnreachable
	default:
		return ContactFailed
	}
}
