package services

import (
	"context"

	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"
)

// EventPublisher sends storefront notifications. A nil publisher disables
// them.
type EventPublisher interface {
	PublishEvent(event rabbitmq.Event) error
}

func publish(ctx context.Context, pub EventPublisher, event rabbitmq.Event) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(event); err != nil {
		logger.Warn(ctx).Err(err).Str("type", event.Type).Msg("Error publishing event")
	}
}

func catalogChanged(entity, action, id string) rabbitmq.Event {
	return rabbitmq.Event{
		Type:     rabbitmq.EventCatalogChanged,
		Entity:   entity,
		Action:   action,
		EntityID: id,
	}
}
