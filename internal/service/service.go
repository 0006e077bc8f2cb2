package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"AlertConsoleAPI/internal/gateway"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/models"
	"AlertConsoleAPI/internal/session"
)

// Forwarder is the part of the gateway the services need.
type Forwarder interface {
	Forward(ctx context.Context, store session.Store, req gateway.Request) (*gateway.Response, error)
}

// EventPublisher receives audit events. The MQTT client implements it.
type EventPublisher interface {
	PublishEvent(event models.Event) error
}

// Broadcaster pushes progress to live consoles. The websocket hub implements it.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{})
}

func newEvent(eventType string, payload interface{}) models.Event {
	return models.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

func publish(events EventPublisher, log *logger.Logger, eventType string, payload interface{}) {
	if events == nil {
		return
	}
	if err := events.PublishEvent(newEvent(eventType, payload)); err != nil {
		log.Warn("Failed to publish %s event: %v", eventType, err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
