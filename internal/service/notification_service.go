package service

import (
	"context"

	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/pkg/events"
	pktNats "ai-ops-copilot-be/pkg/nats" // Renamed to avoid collision
)

type INotificationService interface {
	Listen() error
}

// notificationService relays workflow events from the bus to the operator
// console feed. Every instance runs one, so consoles connected to an
// instance other than the one executing a workflow still see the event.
type notificationService struct {
	subscriber *pktNats.Subscriber
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery EventDelivery, log logger.ILogger) INotificationService {
	return &notificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Listen attaches a durable consumer to the event bus. The durable name is
// shared so redeliveries resume where the instance left off after a restart.
func (s *notificationService) Listen() error {
	if s.subscriber == nil {
		s.logger.Warn("NotificationService", "Event bus unavailable, console feed limited to local events", nil)
		return nil
	}

	if err := s.subscriber.Subscribe("events.>", "console-feed-worker", s.handleEvent); err != nil {
		s.logger.Error("NotificationService", "Failed to start event bus subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}

	s.logger.Info("NotificationService", "Console feed listening to events.>", nil)
	return nil
}

func (s *notificationService) handleEvent(_ context.Context, event events.Event) error {
	s.logger.Info("NotificationService", "Relaying event to console feed", map[string]interface{}{"type": event.EventType()})

	if s.delivery != nil {
		s.delivery.Broadcast(event)
	}
	return nil
}
