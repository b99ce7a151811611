package handler

import (
	"time"

	"ai-ops-copilot-be/internal/pkg/logger"
	internalWS "ai-ops-copilot-be/internal/websocket"
	"ai-ops-copilot-be/pkg/events"
	pktNats "ai-ops-copilot-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// NotificationHandler exposes the operator console feed: a websocket that
// streams workflow events (review requests, completions, safety alerts).
type NotificationHandler struct {
	publisher *pktNats.Publisher
	hub       *internalWS.Hub
	logger    logger.ILogger
}

func NewNotificationHandler(pub *pktNats.Publisher, hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		publisher: pub,
		hub:       hub,
		logger:    log,
	}
}

// ServeWs handles websocket requests from an operator console.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	operatorID := c.Query("operator_id")
	if operatorID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing operator_id query parameter"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("NotificationHandler", "Starting WebSocket session", map[string]interface{}{"operator_id": operatorID})
			internalWS.ServeWs(h.hub, conn, operatorID)
			h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"operator_id": operatorID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// DebugTriggerEvent simulates an event to test the feed end to end.
func (h *NotificationHandler) DebugTriggerEvent(c *fiber.Ctx) error {
	type Request struct {
		Type    string                 `json:"type"`
		Payload map[string]interface{} `json:"payload"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Type == "" {
		req.Type = "TEST_EVENT"
	}
	if req.Payload == nil {
		req.Payload = make(map[string]interface{})
	}

	evt := events.BaseEvent{
		Type:       req.Type,
		Data:       req.Payload,
		OccurredAt: time.Now(),
	}

	if h.publisher == nil {
		// No NATS configured; deliver directly to connected consoles.
		h.hub.Broadcast(evt)
		return c.JSON(fiber.Map{"status": "Event Broadcast (local only)", "event": evt})
	}

	if err := h.publisher.Publish(c.UserContext(), evt); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"status": "Event Published", "event": evt})
}

// RegisterRoutes registers the notification feed routes.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	debug := router.Group("/debug")
	debug.Post("/trigger-notification", h.DebugTriggerEvent)

	// WebSocket
	router.Get("/ws/notifications", h.ServeWs)
}
