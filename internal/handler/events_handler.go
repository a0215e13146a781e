package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grademetrix-api/internal/middleware"
	"github.com/noah-isme/grademetrix-api/internal/service"
)

// EventsHandler streams course-change events over a websocket so the UI can
// refresh summaries without polling.
type EventsHandler struct {
	notifier service.ChangeNotifier
	logger   zerolog.Logger
}

// NewEventsHandler constructs the handler.
func NewEventsHandler(notifier service.ChangeNotifier, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		notifier: notifier,
		logger:   logger.With().Str("component", "events_handler").Logger(),
	}
}

// Register binds the websocket upgrade under the provided router group.
func (h *EventsHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("correlation_id", middleware.GetCorrelationID(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *EventsHandler) handleConnection(conn *websocket.Conn) {
	events, cancel := h.notifier.Subscribe()
	defer cancel()

	h.logger.Info().Msg("events websocket connected")
	defer h.logger.Info().Msg("events websocket disconnected")

	// Drain client frames so close/ping control messages are processed;
	// inbound payloads are ignored.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
