package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"github.com/noteduco342/lanchat-backend/internal/handlers/ws"
	"github.com/noteduco342/lanchat-backend/internal/models"
)

type WebSocketOptions struct {
	EventsPerSecond float64
	EventBurst      int
	Debug           bool
}

type WebSocketHandler struct {
	engine *dispatch.Engine
	opts   WebSocketOptions
	log    *slog.Logger
}

func NewWebSocketHandler(engine *dispatch.Engine, opts WebSocketOptions, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{engine: engine, opts: opts, log: logger}
}

// Upgrade lets only authenticated WebSocket handshakes through to HandleWebSocket.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		_ = c.Close()
		return
	}

	// Check if client supports gzip compression (via query param or header)
	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"

	log := h.log.With("user_id", user.ID)
	client := ws.NewClient(c, user.ID, ws.ClientOptions{
		SupportsGzip:    supportsGzip,
		EventsPerSecond: h.opts.EventsPerSecond,
		EventBurst:      h.opts.EventBurst,
		Logger:          log,
	})
	log = log.With("conn_id", client.ID())

	go client.WritePump()
	h.engine.Admit(user, client)
	log.Info("websocket connected", "gzip", supportsGzip)

	defer func() {
		h.engine.Leave(user.ID, client.ID())
		client.Close()
		log.Info("websocket disconnected")
	}()

	ctx := &ws.MessageContext{
		User:   user,
		Conn:   client,
		Engine: h.engine,
		Log:    log,
	}

	client.ReadPump(func(raw []byte) {
		if h.opts.Debug {
			log.Debug("ws_recv", "size", len(raw))
		}
		ws.Handle(ctx, raw)
	})
}
