package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/lanchat-backend/internal/presence"
)

// OnlineCounter reports the size of the shared online-user mirror.
type OnlineCounter interface {
	GetOnlineCount() (int64, error)
}

type HealthHandler struct {
	directory *presence.Directory
	mirror    OnlineCounter
	log       *slog.Logger
}

// NewHealthHandler reports the in-process presence count and, when mirror is
// non-nil, the count other processes see in the shared mirror.
func NewHealthHandler(directory *presence.Directory, mirror OnlineCounter, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{directory: directory, mirror: mirror, log: logger}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status": "ok",
		"online": h.directory.Count(),
	}
	if h.mirror != nil {
		count, err := h.mirror.GetOnlineCount()
		if err != nil {
			h.log.Warn("online mirror unavailable", "error", err)
			resp["mirrored"] = nil
		} else {
			resp["mirrored"] = count
		}
	}
	return c.JSON(resp)
}
