package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grademetrix-api/internal/service"
	"github.com/noah-isme/grademetrix-api/internal/utils"
)

// BackupHandler wires JSON snapshot export and restore.
type BackupHandler struct {
	service   service.BackupService
	summaries service.SummaryService
	logger    zerolog.Logger
}

// NewBackupHandler constructs the handler.
func NewBackupHandler(service service.BackupService, summaries service.SummaryService, logger zerolog.Logger) *BackupHandler {
	return &BackupHandler{
		service:   service,
		summaries: summaries,
		logger:    logger.With().Str("component", "backup_handler").Logger(),
	}
}

// Register attaches backup endpoints to the router group.
func (h *BackupHandler) Register(router fiber.Router) {
	router.Get("/", h.export)
	router.Post("/", h.restore)
}

func (h *BackupHandler) export(c *fiber.Ctx) error {
	snapshot, err := h.service.Export(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export backup")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export backup")
	}

	return utils.SendSuccess(c, "backup exported", snapshot)
}

func (h *BackupHandler) restore(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "backup payload required")
	}

	summary, err := h.service.Restore(c.Context(), body)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBackup) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to restore backup")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to restore backup")
	}

	h.summaries.InvalidateAll(c.Context())

	return utils.SendSuccess(c, "backup restored", summary)
}
