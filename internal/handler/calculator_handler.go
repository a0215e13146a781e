package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/service"
	"github.com/noah-isme/grademetrix-api/internal/utils"
)

// CalculatorHandler wires the live grade calculator endpoint.
type CalculatorHandler struct {
	service service.CalculatorService
	logger  zerolog.Logger
}

// NewCalculatorHandler constructs the handler.
func NewCalculatorHandler(service service.CalculatorService, logger zerolog.Logger) *CalculatorHandler {
	return &CalculatorHandler{
		service: service,
		logger:  logger.With().Str("component", "calculator_handler").Logger(),
	}
}

// Register attaches calculator endpoints to the router group.
func (h *CalculatorHandler) Register(router fiber.Router) {
	router.Post("/preview", h.preview)
}

func (h *CalculatorHandler) preview(c *fiber.Ctx) error {
	var payload dto.GradePreviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	preview, err := h.service.Preview(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute grade preview")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute grade preview")
	}

	return utils.SendSuccess(c, "grade preview computed", preview)
}
