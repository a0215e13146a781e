package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grademetrix-api/internal/service"
	"github.com/noah-isme/grademetrix-api/internal/utils"
)

// SummaryHandler wires the aggregate year, semester and progression views.
type SummaryHandler struct {
	service service.SummaryService
	logger  zerolog.Logger
}

// NewSummaryHandler constructs the handler.
func NewSummaryHandler(service service.SummaryService, logger zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{
		service: service,
		logger:  logger.With().Str("component", "summary_handler").Logger(),
	}
}

// Register attaches summary endpoints to the router group.
func (h *SummaryHandler) Register(router fiber.Router) {
	router.Get("/years/:year", h.year)
	router.Get("/years/:year/semesters/:semester", h.semester)
	router.Get("/years/:year/progression", h.progression)
}

func (h *SummaryHandler) year(c *fiber.Ctx) error {
	year := strings.TrimSpace(c.Params("year"))
	if year == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "academic year required")
	}

	summary, err := h.service.YearSummary(c.Context(), year)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("academic_year", year).Msg("failed to compute year summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute year summary")
	}

	return utils.SendSuccess(c, "year summary computed", summary)
}

func (h *SummaryHandler) semester(c *fiber.Ctx) error {
	year := strings.TrimSpace(c.Params("year"))
	semester, err := c.ParamsInt("semester")
	if err != nil || (semester != 1 && semester != 2) {
		return utils.SendError(c, fiber.StatusBadRequest, "semester must be 1 or 2")
	}

	summary, err := h.service.SemesterSummary(c.Context(), year, semester)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("academic_year", year).Int("semester", semester).Msg("failed to compute semester summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute semester summary")
	}

	return utils.SendSuccess(c, "semester summary computed", summary)
}

func (h *SummaryHandler) progression(c *fiber.Ctx) error {
	year := strings.TrimSpace(c.Params("year"))

	stage, err := parseQueryInt(c, "stage")
	if err != nil || stage < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stage")
	}
	if stage == 0 {
		stage = 1
	}

	result, err := h.service.Progression(c.Context(), year, stage)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("academic_year", year).Int("stage", stage).Msg("failed to evaluate progression")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to evaluate progression")
	}

	return utils.SendSuccess(c, "progression evaluated", result)
}
