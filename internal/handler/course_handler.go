package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grademetrix-api/internal/dto"
	"github.com/noah-isme/grademetrix-api/internal/service"
	"github.com/noah-isme/grademetrix-api/internal/utils"
)

// CourseHandler wires course CRUD endpoints.
type CourseHandler struct {
	service   service.CourseService
	summaries service.SummaryService
	logger    zerolog.Logger
}

// NewCourseHandler constructs the handler. The summary service is used for
// cache invalidation after mutations.
func NewCourseHandler(service service.CourseService, summaries service.SummaryService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		service:   service,
		summaries: summaries,
		logger:    logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/", h.save)
	router.Delete("/:id", h.remove)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	year := strings.TrimSpace(c.Query("academic_year"))
	if year == "" {
		courses, err := h.service.List(c.Context())
		if err != nil {
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to list courses")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
		}
		return utils.SendSuccess(c, "courses retrieved", courses)
	}

	var semesterPtr *int
	if raw := strings.TrimSpace(c.Query("semester")); raw != "" {
		semester, err := parseQueryInt(c, "semester")
		if err != nil || (semester != 1 && semester != 2) {
			return utils.SendError(c, fiber.StatusBadRequest, "semester must be 1 or 2")
		}
		semesterPtr = &semester
	}

	courses, err := h.service.ListScope(c.Context(), year, semesterPtr)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("academic_year", year).Msg("failed to list courses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list courses")
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) save(c *fiber.Ctx) error {
	var payload dto.CourseSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	course, created, err := h.service.Save(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCourseName):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to save course")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to save course")
		}
	}

	h.summaries.InvalidateYear(c.Context(), course.AcademicYear)

	if created {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
	}
	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) remove(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	deleted, err := h.service.Delete(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "course not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("course_id", id).Msg("failed to delete course")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete course")
	}

	h.summaries.InvalidateYear(c.Context(), deleted.AcademicYear)

	return utils.SendSuccess(c, "course deleted", deleted)
}
