package handler

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/grademetrix-api/internal/service"
	"github.com/noah-isme/grademetrix-api/internal/utils"
	"github.com/noah-isme/grademetrix-api/pkg/archive"
)

// Workbooks (xlsx is a zip container) sniffed from upload content.
var allowedWorkbookTypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/zip",
	"application/x-zip-compressed",
}

// TransferHandler wires workbook export/import endpoints.
type TransferHandler struct {
	service   service.TransferService
	summaries service.SummaryService
	logger    zerolog.Logger
}

// NewTransferHandler constructs the handler.
func NewTransferHandler(service service.TransferService, summaries service.SummaryService, logger zerolog.Logger) *TransferHandler {
	return &TransferHandler{
		service:   service,
		summaries: summaries,
		logger:    logger.With().Str("component", "transfer_handler").Logger(),
	}
}

// Register attaches transfer endpoints to the router group.
func (h *TransferHandler) Register(router fiber.Router) {
	router.Get("/export", h.export)
	router.Post("/import", h.importWorkbook)
	router.Post("/import/archive", h.importArchive)
}

func (h *TransferHandler) export(c *fiber.Ctx) error {
	fileName, data, err := h.service.Export(c.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoCourses) {
			return utils.SendError(c, fiber.StatusConflict, "no courses to export")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export workbook")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export workbook")
	}

	c.Set(fiber.HeaderContentType, allowedWorkbookTypes[0])
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(data)
}

func (h *TransferHandler) importWorkbook(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file upload required")
	}

	reader, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to open upload")
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to detect file type")
	}

	allowed := false
	for _, a := range allowedWorkbookTypes {
		if mime.Is(a) {
			allowed = true
			break
		}
	}
	if !allowed {
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, fmt.Sprintf("unsupported file type %s", mime.String()))
	}

	if _, err := reader.Seek(0, 0); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to rewind upload")
	}

	summary, err := h.service.Import(c.Context(), reader)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("file", file.Filename).Msg("failed to import workbook")
		return utils.SendError(c, fiber.StatusBadRequest, "failed to import workbook")
	}

	h.summaries.InvalidateAll(c.Context())

	return utils.SendSuccess(c, "workbook imported", summary)
}

func (h *TransferHandler) importArchive(c *fiber.Ctx) error {
	batch, err := h.service.ImportArchive(c.Context())
	if err != nil {
		if errors.Is(err, archive.ErrUnavailable) {
			return utils.SendError(c, fiber.StatusConflict, "archive folder not configured")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to import archive folder")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to import archive folder")
	}

	h.summaries.InvalidateAll(c.Context())

	return utils.SendSuccess(c, "archive folder imported", batch)
}
