package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/syllabus"
	"github.com/noah-isme/nexus-api/internal/utils"
)

// SyllabusHandler serves syllabus documents and the subject catalog.
type SyllabusHandler struct {
	service service.SyllabusService
	logger  zerolog.Logger
}

// NewSyllabusHandler constructs a syllabus handler.
func NewSyllabusHandler(service service.SyllabusService, logger zerolog.Logger) *SyllabusHandler {
	return &SyllabusHandler{
		service: service,
		logger:  logger.With().Str("component", "syllabus_handler").Logger(),
	}
}

// Register binds syllabus document routes.
func (h *SyllabusHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterSubjects binds subject catalog routes.
func (h *SyllabusHandler) RegisterSubjects(router fiber.Router) {
	router.Get("", h.subjects)
	router.Get("/:code", h.subject)
	router.Get("/:code/units/:slug", h.unit)
}

// RegisterAdmin binds document management routes.
func (h *SyllabusHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/:id/pdf", h.upload)
}

func (h *SyllabusHandler) list(c *fiber.Ctx) error {
	year, err := parseQueryInt(c, "year")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid year")
	}

	items, err := h.service.List(requestContext(c), c.Query("major"), year)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list syllabuses")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list syllabuses")
	}
	return utils.SendSuccess(c, "syllabuses", items)
}

func (h *SyllabusHandler) get(c *fiber.Ctx) error {
	item, err := h.service.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "syllabus", item)
}

func (h *SyllabusHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrUploadMissing.Error())
	}

	result, err := h.service.UploadPDF(requestContext(c), c.Params("id"), file)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "syllabus document uploaded", result)
}

func (h *SyllabusHandler) subjects(c *fiber.Ctx) error {
	year, err := parseQueryInt(c, "year")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid year")
	}
	return utils.SendSuccess(c, "subjects", h.service.Subjects(c.Query("major"), year))
}

func (h *SyllabusHandler) subject(c *fiber.Ctx) error {
	subject, err := h.service.Subject(c.Params("code"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "subject", subject)
}

func (h *SyllabusHandler) unit(c *fiber.Ctx) error {
	unit, err := h.service.Unit(c.Params("code"), c.Params("slug"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "unit", unit)
}

func (h *SyllabusHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSyllabusNotFound),
		errors.Is(err, syllabus.ErrSubjectNotFound),
		errors.Is(err, syllabus.ErrUnitNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrUploadTypeNotAllowed), errors.Is(err, service.ErrUploadMissing):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("syllabus operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
