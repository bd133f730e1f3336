package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/syllabus"
	"github.com/noah-isme/nexus-api/internal/utils"
)

// TutorHandler exposes the AI tutor.
type TutorHandler struct {
	service service.TutorService
	logger  zerolog.Logger
}

// NewTutorHandler constructs a tutor handler.
func NewTutorHandler(service service.TutorService, logger zerolog.Logger) *TutorHandler {
	return &TutorHandler{
		service: service,
		logger:  logger.With().Str("component", "tutor_handler").Logger(),
	}
}

// Register binds tutor routes. limiter guards the model-backed endpoints and may be nil.
func (h *TutorHandler) Register(router fiber.Router, limiter fiber.Handler) {
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/explain", limiter, h.explain)
	router.Post("/explain/bulk", limiter, h.explainBulk)
	router.Post("/resources", limiter, h.resources)
	router.Get("/history", h.history)
}

func (h *TutorHandler) explain(c *fiber.Ctx) error {
	var payload dto.TutorExplainRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.Explain(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "explanation", resp)
}

func (h *TutorHandler) explainBulk(c *fiber.Ctx) error {
	var payload dto.TutorBulkExplainRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.ExplainBulk(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "explanations", resp)
}

func (h *TutorHandler) resources(c *fiber.Ctx) error {
	var payload dto.TutorResourcesRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.service.Resources(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "resources", resp)
}

func (h *TutorHandler) history(c *fiber.Ctx) error {
	limit, offset, err := pagination(c, 20, 100)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid pagination")
	}

	entries, err := h.service.History(requestContext(c), userIDFromContext(c), limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load tutor history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load history")
	}
	return utils.SendSuccess(c, "tutor history", entries)
}

func (h *TutorHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTutorValidation):
		return sendValidationError(c, service.ErrTutorValidation.Error(), err)
	case errors.Is(err, syllabus.ErrSubjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTutorUnavailable):
		return utils.SendError(c, fiber.StatusBadGateway, service.ErrTutorUnavailable.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("tutor request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
