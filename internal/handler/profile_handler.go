package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/utils"
)

// ProfileHandler manages the caller's own student profile.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register binds profile routes.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("", h.get)
	router.Put("", h.upsert)
}

// Departments lists the department catalog.
func (h *ProfileHandler) Departments(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "departments", h.service.Departments())
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	profile, err := h.service.Get(requestContext(c), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "profile", profile)
}

func (h *ProfileHandler) upsert(c *fiber.Ctx) error {
	var payload dto.ProfileUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.service.Upsert(requestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "profile saved", profile)
}

func (h *ProfileHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProfileValidation):
		return sendValidationError(c, service.ErrProfileValidation.Error(), err)
	case errors.Is(err, service.ErrProfileNotFound):
		return utils.SendError(c, fiber.StatusNotFound, service.ErrProfileNotFound.Error())
	case errors.Is(err, service.ErrProfileEmailTaken):
		return utils.SendError(c, fiber.StatusConflict, service.ErrProfileEmailTaken.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("profile operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
