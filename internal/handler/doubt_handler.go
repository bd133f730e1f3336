package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/utils"
)

// DoubtHandler exposes the senior bridge endpoints.
type DoubtHandler struct {
	service service.DoubtService
	logger  zerolog.Logger
}

// NewDoubtHandler constructs a doubt handler.
func NewDoubtHandler(service service.DoubtService, logger zerolog.Logger) *DoubtHandler {
	return &DoubtHandler{
		service: service,
		logger:  logger.With().Str("component", "doubt_handler").Logger(),
	}
}

// Register binds doubt routes. Static paths are registered before :id.
func (h *DoubtHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/open", h.listOpen)
	router.Get("/mine", h.listMine)
	router.Get("/:id", h.get)
	router.Post("/:id/resolve", h.resolve)
}

func (h *DoubtHandler) create(c *fiber.Ctx) error {
	var payload dto.DoubtCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Create(requestContext(c), identityFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "doubt submitted", response)
}

func (h *DoubtHandler) listOpen(c *fiber.Ctx) error {
	doubts, err := h.service.ListOpen(requestContext(c), identityFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "open doubts", doubts)
}

func (h *DoubtHandler) listMine(c *fiber.Ctx) error {
	doubts, err := h.service.ListMine(requestContext(c), identityFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "your doubts", doubts)
}

func (h *DoubtHandler) get(c *fiber.Ctx) error {
	doubt, err := h.service.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "doubt", doubt)
}

func (h *DoubtHandler) resolve(c *fiber.Ctx) error {
	var payload dto.DoubtResolveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Resolve(requestContext(c), identityFromContext(c), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "doubt resolved", response)
}

func (h *DoubtHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrDoubtValidation):
		return sendValidationError(c, service.ErrDoubtValidation.Error(), err)
	case errors.Is(err, service.ErrDoubtNotFound):
		return utils.SendError(c, fiber.StatusNotFound, service.ErrDoubtNotFound.Error())
	case errors.Is(err, service.ErrDoubtNotPending):
		return utils.SendError(c, fiber.StatusConflict, service.ErrDoubtNotPending.Error())
	case errors.Is(err, service.ErrResolverIneligible):
		return utils.SendError(c, fiber.StatusForbidden, service.ErrResolverIneligible.Error())
	case errors.Is(err, service.ErrProfileRequired):
		return utils.SendError(c, fiber.StatusPreconditionFailed, service.ErrProfileRequired.Error())
	case errors.Is(err, service.ErrDoubtPersistence):
		requestLogger(h.logger, c).Error().Err(err).Msg("doubt store unavailable")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "doubt store unavailable, please try again")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("unexpected doubt error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
