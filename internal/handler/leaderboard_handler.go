package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/utils"
)

// LeaderboardHandler serves the helper leaderboard.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs a leaderboard handler.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register binds the leaderboard route.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("", h.get)
}

func (h *LeaderboardHandler) get(c *fiber.Ctx) error {
	entries, err := h.service.GetLeaderboard(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build leaderboard")
		return utils.SendError(c, fiber.StatusServiceUnavailable, "leaderboard unavailable, please try again")
	}
	return utils.SendSuccess(c, "leaderboard", entries)
}
