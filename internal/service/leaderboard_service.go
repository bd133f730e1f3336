package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/models"
	"github.com/noah-isme/nexus-api/internal/repository"
)

// LeaderboardService ranks seniors by the doubts they resolved.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error)
}

type leaderboardService struct {
	doubts repository.DoubtRepository
	logger zerolog.Logger
}

// NewLeaderboardService constructs a leaderboard service. Results are recomputed on every call.
func NewLeaderboardService(doubts repository.DoubtRepository, logger zerolog.Logger) LeaderboardService {
	return &leaderboardService{
		doubts: doubts,
		logger: logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	resolved, err := s.doubts.ListByStatus(ctx, models.DoubtStatusResolved)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load resolved doubts")
		return nil, fmt.Errorf("%w: %w", ErrDoubtPersistence, err)
	}

	return AggregateLeaderboard(resolved), nil
}
