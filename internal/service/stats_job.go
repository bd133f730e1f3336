package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nexus-api/internal/observability"
	"github.com/noah-isme/nexus-api/internal/repository"
)

// StatsJob periodically refreshes the doubts-by-status gauge.
type StatsJob struct {
	doubts    repository.DoubtRepository
	interval  time.Duration
	scheduler gocron.Scheduler
	logger    zerolog.Logger
}

// NewStatsJob builds the job; Start must be called to schedule it.
func NewStatsJob(doubts repository.DoubtRepository, interval time.Duration, logger zerolog.Logger) *StatsJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsJob{
		doubts:   doubts,
		interval: interval,
		logger:   logger.With().Str("component", "stats_job").Logger(),
	}
}

// Start refreshes the gauge once and then on every interval tick.
func (j *StatsJob) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(j.interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := j.Refresh(ctx); err != nil {
				j.logger.Warn().Err(err).Msg("failed to refresh doubt stats")
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		return fmt.Errorf("schedule stats job: %w", err)
	}

	j.scheduler = scheduler
	scheduler.Start()
	j.logger.Info().Dur("interval", j.interval).Msg("stats job started")
	return nil
}

// Refresh reads the current counts and publishes them.
func (j *StatsJob) Refresh(ctx context.Context) error {
	counts, err := j.doubts.CountByStatus(ctx)
	if err != nil {
		return err
	}

	gauge := observability.DoubtsByStatus()
	for status, count := range counts {
		gauge.WithLabelValues(status).Set(float64(count))
	}
	return nil
}

// Shutdown stops the scheduler and waits for running tasks.
func (j *StatsJob) Shutdown() error {
	if j.scheduler == nil {
		return nil
	}
	return j.scheduler.Shutdown()
}
