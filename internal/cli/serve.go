package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/nexus-api/internal/config"
	"github.com/noah-isme/nexus-api/internal/database"
	"github.com/noah-isme/nexus-api/internal/handler"
	"github.com/noah-isme/nexus-api/internal/middleware"
	"github.com/noah-isme/nexus-api/internal/repository"
	"github.com/noah-isme/nexus-api/internal/router"
	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/syllabus"
	"github.com/noah-isme/nexus-api/pkg/ai"
	cloud "github.com/noah-isme/nexus-api/pkg/cloudinary"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, newLogger(cfg))
		},
	}
}

func runServer(parent context.Context, cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
		if err != nil {
			return err
		}
		defer natsConn.Drain()
	}

	var storage service.FileStorage
	if cfg.CloudinaryEnabled() {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create cloudinary client: %w", err)
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured; syllabus uploads disabled")
	}

	tutor, closeTutor, err := buildTutor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTutor()

	catalog, err := syllabus.Load()
	if err != nil {
		return err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	doubtRepo := repository.NewDoubtRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	syllabusRepo := repository.NewSyllabusRepository(db)
	historyRepo := repository.NewTutorHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.RealtimeChannel, natsConn, validate, logger)
	doubtService := service.NewDoubtService(doubtRepo, studentRepo, notificationService, validate, logger)
	leaderboardService := service.NewLeaderboardService(doubtRepo, logger)
	profileService := service.NewProfileService(studentRepo, validate, logger)
	syllabusService := service.NewSyllabusService(syllabusRepo, catalog, storage, cfg.UploadMaxSizeMB, logger)
	tutorService := service.NewTutorService(tutor, catalog, historyRepo, redisClient, cfg.TutorCacheTTL, validate, logger)

	if created, err := syllabusService.Seed(ctx); err != nil {
		logger.Warn().Err(err).Msg("syllabus seed failed")
	} else if created > 0 {
		logger.Info().Int("created", created).Msg("seeded syllabus records")
	}

	notificationService.Start(ctx)

	statsJob := service.NewStatsJob(doubtRepo, cfg.StatsInterval, logger)
	if err := statsJob.Start(); err != nil {
		return err
	}
	defer func() {
		if err := statsJob.Shutdown(); err != nil {
			logger.Warn().Err(err).Msg("stats job shutdown failed")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		DoubtHandler:        handler.NewDoubtHandler(doubtService, logger),
		LeaderboardHandler:  handler.NewLeaderboardHandler(leaderboardService, logger),
		ProfileHandler:      handler.NewProfileHandler(profileService, logger),
		AdminStudentHandler: handler.NewAdminStudentHandler(profileService, logger),
		SyllabusHandler:     handler.NewSyllabusHandler(syllabusService, logger),
		TutorHandler:        handler.NewTutorHandler(tutorService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Msg("http server listening")
		serverErr <- app.Listen(cfg.HTTPAddress())
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func buildTutor(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ai.Tutor, func(), error) {
	switch cfg.AIProvider {
	case "gemini":
		completer, err := ai.NewGeminiCompleter(ctx, ai.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: 0.4,
		})
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := completer.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close gemini client")
			}
		}
		return ai.NewJSONTutor(completer, logger), closer, nil
	default:
		completer, err := ai.NewOpenAICompleter(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			Temperature: 0.4,
		})
		if err != nil {
			return nil, nil, err
		}
		return ai.NewJSONTutor(completer, logger), func() {}, nil
	}
}
