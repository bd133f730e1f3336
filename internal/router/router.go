package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/nexus-api/internal/config"
	"github.com/noah-isme/nexus-api/internal/handler"
	"github.com/noah-isme/nexus-api/internal/middleware"
	"github.com/noah-isme/nexus-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DoubtHandler        *handler.DoubtHandler
	LeaderboardHandler  *handler.LeaderboardHandler
	ProfileHandler      *handler.ProfileHandler
	AdminStudentHandler *handler.AdminStudentHandler
	SyllabusHandler     *handler.SyllabusHandler
	TutorHandler        *handler.TutorHandler
	NotificationHandler *handler.NotificationHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	public := app.Group("/api/v2", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	public.Get("/health", handler.HealthCheck(cfg.AppName, cfg.AppEnv))

	api := app.Group("/api/v2", jwtMiddleware, requireAuth(middleware.AuthRoleAny))

	if deps.DoubtHandler != nil {
		deps.DoubtHandler.Register(api.Group("/bridge/doubts"))
	}

	if deps.LeaderboardHandler != nil {
		deps.LeaderboardHandler.Register(api.Group("/leaderboard"))
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api.Group("/profile"))
		api.Get("/departments", deps.ProfileHandler.Departments)
	}

	if deps.SyllabusHandler != nil {
		deps.SyllabusHandler.Register(api.Group("/syllabuses"))
		deps.SyllabusHandler.RegisterSubjects(api.Group("/subjects"))
	}

	if deps.TutorHandler != nil {
		limiter := middleware.RateLimit("tutor", cfg.AIRateLimit, time.Minute)
		deps.TutorHandler.Register(api.Group("/tutor"), limiter)
	}

	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(api.Group("/notifications"))
	}

	admin := app.Group("/api/admin", jwtMiddleware, requireAuth(middleware.AuthRoleAny), middleware.RequireRole(middleware.AuthRoleAdmin))

	if deps.AdminStudentHandler != nil {
		deps.AdminStudentHandler.Register(admin.Group("/students"))
	}

	if deps.SyllabusHandler != nil {
		deps.SyllabusHandler.RegisterAdmin(admin.Group("/syllabuses"))
	}
}

func requireAuth(role string) fiber.Handler {
	return middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{Role: role})
}
