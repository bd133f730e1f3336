package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/nexus-api/internal/config"
	"github.com/noah-isme/nexus-api/internal/handler"
	"github.com/noah-isme/nexus-api/internal/middleware"
	"github.com/noah-isme/nexus-api/internal/models"
	"github.com/noah-isme/nexus-api/internal/repository"
	"github.com/noah-isme/nexus-api/internal/router"
	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/syllabus"
	"github.com/noah-isme/nexus-api/pkg/ai"
)

const testSecret = "handler-test-secret"

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Meta    json.RawMessage   `json:"meta"`
	Details map[string]string `json:"details"`
}

type testEnv struct {
	app           *fiber.App
	db            *gorm.DB
	notifications service.NotificationService
	tutor         *stubTutor
}

type stubTutor struct {
	err error
}

func (s *stubTutor) Explain(_ context.Context, input ai.ExplanationInput) (ai.ExplanationOutput, error) {
	if s.err != nil {
		return ai.ExplanationOutput{}, s.err
	}
	return ai.ExplanationOutput{Explanation: "about " + input.Topic}, nil
}

func (s *stubTutor) ExplainBulk(_ context.Context, input ai.BulkExplanationInput) (ai.BulkExplanationOutput, error) {
	if s.err != nil {
		return ai.BulkExplanationOutput{}, s.err
	}
	out := make([]string, len(input.Topics))
	for i, topic := range input.Topics {
		out[i] = "about " + topic
	}
	return ai.BulkExplanationOutput{Explanations: out}, nil
}

func (s *stubTutor) SuggestResources(_ context.Context, _ ai.ResourceInput) (ai.ResourceSuggestions, error) {
	if s.err != nil {
		return ai.ResourceSuggestions{}, s.err
	}
	return ai.ResourceSuggestions{YoutubeKeywords: []string{"a", "b", "c"}, ReferenceBooks: []string{"x", "y", "z"}}, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	catalog := syllabus.MustLoad()
	tutor := &stubTutor{}

	doubtRepo := repository.NewDoubtRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, validate, logger)
	doubts := service.NewDoubtService(doubtRepo, studentRepo, notifications, validate, logger)
	leaderboard := service.NewLeaderboardService(doubtRepo, logger)
	profiles := service.NewProfileService(studentRepo, validate, logger)
	syllabuses := service.NewSyllabusService(repository.NewSyllabusRepository(db), catalog, nil, 1, logger)
	tutors := service.NewTutorService(tutor, catalog, repository.NewTutorHistoryRepository(db), nil, time.Hour, validate, logger)

	_, err = syllabuses.Seed(context.Background())
	require.NoError(t, err)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, config.Config{AppName: "nexus-test", AppEnv: "test", AIRateLimit: 100}, router.Dependencies{
		DoubtHandler:        handler.NewDoubtHandler(doubts, logger),
		LeaderboardHandler:  handler.NewLeaderboardHandler(leaderboard, logger),
		ProfileHandler:      handler.NewProfileHandler(profiles, logger),
		AdminStudentHandler: handler.NewAdminStudentHandler(profiles, logger),
		SyllabusHandler:     handler.NewSyllabusHandler(syllabuses, logger),
		TutorHandler:        handler.NewTutorHandler(tutors, logger),
		NotificationHandler: handler.NewNotificationHandler(notifications, logger, time.Second),
		JWTMiddleware:       middleware.JWTProtected(testSecret),
	})

	return &testEnv{app: app, db: db, notifications: notifications, tutor: tutor}
}

func signToken(t *testing.T, sub, name, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if name != "" {
		claims["name"] = name
	}
	if role != "" {
		claims["role"] = role
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (e *testEnv) createProfile(t *testing.T, token, name, major string, year int) {
	t.Helper()
	resp, env := e.do(t, http.MethodPut, "/api/v2/profile", token, map[string]interface{}{
		"name":  name,
		"email": strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		"major": major,
		"year":  year,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func uintString(value uint) string {
	return fmt.Sprintf("%d", value)
}
