package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/models"
	"github.com/noah-isme/nexus-api/internal/observability"
	"github.com/noah-isme/nexus-api/internal/repository"
	"github.com/noah-isme/nexus-api/internal/syllabus"
	"github.com/noah-isme/nexus-api/pkg/ai"
)

var (
	// ErrTutorValidation indicates an invalid tutor request.
	ErrTutorValidation = errors.New("invalid tutor request")
	// ErrTutorUnavailable indicates the language model could not produce an answer.
	ErrTutorUnavailable = errors.New("failed to get explanation, please try again")
)

// TutorService answers AI tutor questions and records them in the student's history.
type TutorService interface {
	Explain(ctx context.Context, studentID string, payload dto.TutorExplainRequest) (dto.TutorExplainResponse, error)
	ExplainBulk(ctx context.Context, studentID string, payload dto.TutorBulkExplainRequest) (dto.TutorBulkExplainResponse, error)
	Resources(ctx context.Context, studentID string, payload dto.TutorResourcesRequest) (dto.TutorResourcesResponse, error)
	History(ctx context.Context, studentID string, limit, offset int) ([]dto.TutorHistoryResponse, error)
}

type tutorService struct {
	tutor     ai.Tutor
	catalog   *syllabus.Catalog
	history   repository.TutorHistoryRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	group     singleflight.Group
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewTutorService constructs the tutor service. cache may be nil to disable explanation caching.
func NewTutorService(tutor ai.Tutor, catalog *syllabus.Catalog, history repository.TutorHistoryRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) TutorService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &tutorService{
		tutor:     tutor,
		catalog:   catalog,
		history:   history,
		cache:     cache,
		cacheTTL:  ttl,
		validator: validate,
		logger:    logger.With().Str("component", "tutor_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/nexus-api/internal/service/tutor"),
	}
}

func (s *tutorService) Explain(ctx context.Context, studentID string, payload dto.TutorExplainRequest) (dto.TutorExplainResponse, error) {
	payload.Topic = normalizeText(payload.Topic)
	if err := s.validator.Struct(payload); err != nil {
		return dto.TutorExplainResponse{}, fmt.Errorf("%w: %w", ErrTutorValidation, err)
	}

	ctx, span := s.tracer.Start(ctx, "tutor.explain", trace.WithAttributes(
		attribute.String("tutor.student_id", studentID),
	))
	defer span.End()

	key := explanationCacheKey(payload.Topic)
	if explanation, ok := s.readCache(ctx, key); ok {
		observability.TutorCache().WithLabelValues("hit").Inc()
		s.record(ctx, studentID, payload.Topic, models.TutorResultExplanation, datatypes.JSONMap{"cached": true})
		return dto.TutorExplainResponse{Topic: payload.Topic, Explanation: explanation, Cached: true}, nil
	}
	observability.TutorCache().WithLabelValues("miss").Inc()

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		output, err := s.tutor.Explain(ctx, ai.ExplanationInput{
			Topic:           payload.Topic,
			SyllabusContent: s.catalog.GeneralContent(),
		})
		if err != nil {
			return "", err
		}
		s.writeCache(ctx, key, output.Explanation)
		return output.Explanation, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "explain failed")
		s.logger.Error().Err(err).Str("student_id", studentID).Msg("tutor explanation failed")
		return dto.TutorExplainResponse{}, fmt.Errorf("%w: %w", ErrTutorUnavailable, err)
	}

	s.record(ctx, studentID, payload.Topic, models.TutorResultExplanation, datatypes.JSONMap{"cached": false})
	return dto.TutorExplainResponse{Topic: payload.Topic, Explanation: value.(string)}, nil
}

func (s *tutorService) ExplainBulk(ctx context.Context, studentID string, payload dto.TutorBulkExplainRequest) (dto.TutorBulkExplainResponse, error) {
	payload.SubjectCode = strings.TrimSpace(payload.SubjectCode)
	for i, topic := range payload.Topics {
		payload.Topics[i] = normalizeText(topic)
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.TutorBulkExplainResponse{}, fmt.Errorf("%w: %w", ErrTutorValidation, err)
	}

	content := s.catalog.GeneralContent()
	if payload.SubjectCode != "" {
		subject, err := s.catalog.Subject(payload.SubjectCode)
		if err != nil {
			return dto.TutorBulkExplainResponse{}, err
		}
		content = subject.Content()
	}

	ctx, span := s.tracer.Start(ctx, "tutor.explain_bulk", trace.WithAttributes(
		attribute.String("tutor.student_id", studentID),
		attribute.Int("tutor.topics", len(payload.Topics)),
	))
	defer span.End()

	output, err := s.tutor.ExplainBulk(ctx, ai.BulkExplanationInput{Topics: payload.Topics, SyllabusContent: content})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk explain failed")
		s.logger.Error().Err(err).Str("student_id", studentID).Msg("tutor bulk explanation failed")
		return dto.TutorBulkExplainResponse{}, fmt.Errorf("%w: %w", ErrTutorUnavailable, err)
	}

	explanations := make([]dto.TutorTopicExplanation, 0, len(payload.Topics))
	for i, topic := range payload.Topics {
		explanations = append(explanations, dto.TutorTopicExplanation{Topic: topic, Explanation: output.Explanations[i]})
	}

	metadata := datatypes.JSONMap{"topics": len(payload.Topics)}
	if payload.SubjectCode != "" {
		metadata["subject_code"] = strings.ToUpper(payload.SubjectCode)
	}
	s.record(ctx, studentID, strings.Join(payload.Topics, "; "), models.TutorResultBulkExplanation, metadata)

	return dto.TutorBulkExplainResponse{Explanations: explanations}, nil
}

func (s *tutorService) Resources(ctx context.Context, studentID string, payload dto.TutorResourcesRequest) (dto.TutorResourcesResponse, error) {
	payload.SubjectCode = strings.TrimSpace(payload.SubjectCode)
	if err := s.validator.Struct(payload); err != nil {
		return dto.TutorResourcesResponse{}, fmt.Errorf("%w: %w", ErrTutorValidation, err)
	}

	subject, err := s.catalog.Subject(payload.SubjectCode)
	if err != nil {
		return dto.TutorResourcesResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "tutor.resources", trace.WithAttributes(
		attribute.String("tutor.subject_code", subject.Code),
	))
	defer span.End()

	output, err := s.tutor.SuggestResources(ctx, ai.ResourceInput{SyllabusSubject: subject.Content()})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resources failed")
		s.logger.Error().Err(err).Str("subject_code", subject.Code).Msg("tutor resource suggestion failed")
		return dto.TutorResourcesResponse{}, fmt.Errorf("%w: %w", ErrTutorUnavailable, err)
	}

	s.record(ctx, studentID, subject.Name, models.TutorResultResources, datatypes.JSONMap{"subject_code": subject.Code})

	return dto.TutorResourcesResponse{
		SubjectCode:     subject.Code,
		SubjectName:     subject.Name,
		YoutubeKeywords: output.YoutubeKeywords,
		ReferenceBooks:  output.ReferenceBooks,
	}, nil
}

func (s *tutorService) History(ctx context.Context, studentID string, limit, offset int) ([]dto.TutorHistoryResponse, error) {
	entries, err := s.history.ListByStudent(ctx, studentID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewTutorHistoryResponseSlice(entries), nil
}

func (s *tutorService) readCache(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	raw, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read tutor cache")
		}
		return "", false
	}

	var explanation string
	if err := json.Unmarshal([]byte(raw), &explanation); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt tutor cache entry")
		return "", false
	}
	return explanation, true
}

func (s *tutorService) writeCache(ctx context.Context, key, explanation string) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(explanation)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store tutor cache")
	}
}

// record stores a history row. Failures are logged and never surface to the caller.
func (s *tutorService) record(ctx context.Context, studentID, query, resultType string, metadata datatypes.JSONMap) {
	if s.history == nil || studentID == "" {
		return
	}

	entry := models.TutorHistory{
		StudentID:  studentID,
		Query:      query,
		ResultType: resultType,
		Metadata:   metadata,
	}
	if err := s.history.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to record tutor history")
	}
}

func explanationCacheKey(topic string) string {
	return "tutor:explain:" + strings.Join(strings.Fields(strings.ToLower(topic)), " ")
}
