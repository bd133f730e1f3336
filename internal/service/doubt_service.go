package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/models"
	"github.com/noah-isme/nexus-api/internal/observability"
	"github.com/noah-isme/nexus-api/internal/repository"
)

// Identity is the authenticated caller as asserted by the bearer token.
type Identity struct {
	UserID      string
	DisplayName string
}

// NotificationPublisher exposes the subset of notification service needed by the doubt workflow.
type NotificationPublisher interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// DoubtService exposes the senior bridge use-cases.
type DoubtService interface {
	Create(ctx context.Context, identity Identity, payload dto.DoubtCreateRequest) (dto.DoubtResponse, error)
	ListOpen(ctx context.Context, identity Identity) ([]dto.DoubtResponse, error)
	ListMine(ctx context.Context, identity Identity) ([]dto.DoubtResponse, error)
	Get(ctx context.Context, id string) (dto.DoubtResponse, error)
	Resolve(ctx context.Context, identity Identity, id string, payload dto.DoubtResolveRequest) (dto.DoubtResponse, error)
}

type doubtService struct {
	doubts        repository.DoubtRepository
	students      repository.StudentRepository
	notifications NotificationPublisher
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// NewDoubtService constructs the doubt workflow service. notifications may be nil.
func NewDoubtService(doubts repository.DoubtRepository, students repository.StudentRepository, notifications NotificationPublisher, validate *validator.Validate, logger zerolog.Logger) DoubtService {
	return &doubtService{
		doubts:        doubts,
		students:      students,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "doubt_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/nexus-api/internal/service/doubt"),
		now:           time.Now,
	}
}

func (s *doubtService) Create(ctx context.Context, identity Identity, payload dto.DoubtCreateRequest) (dto.DoubtResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DoubtResponse{}, fmt.Errorf("%w: %w", ErrDoubtValidation, err)
	}

	title := normalizeText(payload.Title)
	description := normalizeText(payload.Description)
	if title == "" || description == "" {
		return dto.DoubtResponse{}, fmt.Errorf("%w: title and description must not be empty", ErrDoubtValidation)
	}

	spanCtx, span := s.tracer.Start(ctx, "doubt.create", trace.WithAttributes(
		attribute.String("doubt.student_id", identity.UserID),
	))
	defer span.End()

	profile, err := s.loadProfile(spanCtx, identity.UserID)
	if err != nil {
		span.RecordError(err)
		return dto.DoubtResponse{}, err
	}

	doubt := models.Doubt{
		StudentID:   profile.ID,
		StudentName: profile.Name,
		StudentYear: profile.Year,
		Major:       profile.Major,
		SyllabusID:  strings.TrimSpace(payload.SyllabusID),
		Title:       title,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.doubts.Create(spanCtx, &doubt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist doubt")
		s.logger.Error().Err(err).Str("student_id", profile.ID).Msg("failed to persist doubt")
		return dto.DoubtResponse{}, fmt.Errorf("%w: %w", ErrDoubtPersistence, err)
	}

	observability.DoubtEvents().WithLabelValues("created").Inc()
	s.logger.Info().Str("doubt_id", doubt.ID).Str("student_id", profile.ID).Str("major", profile.Major).Msg("doubt created")

	return dto.NewDoubtResponse(doubt), nil
}

func (s *doubtService) ListOpen(ctx context.Context, identity Identity) ([]dto.DoubtResponse, error) {
	viewer, err := s.loadViewer(ctx, identity)
	if err != nil {
		return nil, err
	}
	if viewer.Year <= 1 {
		return []dto.DoubtResponse{}, nil
	}

	pending, err := s.doubts.ListByStatus(ctx, models.DoubtStatusPending)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDoubtPersistence, err)
	}

	return dto.NewDoubtResponseSlice(EligibleDoubts(pending, viewer)), nil
}

func (s *doubtService) ListMine(ctx context.Context, identity Identity) ([]dto.DoubtResponse, error) {
	doubts, err := s.doubts.ListByStudent(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDoubtPersistence, err)
	}
	return dto.NewDoubtResponseSlice(doubts), nil
}

func (s *doubtService) Get(ctx context.Context, id string) (dto.DoubtResponse, error) {
	doubt, err := s.getDoubt(ctx, id)
	if err != nil {
		return dto.DoubtResponse{}, err
	}
	return dto.NewDoubtResponse(doubt), nil
}

func (s *doubtService) Resolve(ctx context.Context, identity Identity, id string, payload dto.DoubtResolveRequest) (dto.DoubtResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.DoubtResponse{}, fmt.Errorf("%w: %w", ErrDoubtValidation, err)
	}
	solution := normalizeText(payload.Solution)
	if solution == "" {
		return dto.DoubtResponse{}, fmt.Errorf("%w: solution must not be empty", ErrDoubtValidation)
	}

	spanCtx, span := s.tracer.Start(ctx, "doubt.resolve", trace.WithAttributes(
		attribute.String("doubt.id", id),
		attribute.String("doubt.resolver_id", identity.UserID),
	))
	defer span.End()

	viewer, err := s.loadViewer(spanCtx, identity)
	if err != nil {
		span.RecordError(err)
		return dto.DoubtResponse{}, err
	}

	doubt, err := s.getDoubt(spanCtx, id)
	if err != nil {
		span.RecordError(err)
		return dto.DoubtResponse{}, err
	}
	if !doubt.IsPending() {
		observability.DoubtEvents().WithLabelValues("conflict").Inc()
		return dto.DoubtResponse{}, ErrDoubtNotPending
	}
	if !CanResolve(doubt, viewer) {
		return dto.DoubtResponse{}, ErrResolverIneligible
	}

	resolution := repository.DoubtResolution{
		Senior:     viewer.DisplayName,
		Solution:   solution,
		ResolvedBy: viewer.ID,
		ResolvedAt: s.now().UTC(),
	}
	if err := s.doubts.Resolve(spanCtx, doubt.ID, resolution); err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, repository.ErrDoubtNotPending):
			observability.DoubtEvents().WithLabelValues("conflict").Inc()
			s.logger.Info().Str("doubt_id", doubt.ID).Str("resolver_id", viewer.ID).Msg("lost resolution race")
			return dto.DoubtResponse{}, ErrDoubtNotPending
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.DoubtResponse{}, ErrDoubtNotFound
		default:
			span.SetStatus(codes.Error, "resolve doubt")
			s.logger.Error().Err(err).Str("doubt_id", doubt.ID).Msg("failed to resolve doubt")
			return dto.DoubtResponse{}, fmt.Errorf("%w: %w", ErrDoubtPersistence, err)
		}
	}

	doubt.Status = models.DoubtStatusResolved
	doubt.Senior = &resolution.Senior
	doubt.Solution = &resolution.Solution
	doubt.ResolvedBy = &resolution.ResolvedBy
	doubt.ResolvedAt = &resolution.ResolvedAt

	observability.DoubtEvents().WithLabelValues("resolved").Inc()
	s.logger.Info().Str("doubt_id", doubt.ID).Str("resolver_id", viewer.ID).Msg("doubt resolved")
	s.notifyRequester(spanCtx, doubt)

	return dto.NewDoubtResponse(doubt), nil
}

func (s *doubtService) notifyRequester(ctx context.Context, doubt models.Doubt) {
	if s.notifications == nil {
		return
	}

	_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserID:   doubt.StudentID,
		Type:     models.NotificationTypeDoubtResolved,
		Message:  fmt.Sprintf("%s resolved your doubt %q", *doubt.Senior, doubt.Title),
		Metadata: map[string]string{"doubt_id": doubt.ID},
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("doubt_id", doubt.ID).Msg("failed to notify requester")
	}
}

func (s *doubtService) loadViewer(ctx context.Context, identity Identity) (Viewer, error) {
	profile, err := s.loadProfile(ctx, identity.UserID)
	if err != nil {
		return Viewer{}, err
	}

	name := strings.TrimSpace(identity.DisplayName)
	if name == "" {
		name = profile.Name
	}

	return Viewer{
		ID:          profile.ID,
		DisplayName: name,
		Major:       profile.Major,
		Year:        profile.Year,
	}, nil
}

func (s *doubtService) loadProfile(ctx context.Context, userID string) (models.Student, error) {
	if strings.TrimSpace(userID) == "" {
		return models.Student{}, ErrProfileRequired
	}

	profile, err := s.students.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrProfileRequired
		}
		return models.Student{}, fmt.Errorf("%w: %w", ErrDoubtPersistence, err)
	}
	return profile, nil
}

func (s *doubtService) getDoubt(ctx context.Context, id string) (models.Doubt, error) {
	doubt, err := s.doubts.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Doubt{}, ErrDoubtNotFound
		}
		return models.Doubt{}, fmt.Errorf("%w: %w", ErrDoubtPersistence, err)
	}
	return doubt, nil
}

// normalizeText trims user text and repairs invalid UTF-8. The text is stored as written;
// escaping happens where it is rendered.
func normalizeText(value string) string {
	return strings.TrimSpace(strings.ToValidUTF8(value, "\uFFFD"))
}
