package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/nexus-api/internal/dto"
	"github.com/noah-isme/nexus-api/internal/models"
	"github.com/noah-isme/nexus-api/internal/repository"
)

// Profile errors.
var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileValidation = errors.New("invalid profile payload")
	ErrProfileEmailTaken = errors.New("email already registered")
)

// ProfileService manages student profiles and the department catalog.
type ProfileService interface {
	Get(ctx context.Context, userID string) (dto.ProfileResponse, error)
	Upsert(ctx context.Context, userID string, payload dto.ProfileUpsertRequest) (dto.ProfileResponse, error)
	List(ctx context.Context, page, pageSize int) ([]dto.ProfileResponse, dto.PaginationMeta, error)
	Departments() []dto.DepartmentResponse
}

type profileService struct {
	repo      repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// NewProfileService constructs a profile service.
func NewProfileService(repo repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "profile_service").Logger(),
		sanitizer: bluemonday.StripTagsPolicy(),
		now:       time.Now,
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (dto.ProfileResponse, error) {
	student, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(student), nil
}

// Upsert replaces the caller's profile. Doubts already raised keep their original snapshot.
func (s *profileService) Upsert(ctx context.Context, userID string, payload dto.ProfileUpsertRequest) (dto.ProfileResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return dto.ProfileResponse{}, fmt.Errorf("%w: user id is required", ErrProfileValidation)
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("%w: %w", ErrProfileValidation, err)
	}

	name := s.stripTags(payload.Name)
	if name == "" {
		return dto.ProfileResponse{}, fmt.Errorf("%w: name empty after removing markup", ErrProfileValidation)
	}

	var expertise *string
	if payload.Expertise != nil {
		if cleaned := s.stripTags(*payload.Expertise); cleaned != "" {
			expertise = &cleaned
		}
	}

	now := s.now().UTC()
	student := models.Student{
		ID:        userID,
		Name:      name,
		Email:     strings.ToLower(strings.TrimSpace(payload.Email)),
		Major:     payload.Major,
		Year:      payload.Year,
		Expertise: expertise,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Upsert(ctx, &student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ProfileResponse{}, ErrProfileEmailTaken
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to save profile")
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Str("user_id", userID).Str("major", student.Major).Int("year", student.Year).Msg("profile saved")

	return s.Get(ctx, userID)
}

func (s *profileService) List(ctx context.Context, page, pageSize int) ([]dto.ProfileResponse, dto.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	students, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	meta := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}

	return dto.NewProfileResponseSlice(students), meta, nil
}

func (s *profileService) Departments() []dto.DepartmentResponse {
	out := make([]dto.DepartmentResponse, 0, len(models.Departments))
	for _, department := range models.Departments {
		years := make([]int, len(models.AcademicYears))
		copy(years, models.AcademicYears)
		out = append(out, dto.DepartmentResponse{ID: department.ID, Name: department.Name, Years: years})
	}
	return out
}

// stripTags removes markup from display fields. bluemonday escapes the text it keeps, so the
// entities are decoded again before storage.
func (s *profileService) stripTags(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}
