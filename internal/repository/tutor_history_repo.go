package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/nexus-api/internal/models"
)

// TutorHistoryRepository stores AI tutor queries.
type TutorHistoryRepository interface {
	Create(ctx context.Context, entry *models.TutorHistory) error
	ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.TutorHistory, error)
}

type tutorHistoryRepository struct {
	db *gorm.DB
}

// NewTutorHistoryRepository constructs a history repository.
func NewTutorHistoryRepository(db *gorm.DB) TutorHistoryRepository {
	return &tutorHistoryRepository{db: db}
}

func (r *tutorHistoryRepository) Create(ctx context.Context, entry *models.TutorHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *tutorHistoryRepository) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]models.TutorHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var entries []models.TutorHistory
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
