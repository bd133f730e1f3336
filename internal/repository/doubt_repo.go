package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/nexus-api/internal/models"
)

// ErrDoubtNotPending is returned when a resolution targets a doubt that already left the pending state.
var ErrDoubtNotPending = errors.New("doubt is not pending")

// DoubtResolution carries the fields written when a doubt is resolved.
type DoubtResolution struct {
	Senior     string
	Solution   string
	ResolvedBy string
	ResolvedAt time.Time
}

// DoubtRepository persists doubts and their single pending to resolved transition.
type DoubtRepository interface {
	Create(ctx context.Context, doubt *models.Doubt) error
	GetByID(ctx context.Context, id string) (models.Doubt, error)
	ListByStatus(ctx context.Context, status string) ([]models.Doubt, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Doubt, error)
	Resolve(ctx context.Context, id string, resolution DoubtResolution) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type doubtRepository struct {
	db *gorm.DB
}

// NewDoubtRepository constructs a GORM-backed doubt repository.
func NewDoubtRepository(db *gorm.DB) DoubtRepository {
	return &doubtRepository{db: db}
}

func (r *doubtRepository) Create(ctx context.Context, doubt *models.Doubt) error {
	if doubt.ID == "" {
		doubt.ID = uuid.NewString()
	}
	doubt.Status = models.DoubtStatusPending
	doubt.Senior = nil
	doubt.Solution = nil
	doubt.ResolvedBy = nil
	doubt.ResolvedAt = nil
	if doubt.SyllabusID == "" {
		doubt.SyllabusID = models.DefaultSyllabusID
	}

	return r.db.WithContext(ctx).Create(doubt).Error
}

func (r *doubtRepository) GetByID(ctx context.Context, id string) (models.Doubt, error) {
	var doubt models.Doubt
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doubt).Error; err != nil {
		return models.Doubt{}, err
	}
	return doubt, nil
}

func (r *doubtRepository) ListByStatus(ctx context.Context, status string) ([]models.Doubt, error) {
	var doubts []models.Doubt
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Order("id ASC").
		Find(&doubts).Error; err != nil {
		return nil, err
	}
	return doubts, nil
}

func (r *doubtRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Doubt, error) {
	var doubts []models.Doubt
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&doubts).Error; err != nil {
		return nil, err
	}
	return doubts, nil
}

// Resolve applies the transition as one conditional UPDATE so that concurrent resolvers
// cannot both succeed and no row ever carries a senior without the resolved status.
func (r *doubtRepository) Resolve(ctx context.Context, id string, resolution DoubtResolution) error {
	resolvedAt := resolution.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now().UTC()
	}

	result := r.db.WithContext(ctx).
		Model(&models.Doubt{}).
		Where("id = ? AND status = ?", id, models.DoubtStatusPending).
		Updates(map[string]interface{}{
			"status":      models.DoubtStatusResolved,
			"senior":      resolution.Senior,
			"solution":    resolution.Solution,
			"resolved_by": resolution.ResolvedBy,
			"resolved_at": resolvedAt,
			"updated_at":  resolvedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Doubt{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrDoubtNotPending
}

func (r *doubtRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Doubt{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{
		models.DoubtStatusPending:  0,
		models.DoubtStatusResolved: 0,
		models.DoubtStatusRejected: 0,
	}
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}
