package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/nexus-api/internal/models"
)

// SyllabusFilter narrows syllabus listings.
type SyllabusFilter struct {
	Major string
	Year  int
}

// SyllabusRepository persists syllabus documents.
type SyllabusRepository interface {
	List(ctx context.Context, filter SyllabusFilter) ([]models.Syllabus, error)
	GetByID(ctx context.Context, id string) (models.Syllabus, error)
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, items []models.Syllabus) error
	UpdateDocument(ctx context.Context, id, location string, uploadedAt time.Time) (models.Syllabus, error)
}

type syllabusRepository struct {
	db *gorm.DB
}

// NewSyllabusRepository constructs a GORM-backed syllabus repository.
func NewSyllabusRepository(db *gorm.DB) SyllabusRepository {
	return &syllabusRepository{db: db}
}

func (r *syllabusRepository) List(ctx context.Context, filter SyllabusFilter) ([]models.Syllabus, error) {
	query := r.db.WithContext(ctx).Model(&models.Syllabus{})
	if filter.Major != "" {
		query = query.Where("major = ?", filter.Major)
	}
	if filter.Year > 0 {
		query = query.Where("year = ?", filter.Year)
	}

	var items []models.Syllabus
	if err := query.Order("major ASC").Order("year ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *syllabusRepository) GetByID(ctx context.Context, id string) (models.Syllabus, error) {
	var item models.Syllabus
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return models.Syllabus{}, err
	}
	return item, nil
}

func (r *syllabusRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Syllabus{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *syllabusRepository) CreateBatch(ctx context.Context, items []models.Syllabus) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&items).Error
}

func (r *syllabusRepository) UpdateDocument(ctx context.Context, id, location string, uploadedAt time.Time) (models.Syllabus, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Syllabus{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"pdf_storage_location": location,
			"upload_date":          uploadedAt,
		})
	if result.Error != nil {
		return models.Syllabus{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Syllabus{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}
