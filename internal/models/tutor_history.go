package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tutor history result types.
const (
	TutorResultExplanation     = "explanation"
	TutorResultBulkExplanation = "bulk_explanation"
	TutorResultResources       = "resources"
)

// TutorHistory records a query a student sent to the AI tutor.
type TutorHistory struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	StudentID  string            `gorm:"size:128;index;not null" json:"student_id"`
	Query      string            `gorm:"type:text;not null" json:"query"`
	ResultType string            `gorm:"size:32;not null" json:"result_type"`
	ResultID   string            `gorm:"size:128" json:"result_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}
