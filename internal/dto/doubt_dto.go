package dto

import (
	"time"

	"github.com/noah-isme/nexus-api/internal/models"
)

// DoubtCreateRequest is the payload a requester submits to ask for help.
type DoubtCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"required,min=1,max=5000"`
	SyllabusID  string `json:"syllabus_id" validate:"omitempty,max=64"`
}

// DoubtResolveRequest carries the resolver's solution.
type DoubtResolveRequest struct {
	Solution string `json:"solution" validate:"required,min=1,max=10000"`
}

// DoubtResponse is the serialized representation of a doubt.
type DoubtResponse struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name"`
	StudentYear int        `json:"student_year"`
	Major       string     `json:"major"`
	SyllabusID  string     `json:"syllabus_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Senior      *string    `json:"senior"`
	Solution    *string    `json:"solution"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// NewDoubtResponse converts a doubt model into its DTO.
func NewDoubtResponse(model models.Doubt) DoubtResponse {
	return DoubtResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		StudentName: model.StudentName,
		StudentYear: model.StudentYear,
		Major:       model.Major,
		SyllabusID:  model.SyllabusID,
		Title:       model.Title,
		Description: model.Description,
		Status:      model.Status,
		Senior:      model.Senior,
		Solution:    model.Solution,
		ResolvedAt:  model.ResolvedAt,
		Timestamp:   model.CreatedAt,
	}
}

// NewDoubtResponseSlice converts a slice of doubts into DTOs.
func NewDoubtResponseSlice(items []models.Doubt) []DoubtResponse {
	out := make([]DoubtResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewDoubtResponse(item))
	}
	return out
}
