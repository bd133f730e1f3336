package dto

import (
	"time"

	"github.com/noah-isme/nexus-api/internal/models"
)

// ProfileUpsertRequest creates or replaces the caller's profile.
type ProfileUpsertRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=255"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Major     string  `json:"major" validate:"required,oneof=cs it entc elex mech aids aiml"`
	Year      int     `json:"year" validate:"required,min=1,max=4"`
	Expertise *string `json:"expertise" validate:"omitempty,max=255"`
}

// ProfileResponse is the serialized student profile.
type ProfileResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Major          string    `json:"major"`
	DepartmentName string    `json:"department_name"`
	Year           int       `json:"year"`
	Expertise      *string   `json:"expertise,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProfileResponse converts a student model into a DTO.
func NewProfileResponse(model models.Student) ProfileResponse {
	response := ProfileResponse{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Major:     model.Major,
		Year:      model.Year,
		Expertise: model.Expertise,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if department, ok := models.DepartmentByID(model.Major); ok {
		response.DepartmentName = department.Name
	}
	return response
}

// NewProfileResponseSlice converts students into DTOs.
func NewProfileResponseSlice(items []models.Student) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewProfileResponse(item))
	}
	return out
}

// PaginationMeta describes a paginated listing.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// DepartmentResponse lists a department together with the supported academic years.
type DepartmentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Years []int  `json:"years"`
}
