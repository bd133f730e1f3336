package dto

import (
	"time"

	"github.com/noah-isme/nexus-api/internal/models"
)

// SyllabusResponse describes a published syllabus document.
type SyllabusResponse struct {
	ID                 string    `json:"id"`
	CourseName         string    `json:"course_name"`
	Year               int       `json:"year"`
	Major              string    `json:"major"`
	PDFStorageLocation string    `json:"pdf_storage_location"`
	UploadDate         time.Time `json:"upload_date"`
}

// NewSyllabusResponse converts a syllabus model into a DTO.
func NewSyllabusResponse(model models.Syllabus) SyllabusResponse {
	return SyllabusResponse{
		ID:                 model.ID,
		CourseName:         model.CourseName,
		Year:               model.Year,
		Major:              model.Major,
		PDFStorageLocation: model.PDFStorageLocation,
		UploadDate:         model.UploadDate,
	}
}

// NewSyllabusResponseSlice converts syllabus models into DTOs.
func NewSyllabusResponseSlice(items []models.Syllabus) []SyllabusResponse {
	out := make([]SyllabusResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewSyllabusResponse(item))
	}
	return out
}

// SubjectSummary is the lightweight listing view of a catalog subject.
type SubjectSummary struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Semester  int    `json:"semester"`
	UnitCount int    `json:"unit_count"`
}

// SubjectUnit is a unit of a subject with its topics.
type SubjectUnit struct {
	Title  string   `json:"title"`
	Slug   string   `json:"slug"`
	Topics []string `json:"topics"`
}

// SubjectDetail is the full view of a catalog subject.
type SubjectDetail struct {
	Code     string        `json:"code"`
	Name     string        `json:"name"`
	Semester int           `json:"semester"`
	Units    []SubjectUnit `json:"units"`
}

// SyllabusUploadResponse is returned after a syllabus PDF upload.
type SyllabusUploadResponse struct {
	Syllabus  SyllabusResponse `json:"syllabus"`
	MimeType  string           `json:"mime_type"`
	SizeBytes int64            `json:"size_bytes"`
}
