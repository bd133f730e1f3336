package dto

import (
	"time"

	"github.com/noah-isme/nexus-api/internal/models"
)

// TutorExplainRequest asks the tutor to explain a single topic.
type TutorExplainRequest struct {
	Topic string `json:"topic" validate:"required,min=3,max=500"`
}

// TutorBulkExplainRequest asks the tutor to explain several topics of a subject at once.
type TutorBulkExplainRequest struct {
	SubjectCode string   `json:"subject_code" validate:"omitempty,max=32"`
	Topics      []string `json:"topics" validate:"required,min=1,max=20,dive,required,min=3,max=500"`
}

// TutorResourcesRequest asks for study resources for a catalog subject.
type TutorResourcesRequest struct {
	SubjectCode string `json:"subject_code" validate:"required,max=32"`
}

// TutorExplainResponse carries a single explanation.
type TutorExplainResponse struct {
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
	Cached      bool   `json:"cached"`
}

// TutorTopicExplanation pairs a topic with its explanation.
type TutorTopicExplanation struct {
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
}

// TutorBulkExplainResponse carries explanations in request order.
type TutorBulkExplainResponse struct {
	Explanations []TutorTopicExplanation `json:"explanations"`
}

// TutorResourcesResponse lists curated study resources.
type TutorResourcesResponse struct {
	SubjectCode     string   `json:"subject_code"`
	SubjectName     string   `json:"subject_name"`
	YoutubeKeywords []string `json:"youtube_keywords"`
	ReferenceBooks  []string `json:"reference_books"`
}

// TutorHistoryResponse is a serialized tutor history entry.
type TutorHistoryResponse struct {
	ID         uint                   `json:"id"`
	Query      string                 `json:"query"`
	ResultType string                 `json:"result_type"`
	ResultID   string                 `json:"result_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// NewTutorHistoryResponseSlice converts history models into DTOs.
func NewTutorHistoryResponseSlice(items []models.TutorHistory) []TutorHistoryResponse {
	out := make([]TutorHistoryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, TutorHistoryResponse{
			ID:         item.ID,
			Query:      item.Query,
			ResultType: item.ResultType,
			ResultID:   item.ResultID,
			Metadata:   map[string]interface{}(item.Metadata),
			Timestamp:  item.CreatedAt,
		})
	}
	return out
}
