package ai

import (
	"context"
	"errors"
)

// ErrMalformedResponse indicates the model answered with JSON that does not match the expected shape.
var ErrMalformedResponse = errors.New("malformed model response")

// ExplanationInput asks for one topic to be explained against syllabus content.
type ExplanationInput struct {
	Topic           string
	SyllabusContent string
}

// ExplanationOutput is the model's explanation of a single topic.
type ExplanationOutput struct {
	Explanation string `json:"explanation"`
}

// BulkExplanationInput asks for several topics to be explained at once.
type BulkExplanationInput struct {
	Topics          []string
	SyllabusContent string
}

// BulkExplanationOutput holds one explanation per input topic, in input order.
type BulkExplanationOutput struct {
	Explanations []string `json:"explanations"`
}

// ResourceInput carries the flattened content of one syllabus subject.
type ResourceInput struct {
	SyllabusSubject string
}

// ResourceSuggestions lists study material for a subject.
type ResourceSuggestions struct {
	YoutubeKeywords []string `json:"youtubeKeywords"`
	ReferenceBooks  []string `json:"referenceBooks"`
}

// Tutor is the text generation contract used by the tutor service.
type Tutor interface {
	Explain(ctx context.Context, input ExplanationInput) (ExplanationOutput, error)
	ExplainBulk(ctx context.Context, input BulkExplanationInput) (BulkExplanationOutput, error)
	SuggestResources(ctx context.Context, input ResourceInput) (ResourceSuggestions, error)
}

// Completer sends one system and user prompt pair to a model and returns its JSON text answer.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}
