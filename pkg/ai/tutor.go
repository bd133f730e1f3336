package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	flowExplain   = "explain"
	flowBulk      = "explain_bulk"
	flowResources = "resources"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nexus",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI tutor requests",
	}, []string{"provider", "flow"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexus",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI tutor requests",
	}, []string{"provider", "flow"})
)

// JSONTutor implements Tutor on top of any Completer that answers with JSON.
type JSONTutor struct {
	completer Completer
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewJSONTutor wraps the completer with prompt building, schema checks and metrics.
func NewJSONTutor(completer Completer, logger zerolog.Logger) *JSONTutor {
	return &JSONTutor{
		completer: completer,
		tracer:    otel.Tracer("github.com/noah-isme/nexus-api/pkg/ai"),
		logger:    logger.With().Str("component", "ai_tutor").Str("provider", completer.Name()).Logger(),
	}
}

func (t *JSONTutor) Explain(ctx context.Context, input ExplanationInput) (ExplanationOutput, error) {
	var output ExplanationOutput
	if err := t.run(ctx, flowExplain, explanationPrompt(input), schemaExplanation, &output); err != nil {
		return ExplanationOutput{}, err
	}
	return output, nil
}

func (t *JSONTutor) ExplainBulk(ctx context.Context, input BulkExplanationInput) (BulkExplanationOutput, error) {
	if len(input.Topics) == 0 {
		return BulkExplanationOutput{Explanations: []string{}}, nil
	}

	var output BulkExplanationOutput
	if err := t.run(ctx, flowBulk, bulkExplanationPrompt(input), schemaBulkExplanation, &output); err != nil {
		return BulkExplanationOutput{}, err
	}
	if len(output.Explanations) != len(input.Topics) {
		err := fmt.Errorf("%w: expected %d explanations, got %d", ErrMalformedResponse, len(input.Topics), len(output.Explanations))
		aiFailures.WithLabelValues(t.completer.Name(), flowBulk).Inc()
		return BulkExplanationOutput{}, err
	}
	return output, nil
}

func (t *JSONTutor) SuggestResources(ctx context.Context, input ResourceInput) (ResourceSuggestions, error) {
	var output ResourceSuggestions
	if err := t.run(ctx, flowResources, resourcePrompt(input), schemaResources, &output); err != nil {
		return ResourceSuggestions{}, err
	}
	output.YoutubeKeywords = firstN(output.YoutubeKeywords, 3)
	output.ReferenceBooks = firstN(output.ReferenceBooks, 3)
	return output, nil
}

func (t *JSONTutor) run(parent context.Context, flow, prompt, schema string, target interface{}) error {
	provider := t.completer.Name()
	ctx, span := t.tracer.Start(parent, "ai."+flow, trace.WithAttributes(
		attribute.String("ai.provider", provider),
	))
	defer span.End()

	start := time.Now()
	raw, err := t.completer.Complete(ctx, tutorSystemPrompt, prompt)
	aiDuration.WithLabelValues(provider, flow).Observe(time.Since(start).Seconds())
	if err == nil {
		err = decodeValidated(schema, strings.TrimSpace(raw), target)
	}
	if err != nil {
		aiFailures.WithLabelValues(provider, flow).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Warn().Err(err).Str("flow", flow).Msg("ai tutor request failed")
		return fmt.Errorf("%s %s: %w", provider, flow, err)
	}

	return nil
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
