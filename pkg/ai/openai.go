package ai

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	reviewDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pixelpath",
		Subsystem: "ai",
		Name:      "review_duration_seconds",
		Help:      "Duration of AI review requests",
	}, []string{"model"})

	reviewFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pixelpath",
		Subsystem: "ai",
		Name:      "review_fallbacks_total",
		Help:      "Number of reviews resolved with the fallback report",
	}, []string{"model", "reason"})
)

// Config defines configuration options for the OpenAI reviewer. An empty
// APIKey is a valid state: the reviewer then serves the fallback report
// without contacting the service.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OpenAIReviewer implements Reviewer against the OpenAI chat completion API.
type OpenAIReviewer struct {
	client *openai.Client
	cfg    Config
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIReviewer builds a reviewer using the provided configuration.
func NewOpenAIReviewer(cfg Config) *OpenAIReviewer {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		client = openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey))
	}

	return &OpenAIReviewer{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/pixelpath-dev/pixelpath-api/pkg/ai/openai"),
		logger: logger.With().Str("component", "openai_reviewer").Logger(),
	}
}

// Configured reports whether a credential is available for real reviews.
func (r *OpenAIReviewer) Configured() bool {
	return r.client != nil
}

// Review sends the review request to OpenAI and normalises the response.
// It never fails: any degraded condition yields the fallback report.
func (r *OpenAIReviewer) Review(parent context.Context, input ReviewInput) FeedbackReport {
	if r.client == nil {
		reviewFallbacks.WithLabelValues(r.cfg.Model, "unconfigured").Inc()
		return FallbackReport(input)
	}

	ctx, span := r.tracer.Start(parent, "openai.review", trace.WithAttributes(
		attribute.String("model", r.cfg.Model),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       r.cfg.Model,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: reviewerSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildReviewPrompt(input),
			},
		},
	}

	resp, err := r.client.CreateChatCompletion(ctx, request)
	reviewDuration.WithLabelValues(r.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		reason := "request_failed"
		if ctx.Err() != nil {
			reason = "timeout"
		}
		reviewFallbacks.WithLabelValues(r.cfg.Model, reason).Inc()
		r.logger.Warn().Err(err).Str("reason", reason).Msg("review request failed, serving fallback report")
		return FallbackReport(input)
	}

	if len(resp.Choices) == 0 {
		reviewFallbacks.WithLabelValues(r.cfg.Model, "empty_response").Inc()
		r.logger.Warn().Msg("no choices returned from openai, serving fallback report")
		return FallbackReport(input)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	payload, err := extractJSONObject(content)
	if err != nil {
		span.RecordError(err)
		reviewFallbacks.WithLabelValues(r.cfg.Model, "unparseable").Inc()
		r.logger.Warn().Err(err).Msg("review response was not parseable, serving fallback report")
		return FallbackReport(input)
	}

	return normalizeReport(payload, input)
}
