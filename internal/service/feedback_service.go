package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/pixelpath-dev/pixelpath-api/internal/dto"
	"github.com/pixelpath-dev/pixelpath-api/internal/models"
	"github.com/pixelpath-dev/pixelpath-api/internal/repository"
	"github.com/pixelpath-dev/pixelpath-api/pkg/ai"
)

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrChallengeNotFound indicates the submission's challenge cannot be located.
var ErrChallengeNotFound = errors.New("challenge not found")

// ErrFeedbackNotFound indicates no review has been generated for the submission.
var ErrFeedbackNotFound = errors.New("feedback not found")

const feedbackEventSubject = "pixelpath.feedback.generated"

// FeedbackService runs the review pipeline: cache probe, context fetch, AI
// review, persistence. Generate is idempotent; Regenerate always re-reviews.
type FeedbackService interface {
	Generate(ctx context.Context, submissionID uint) (dto.FeedbackResponse, error)
	Regenerate(ctx context.Context, submissionID uint) (dto.FeedbackResponse, error)
	GetCached(ctx context.Context, submissionID uint) (dto.FeedbackResponse, error)
}

type feedbackService struct {
	feedbacks   repository.FeedbackRepository
	submissions repository.SubmissionRepository
	challenges  repository.ChallengeRepository
	reviewer    ai.Reviewer
	cache       *redis.Client
	cacheTTL    time.Duration
	events      *nats.Conn
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	group       singleflight.Group
}

// NewFeedbackService constructs the review pipeline orchestrator. The redis
// client and NATS connection are optional; a nil value disables the hot cache
// or event publication respectively.
func NewFeedbackService(feedbacks repository.FeedbackRepository, submissions repository.SubmissionRepository, challenges repository.ChallengeRepository, reviewer ai.Reviewer, cache *redis.Client, cacheTTL time.Duration, events *nats.Conn, logger zerolog.Logger) FeedbackService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}

	return &feedbackService{
		feedbacks:   feedbacks,
		submissions: submissions,
		challenges:  challenges,
		reviewer:    reviewer,
		cache:       cache,
		cacheTTL:    cacheTTL,
		events:      events,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "feedback_service").Logger(),
	}
}

// Generate returns the stored review when one exists, otherwise runs the full
// pipeline. Concurrent calls for the same submission collapse into a single
// flight, so the AI service is invoked at most once per miss.
func (s *feedbackService) Generate(ctx context.Context, submissionID uint) (dto.FeedbackResponse, error) {
	return s.deduped(ctx, "generate", submissionID, s.generate)
}

// Regenerate skips the cache probe entirely: the AI service is always invoked
// and the stored row is replaced. Regeneration flights are keyed apart from
// Generate flights; a forced refresh must never be handed a cache-hit result.
func (s *feedbackService) Regenerate(ctx context.Context, submissionID uint) (dto.FeedbackResponse, error) {
	return s.deduped(ctx, "regenerate", submissionID, s.produce)
}

// GetCached is a pure read: it never triggers generation.
func (s *feedbackService) GetCached(ctx context.Context, submissionID uint) (dto.FeedbackResponse, error) {
	if response, ok := s.readHotCache(ctx, submissionID); ok {
		return response, nil
	}

	feedback, err := s.feedbacks.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrFeedbackNotFound
		}
		return dto.FeedbackResponse{}, err
	}

	response := dto.NewFeedbackResponse(feedback, false)
	s.writeHotCache(ctx, response)
	return response, nil
}

func (s *feedbackService) deduped(ctx context.Context, operation string, submissionID uint, fn func(context.Context, uint) (dto.FeedbackResponse, error)) (dto.FeedbackResponse, error) {
	key := fmt.Sprintf("%s:%d", operation, submissionID)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Joined waiters outlive the caller that opened the flight, so the
		// flight must not die with that caller's request context.
		return fn(context.WithoutCancel(ctx), submissionID)
	})
	if err != nil {
		return dto.FeedbackResponse{}, err
	}
	return result.(dto.FeedbackResponse), nil
}

func (s *feedbackService) generate(ctx context.Context, submissionID uint) (dto.FeedbackResponse, error) {
	if response, ok := s.readHotCache(ctx, submissionID); ok {
		return response, nil
	}

	feedback, err := s.feedbacks.GetBySubmissionID(ctx, submissionID)
	if err == nil {
		s.logger.Debug().Uint("submission_id", submissionID).Msg("feedback cache hit")
		response := dto.NewFeedbackResponse(feedback, false)
		s.writeHotCache(ctx, response)
		return response, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.FeedbackResponse{}, fmt.Errorf("probe stored feedback: %w", err)
	}

	return s.produce(ctx, submissionID)
}

// produce runs the miss path: fetch context, review, sanitize, attach image
// references, persist, publish. Persistence failures surface to the caller;
// the reviewer itself cannot fail.
func (s *feedbackService) produce(ctx context.Context, submissionID uint) (dto.FeedbackResponse, error) {
	rc, err := s.fetchReviewContext(ctx, submissionID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	report := s.sanitizeReport(s.reviewer.Review(ctx, rc.reviewInput()))
	report.Screenshots = append([]string{}, rc.Submission.Screenshots...)
	report.DesignImages = append([]string{}, rc.Challenge.DesignImages()...)

	feedback := models.NewFeedback(submissionID, s.providerName(), report)
	if err := s.feedbacks.Upsert(ctx, &feedback); err != nil {
		return dto.FeedbackResponse{}, fmt.Errorf("persist feedback: %w", err)
	}

	feedback.Submission = rc.Submission
	feedback.Submission.Challenge = rc.Challenge

	response := dto.NewFeedbackResponse(feedback, true)
	s.writeHotCache(ctx, response)
	s.publishGenerated(response)

	s.logger.Info().
		Uint("submission_id", submissionID).
		Int("score", report.OverallScore).
		Str("provider", feedback.Provider).
		Msg("feedback generated")

	return response, nil
}

// sanitizeReport strips any markup from the model's free text before it is
// persisted or rendered. URLs are left untouched; they are filtered for shape
// during normalisation.
func (s *feedbackService) sanitizeReport(report ai.FeedbackReport) ai.FeedbackReport {
	cleanList := func(items []string) []string {
		result := make([]string, 0, len(items))
		for _, item := range items {
			result = append(result, s.sanitizer.Sanitize(item))
		}
		return result
	}
	cleanSection := func(section ai.RubricSection) ai.RubricSection {
		return ai.RubricSection{
			Success: cleanList(section.Success),
			Warning: cleanList(section.Warning),
			Error:   cleanList(section.Error),
			Info:    cleanList(section.Info),
		}
	}

	report.WhatYouDidWell = cleanList(report.WhatYouDidWell)
	report.AreasForImprovement = cleanList(report.AreasForImprovement)
	report.BestPractices = cleanSection(report.BestPractices)
	report.CodeFormatting = cleanSection(report.CodeFormatting)
	report.Functionality = cleanSection(report.Functionality)
	report.Accessibility = cleanSection(report.Accessibility)
	report.NextChallenge = s.sanitizer.Sanitize(report.NextChallenge)
	for i := range report.Resources {
		report.Resources[i].Title = s.sanitizer.Sanitize(report.Resources[i].Title)
	}

	return report
}

func feedbackCacheKey(submissionID uint) string {
	return fmt.Sprintf("feedback:submission:%d", submissionID)
}

func (s *feedbackService) readHotCache(ctx context.Context, submissionID uint) (dto.FeedbackResponse, bool) {
	if s.cache == nil {
		return dto.FeedbackResponse{}, false
	}

	payload, err := s.cache.Get(ctx, feedbackCacheKey(submissionID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read feedback hot cache")
		}
		return dto.FeedbackResponse{}, false
	}

	var response dto.FeedbackResponse
	if err := json.Unmarshal([]byte(payload), &response); err != nil {
		return dto.FeedbackResponse{}, false
	}
	return response, true
}

func (s *feedbackService) writeHotCache(ctx context.Context, response dto.FeedbackResponse) {
	if s.cache == nil {
		return
	}

	// Cached copies always read as existing feedback.
	response.IsNew = false
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, feedbackCacheKey(response.SubmissionID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store feedback hot cache")
	}
}

type feedbackGeneratedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	Score        int       `json:"score"`
	Rating       string    `json:"rating"`
	Provider     string    `json:"provider"`
	GeneratedAt  time.Time `json:"generated_at"`
}

func (s *feedbackService) publishGenerated(response dto.FeedbackResponse) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(feedbackGeneratedEvent{
		SubmissionID: response.SubmissionID,
		Score:        response.Report.OverallScore,
		Rating:       response.Report.Rating,
		Provider:     response.Provider,
		GeneratedAt:  response.GeneratedAt,
	})
	if err != nil {
		return
	}

	if err := s.events.Publish(feedbackEventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish feedback generated event")
	}
}

func (s *feedbackService) providerName() string {
	switch reviewer := s.reviewer.(type) {
	case *ai.OpenAIReviewer:
		if reviewer.Configured() {
			return "openai"
		}
		return "fallback"
	default:
		return "unknown"
	}
}
