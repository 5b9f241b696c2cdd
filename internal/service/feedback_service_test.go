package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pixelpath-dev/pixelpath-api/internal/dto"
	"github.com/pixelpath-dev/pixelpath-api/internal/models"
	"github.com/pixelpath-dev/pixelpath-api/internal/repository"
	"github.com/pixelpath-dev/pixelpath-api/pkg/ai"
)

type stubReviewer struct {
	calls  int
	ctxErr error
	report ai.FeedbackReport
}

func (r *stubReviewer) Review(ctx context.Context, input ai.ReviewInput) ai.FeedbackReport {
	r.calls++
	r.ctxErr = ctx.Err()
	report := r.report
	report.ChallengeTitle = input.ChallengeTitle
	report.SubmittedAt = input.SubmittedAt
	report.PreviewURL = input.PreviewURL
	report.CodeURL = input.RepositoryURL
	return report
}

type stubFeedbackRepo struct {
	stored     map[uint]models.Feedback
	submission models.Submission
	upserts    int
	getErr     error
	upsertErr  error
}

func newStubFeedbackRepo(submission models.Submission) *stubFeedbackRepo {
	return &stubFeedbackRepo{stored: map[uint]models.Feedback{}, submission: submission}
}

func (r *stubFeedbackRepo) Exists(_ context.Context, submissionID uint) (bool, error) {
	_, ok := r.stored[submissionID]
	return ok, nil
}

func (r *stubFeedbackRepo) GetBySubmissionID(_ context.Context, submissionID uint) (models.Feedback, error) {
	if r.getErr != nil {
		return models.Feedback{}, r.getErr
	}
	feedback, ok := r.stored[submissionID]
	if !ok {
		return models.Feedback{}, gorm.ErrRecordNotFound
	}
	feedback.Submission = r.submission
	return feedback, nil
}

func (r *stubFeedbackRepo) Upsert(_ context.Context, feedback *models.Feedback) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserts++
	r.stored[feedback.SubmissionID] = *feedback
	return nil
}

type stubSubmissionRepo struct {
	submissions map[uint]models.Submission
	prior       []repository.PriorAttempt
}

func (r *stubSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := r.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (r *stubSubmissionRepo) ListPriorAttempts(_ context.Context, _, _, _ uint, _ int) ([]repository.PriorAttempt, error) {
	return r.prior, nil
}

type stubChallengeRepo struct {
	challenges map[uint]models.Challenge
}

func (r *stubChallengeRepo) GetByID(_ context.Context, id uint) (models.Challenge, error) {
	challenge, ok := r.challenges[id]
	if !ok {
		return models.Challenge{}, gorm.ErrRecordNotFound
	}
	return challenge, nil
}

func fixtureChallenge() models.Challenge {
	return models.Challenge{
		ID:          3,
		Slug:        "product-card",
		Title:       "Product Card",
		Difficulty:  models.DifficultyBeginner,
		Description: "Build a product preview card",
		Detail: &models.ChallengeDetail{
			ChallengeID:  3,
			DesignImages: datatypes.NewJSONSlice([]string{"https://cdn.test/design.png"}),
		},
	}
}

func fixtureSubmission(challenge models.Challenge) models.Submission {
	return models.Submission{
		ID:            10,
		ChallengeID:   challenge.ID,
		AuthorID:      7,
		RepositoryURL: "https://github.com/user/product-card",
		PreviewURL:    "https://user.github.io/product-card",
		Screenshots:   datatypes.NewJSONSlice([]string{"https://cdn.test/shot.png"}),
		CreatedAt:     time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Challenge:     challenge,
	}
}

func reviewedReport(score int) ai.FeedbackReport {
	return ai.FeedbackReport{
		OverallScore:        score,
		Rating:              ai.RatingFor(score),
		WhatYouDidWell:      []string{"clean layout"},
		AreasForImprovement: []string{"tighten spacing"},
		BestPractices:       ai.RubricSection{Success: []string{"semantic markup"}, Warning: []string{}, Error: []string{}, Info: []string{}},
		CodeFormatting:      ai.RubricSection{Success: []string{}, Warning: []string{}, Error: []string{}, Info: []string{}},
		Functionality:       ai.RubricSection{Success: []string{}, Warning: []string{}, Error: []string{}, Info: []string{}},
		Accessibility:       ai.RubricSection{Success: []string{}, Warning: []string{}, Error: []string{}, Info: []string{}},
		NextChallenge:       "Try the pricing grid next.",
		Resources: []ai.Resource{
			{Type: ai.ResourceTypeDocumentation, Title: "MDN Web Docs", URL: "https://developer.mozilla.org/"},
		},
		Screenshots:  []string{},
		DesignImages: []string{},
	}
}

type serviceFixture struct {
	service     FeedbackService
	reviewer    *stubReviewer
	feedbacks   *stubFeedbackRepo
	submissions *stubSubmissionRepo
	challenges  *stubChallengeRepo
	submission  models.Submission
}

func newServiceFixture(t *testing.T, cache *redis.Client) serviceFixture {
	t.Helper()

	challenge := fixtureChallenge()
	submission := fixtureSubmission(challenge)

	reviewer := &stubReviewer{report: reviewedReport(82)}
	feedbacks := newStubFeedbackRepo(submission)
	submissions := &stubSubmissionRepo{submissions: map[uint]models.Submission{submission.ID: submission}}
	challenges := &stubChallengeRepo{challenges: map[uint]models.Challenge{challenge.ID: challenge}}

	svc := NewFeedbackService(feedbacks, submissions, challenges, reviewer, cache, time.Minute, nil, zerolog.New(io.Discard))

	return serviceFixture{
		service:     svc,
		reviewer:    reviewer,
		feedbacks:   feedbacks,
		submissions: submissions,
		challenges:  challenges,
		submission:  submission,
	}
}

func TestGenerateMissRunsFullPipeline(t *testing.T) {
	f := newServiceFixture(t, nil)

	response, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)

	require.True(t, response.IsNew)
	require.Equal(t, 1, f.reviewer.calls)
	require.Equal(t, 1, f.feedbacks.upserts)
	require.Equal(t, f.submission.ID, response.SubmissionID)
	require.Equal(t, 82, response.Report.OverallScore)
	require.Equal(t, "Product Card", response.Report.ChallengeTitle)
	require.Equal(t, []string{"https://cdn.test/shot.png"}, response.Report.Screenshots)
	require.Equal(t, []string{"https://cdn.test/design.png"}, response.Report.DesignImages)
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := newServiceFixture(t, nil)

	first, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)
	require.True(t, first.IsNew)

	second, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)
	require.False(t, second.IsNew)

	require.Equal(t, 1, f.reviewer.calls, "stored feedback must short-circuit the reviewer")
	require.Equal(t, 1, f.feedbacks.upserts)
	require.Equal(t, first.Report, second.Report)
}

func TestRegenerateAlwaysReviews(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)

	f.reviewer.report = reviewedReport(95)
	response, err := f.service.Regenerate(context.Background(), f.submission.ID)
	require.NoError(t, err)

	require.True(t, response.IsNew)
	require.Equal(t, 2, f.reviewer.calls)
	require.Equal(t, 2, f.feedbacks.upserts)
	require.Equal(t, 95, response.Report.OverallScore)
	require.Equal(t, "Excellent", response.Report.Rating)
}

func TestGenerateUnknownSubmission(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.service.Generate(context.Background(), 404)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
	require.Zero(t, f.reviewer.calls)
}

func TestGenerateMissingChallenge(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.challenges.challenges = map[uint]models.Challenge{}

	_, err := f.service.Generate(context.Background(), f.submission.ID)
	require.ErrorIs(t, err, ErrChallengeNotFound)
	require.Zero(t, f.reviewer.calls)
}

func TestGeneratePersistFailurePropagates(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.feedbacks.upsertErr = errors.New("connection reset")

	_, err := f.service.Generate(context.Background(), f.submission.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "persist feedback")
	require.Equal(t, 1, f.reviewer.calls)
}

func TestGenerateSanitizesModelMarkup(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.reviewer.report.WhatYouDidWell = []string{`<script>alert("x")</script>clean layout`}
	f.reviewer.report.NextChallenge = `Try the <b>pricing grid</b> next.`

	response, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"clean layout"}, response.Report.WhatYouDidWell)
	require.Equal(t, "Try the pricing grid next.", response.Report.NextChallenge)
}

func TestGenerateWithUnconfiguredReviewerServesFallback(t *testing.T) {
	f := newServiceFixture(t, nil)
	reviewer := ai.NewOpenAIReviewer(ai.Config{})
	f.service = NewFeedbackService(f.feedbacks, f.submissions, f.challenges, reviewer, nil, time.Minute, nil, zerolog.New(io.Discard))

	response, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)

	require.Equal(t, "fallback", response.Provider)
	require.Equal(t, 75, response.Report.OverallScore)
	require.Equal(t, "Good", response.Report.Rating)
	require.Len(t, response.Report.Resources, 2)
	require.NotEmpty(t, response.Report.WhatYouDidWell)
	require.NotEmpty(t, response.Report.NextChallenge)
	require.NotEmpty(t, response.Report.Accessibility.Info)
}

func TestGenerateUsesHotCache(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	f := newServiceFixture(t, cache)

	first, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)
	require.True(t, first.IsNew)
	require.True(t, server.Exists("feedback:submission:10"))

	// Wipe the durable store; the hot cache alone must serve the repeat call.
	f.feedbacks.stored = map[uint]models.Feedback{}
	second, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)
	require.False(t, second.IsNew)
	require.Equal(t, first.Report, second.Report)
	require.Equal(t, 1, f.reviewer.calls)
}

func TestHotCacheEntryExpires(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	f := newServiceFixture(t, cache)

	_, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)

	server.FastForward(2 * time.Minute)
	require.False(t, server.Exists("feedback:submission:10"))

	// Expiry falls through to the durable store, not regeneration.
	response, err := f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)
	require.False(t, response.IsNew)
	require.Equal(t, 1, f.reviewer.calls)
}

// gatedFeedbackRepo holds every store read open until released, so a test can
// pin a generate flight at its probe step.
type gatedFeedbackRepo struct {
	*stubFeedbackRepo
	entered chan struct{}
	release chan struct{}
}

func (r *gatedFeedbackRepo) GetBySubmissionID(ctx context.Context, submissionID uint) (models.Feedback, error) {
	r.entered <- struct{}{}
	<-r.release
	return r.stubFeedbackRepo.GetBySubmissionID(ctx, submissionID)
}

func TestRegenerateDoesNotJoinGenerateFlight(t *testing.T) {
	f := newServiceFixture(t, nil)
	f.feedbacks.stored[f.submission.ID] = models.NewFeedback(f.submission.ID, "openai", reviewedReport(70))

	gate := &gatedFeedbackRepo{
		stubFeedbackRepo: f.feedbacks,
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	svc := NewFeedbackService(gate, f.submissions, f.challenges, f.reviewer, nil, time.Minute, nil, zerolog.New(io.Discard))

	type outcome struct {
		response dto.FeedbackResponse
		err      error
	}

	generateDone := make(chan outcome, 1)
	go func() {
		response, err := svc.Generate(context.Background(), f.submission.ID)
		generateDone <- outcome{response, err}
	}()

	<-gate.entered

	regenerateDone := make(chan outcome, 1)
	go func() {
		response, err := svc.Regenerate(context.Background(), f.submission.ID)
		regenerateDone <- outcome{response, err}
	}()

	select {
	case regenerated := <-regenerateDone:
		require.NoError(t, regenerated.err)
		require.True(t, regenerated.response.IsNew)
		require.Equal(t, 1, f.reviewer.calls, "forced refresh must invoke the reviewer even while a generate flight is open")
	case <-time.After(2 * time.Second):
		t.Fatal("regenerate stalled behind the in-flight generate")
	}

	close(gate.release)
	generated := <-generateDone
	require.NoError(t, generated.err)
	require.False(t, generated.response.IsNew)
}

func TestGenerateSurvivesCallerDisconnect(t *testing.T) {
	f := newServiceFixture(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	response, err := f.service.Generate(ctx, f.submission.ID)
	require.NoError(t, err)
	require.True(t, response.IsNew)
	require.Equal(t, 1, f.reviewer.calls)
	require.NoError(t, f.reviewer.ctxErr, "the flight must not inherit the caller's cancellation")
}

func TestGetCachedNeverGenerates(t *testing.T) {
	f := newServiceFixture(t, nil)

	_, err := f.service.GetCached(context.Background(), f.submission.ID)
	require.ErrorIs(t, err, ErrFeedbackNotFound)
	require.Zero(t, f.reviewer.calls)

	_, err = f.service.Generate(context.Background(), f.submission.ID)
	require.NoError(t, err)

	response, err := f.service.GetCached(context.Background(), f.submission.ID)
	require.NoError(t, err)
	require.False(t, response.IsNew)
	require.Equal(t, 82, response.Report.OverallScore)
	require.Equal(t, 1, f.reviewer.calls)
}
