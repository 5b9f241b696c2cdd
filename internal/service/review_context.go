package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pixelpath-dev/pixelpath-api/internal/models"
	"github.com/pixelpath-dev/pixelpath-api/internal/repository"
	"github.com/pixelpath-dev/pixelpath-api/pkg/ai"
)

// reviewContext aggregates everything a review needs: the submission under
// review, the challenge it answers, and up to three prior reviewed attempts.
type reviewContext struct {
	Submission models.Submission
	Challenge  models.Challenge
	Prior      []repository.PriorAttempt
}

// fetchReviewContext resolves the submission first, then loads the challenge
// and prior attempts concurrently since they are independent reads. Transport
// errors propagate; missing records map to domain not-found errors.
func (s *feedbackService) fetchReviewContext(ctx context.Context, submissionID uint) (reviewContext, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reviewContext{}, ErrSubmissionNotFound
		}
		return reviewContext{}, err
	}

	rc := reviewContext{Submission: submission}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		challenge, err := s.challenges.GetByID(groupCtx, submission.ChallengeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}
		rc.Challenge = challenge
		return nil
	})
	group.Go(func() error {
		prior, err := s.submissions.ListPriorAttempts(groupCtx, submission.ChallengeID, submission.AuthorID, submission.ID, repository.DefaultPriorAttemptLimit)
		if err != nil {
			return err
		}
		rc.Prior = prior
		return nil
	})

	if err := group.Wait(); err != nil {
		return reviewContext{}, err
	}

	return rc, nil
}

// reviewInput flattens the fetched context into the reviewer's input value.
func (rc reviewContext) reviewInput() ai.ReviewInput {
	prior := make([]ai.PriorAttempt, 0, len(rc.Prior))
	for _, attempt := range rc.Prior {
		prior = append(prior, ai.PriorAttempt{
			SubmissionID: attempt.SubmissionID,
			Score:        attempt.Score,
			Summary:      attempt.Summary,
		})
	}

	return ai.ReviewInput{
		ChallengeTitle:   rc.Challenge.Title,
		Difficulty:       rc.Challenge.Difficulty,
		Description:      rc.Challenge.EffectiveDescription(),
		Requirements:     rc.Challenge.Requirements,
		ExpectedFeatures: rc.Challenge.ExpectedFeatures,
		Tips:             rc.Challenge.Tips(),
		Pitfalls:         rc.Challenge.Pitfalls(),
		RepositoryURL:    rc.Submission.RepositoryURL,
		PreviewURL:       rc.Submission.PreviewURL,
		SubmittedAt:      rc.Submission.CreatedAt,
		PriorAttempts:    prior,
	}
}
