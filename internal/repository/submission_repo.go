package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pixelpath-dev/pixelpath-api/internal/models"
)

// DefaultPriorAttemptLimit bounds how many prior attempts feed a review prompt.
const DefaultPriorAttemptLimit = 3

// PriorAttempt summarises an earlier reviewed submission by the same author
// for the same challenge. It is prompt context only, never mutated.
type PriorAttempt struct {
	SubmissionID uint
	Score        int
	Summary      string
}

// SubmissionRepository exposes read access to submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListPriorAttempts(ctx context.Context, challengeID, authorID, excludeID uint, limit int) ([]PriorAttempt, error)
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).First(&submission, id).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// ListPriorAttempts returns up to limit reviewed submissions by the author for
// the challenge, newest first, excluding the submission under review. Attempts
// that were never reviewed carry no score and are skipped by the join.
func (r *submissionRepository) ListPriorAttempts(ctx context.Context, challengeID, authorID, excludeID uint, limit int) ([]PriorAttempt, error) {
	if limit <= 0 {
		limit = DefaultPriorAttemptLimit
	}

	var rows []struct {
		SubmissionID uint
		CreatedAt    time.Time
		OverallScore int
		Rating       string
	}

	err := r.db.WithContext(ctx).
		Table("submissions").
		Select("submissions.id AS submission_id, submissions.created_at, feedbacks.overall_score, feedbacks.rating").
		Joins("JOIN feedbacks ON feedbacks.submission_id = submissions.id").
		Where("submissions.challenge_id = ? AND submissions.author_id = ? AND submissions.id <> ?", challengeID, authorID, excludeID).
		Order("submissions.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]PriorAttempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, PriorAttempt{
			SubmissionID: row.SubmissionID,
			Score:        row.OverallScore,
			Summary: fmt.Sprintf("Scored %d/100 (%s) on %s",
				row.OverallScore, row.Rating, row.CreatedAt.UTC().Format("2006-01-02")),
		})
	}

	return attempts, nil
}
