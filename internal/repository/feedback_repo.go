package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pixelpath-dev/pixelpath-api/internal/models"
)

// FeedbackRepository persists generated reviews, one row per submission.
type FeedbackRepository interface {
	Exists(ctx context.Context, submissionID uint) (bool, error)
	GetBySubmissionID(ctx context.Context, submissionID uint) (models.Feedback, error)
	Upsert(ctx context.Context, feedback *models.Feedback) error
}

// NewFeedbackRepository constructs a feedback repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

type feedbackRepository struct {
	db *gorm.DB
}

func (r *feedbackRepository) Exists(ctx context.Context, submissionID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Feedback{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetBySubmissionID loads the stored review together with the submission and
// challenge it belongs to, so the canonical report can be materialised.
func (r *feedbackRepository) GetBySubmissionID(ctx context.Context, submissionID uint) (models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).
		Preload("Submission").
		Preload("Submission.Challenge").
		Where("submission_id = ?", submissionID).
		First(&feedback).Error
	if err != nil {
		return models.Feedback{}, err
	}
	return feedback, nil
}

// Upsert inserts the review or, when a row for the submission already exists,
// replaces it in place. The unique index on submission_id makes regeneration
// and racing writers converge on a single durable row.
func (r *feedbackRepository) Upsert(ctx context.Context, feedback *models.Feedback) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}},
			UpdateAll: true,
		}).
		Omit("Submission").
		Create(feedback).Error
	if err != nil {
		return err
	}

	// On the conflict-update path some drivers leave the primary key unset.
	if feedback.ID == 0 {
		var existing models.Feedback
		if err := r.db.WithContext(ctx).
			Select("id").
			Where("submission_id = ?", feedback.SubmissionID).
			First(&existing).Error; err != nil {
			return err
		}
		feedback.ID = existing.ID
	}

	return nil
}
