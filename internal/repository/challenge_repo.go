package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pixelpath-dev/pixelpath-api/internal/models"
)

// ChallengeRepository exposes read access to the challenge catalogue.
type ChallengeRepository interface {
	GetByID(ctx context.Context, id uint) (models.Challenge, error)
}

// NewChallengeRepository constructs a challenge repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

type challengeRepository struct {
	db *gorm.DB
}

// GetByID loads a challenge with best-effort enrichment: a missing or
// unreadable detail record leaves the base fields intact and never fails
// the fetch.
func (r *challengeRepository) GetByID(ctx context.Context, id uint) (models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return models.Challenge{}, err
	}

	var detail models.ChallengeDetail
	err := r.db.WithContext(ctx).Where("challenge_id = ?", id).First(&detail).Error
	if err == nil {
		challenge.Detail = &detail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		// Enrichment is optional; serve the base challenge.
		challenge.Detail = nil
	}

	return challenge, nil
}
