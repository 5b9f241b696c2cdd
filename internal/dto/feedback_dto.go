package dto

import (
	"time"

	"github.com/pixelpath-dev/pixelpath-api/internal/models"
	"github.com/pixelpath-dev/pixelpath-api/pkg/ai"
)

// FeedbackResponse is the consumer-facing shape of a generated review.
type FeedbackResponse struct {
	ID           uint              `json:"id"`
	SubmissionID uint              `json:"submission_id"`
	IsNew        bool              `json:"is_new"`
	Provider     string            `json:"provider"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Report       ai.FeedbackReport `json:"report"`
}

// NewFeedbackResponse adapts a stored review into the API payload. The
// feedback's Submission association must be loaded so the report can carry
// the challenge title and submission date.
func NewFeedbackResponse(feedback models.Feedback, isNew bool) FeedbackResponse {
	generatedAt := feedback.UpdatedAt
	if generatedAt.IsZero() {
		generatedAt = feedback.CreatedAt
	}

	return FeedbackResponse{
		ID:           feedback.ID,
		SubmissionID: feedback.SubmissionID,
		IsNew:        isNew,
		Provider:     feedback.Provider,
		GeneratedAt:  generatedAt,
		Report:       feedback.Report(),
	}
}
