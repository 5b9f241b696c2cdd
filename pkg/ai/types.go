package ai

import (
	"context"
	"time"
)

// Resource types accepted in the canonical review payload.
const (
	ResourceTypeVideo         = "video"
	ResourceTypeDocumentation = "documentation"
)

// Resource is a recommended learning resource attached to a review.
type Resource struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// RubricSection holds the four categorised note lists for one evaluation dimension.
type RubricSection struct {
	Success []string `json:"success"`
	Warning []string `json:"warning"`
	Error   []string `json:"error"`
	Info    []string `json:"info"`
}

// FeedbackReport is the canonical structured review produced for a submission.
type FeedbackReport struct {
	ChallengeTitle      string        `json:"challengeTitle"`
	SubmittedAt         time.Time     `json:"submittedAt"`
	PreviewURL          string        `json:"previewUrl"`
	CodeURL             string        `json:"codeUrl"`
	OverallScore        int           `json:"overallScore"`
	Rating              string        `json:"rating"`
	WhatYouDidWell      []string      `json:"whatYouDidWell"`
	AreasForImprovement []string      `json:"areasForImprovement"`
	BestPractices       RubricSection `json:"bestPractices"`
	CodeFormatting      RubricSection `json:"codeFormatting"`
	Functionality       RubricSection `json:"functionality"`
	Accessibility       RubricSection `json:"accessibility"`
	NextChallenge       string        `json:"nextChallenge"`
	Resources           []Resource    `json:"resources"`
	Screenshots         []string      `json:"screenshots"`
	DesignImages        []string      `json:"designImages"`
}

// PriorAttempt summarises an earlier reviewed submission by the same author.
type PriorAttempt struct {
	SubmissionID uint
	Score        int
	Summary      string
}

// ReviewInput carries the context a review is produced from.
type ReviewInput struct {
	ChallengeTitle   string
	Difficulty       string
	Description      string
	Requirements     []string
	ExpectedFeatures []string
	Tips             []string
	Pitfalls         []string
	RepositoryURL    string
	PreviewURL       string
	SubmittedAt      time.Time
	PriorAttempts    []PriorAttempt
}

// Reviewer produces a structured review for a submission. Implementations must
// always return a schema-complete report: unconfigured credentials, transport
// failures, and unusable model output resolve to the deterministic fallback
// report rather than an error.
type Reviewer interface {
	Review(ctx context.Context, input ReviewInput) FeedbackReport
}

// RatingFor derives the qualitative rating from an overall score.
func RatingFor(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}
