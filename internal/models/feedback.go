package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/pixelpath-dev/pixelpath-api/pkg/ai"
)

// Feedback is the persisted review for a submission. At most one row exists
// per submission id: writes go through an upsert keyed on submission_id, so a
// forced regeneration replaces the row instead of appending a duplicate.
type Feedback struct {
	ID             uint                                  `gorm:"primaryKey" json:"id"`
	SubmissionID   uint                                  `gorm:"not null;uniqueIndex" json:"submission_id"`
	OverallScore   int                                   `gorm:"not null" json:"overall_score"`
	Rating         string                                `gorm:"size:32;not null" json:"rating"`
	Strengths      datatypes.JSONSlice[string]           `json:"strengths"`
	Improvements   datatypes.JSONSlice[string]           `json:"improvements"`
	BestPractices  datatypes.JSONType[ai.RubricSection]  `json:"best_practices"`
	CodeFormatting datatypes.JSONType[ai.RubricSection]  `json:"code_formatting"`
	Functionality  datatypes.JSONType[ai.RubricSection]  `json:"functionality"`
	Accessibility  datatypes.JSONType[ai.RubricSection]  `json:"accessibility"`
	NextChallenge  string                                `gorm:"type:text" json:"next_challenge"`
	Resources      datatypes.JSONSlice[ai.Resource]      `json:"resources"`
	PreviewURL     string                                `gorm:"size:512" json:"preview_url"`
	CodeURL        string                                `gorm:"size:512" json:"code_url"`
	Screenshots    datatypes.JSONSlice[string]           `json:"screenshots"`
	DesignImages   datatypes.JSONSlice[string]           `json:"design_images"`
	Provider       string                                `gorm:"size:32" json:"provider"`
	CreatedAt      time.Time                             `json:"created_at"`
	UpdatedAt      time.Time                             `json:"updated_at"`
	Submission     Submission                            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// NewFeedback flattens a canonical report into storage columns.
func NewFeedback(submissionID uint, provider string, report ai.FeedbackReport) Feedback {
	return Feedback{
		SubmissionID:   submissionID,
		OverallScore:   report.OverallScore,
		Rating:         report.Rating,
		Strengths:      datatypes.NewJSONSlice(report.WhatYouDidWell),
		Improvements:   datatypes.NewJSONSlice(report.AreasForImprovement),
		BestPractices:  datatypes.NewJSONType(report.BestPractices),
		CodeFormatting: datatypes.NewJSONType(report.CodeFormatting),
		Functionality:  datatypes.NewJSONType(report.Functionality),
		Accessibility:  datatypes.NewJSONType(report.Accessibility),
		NextChallenge:  report.NextChallenge,
		Resources:      datatypes.NewJSONSlice(report.Resources),
		PreviewURL:     report.PreviewURL,
		CodeURL:        report.CodeURL,
		Screenshots:    datatypes.NewJSONSlice(report.Screenshots),
		DesignImages:   datatypes.NewJSONSlice(report.DesignImages),
		Provider:       provider,
	}
}

// Report materialises the canonical review from storage columns. Challenge
// title and submission date come from the joined submission record, so the
// Submission association must be loaded.
func (f Feedback) Report() ai.FeedbackReport {
	return ai.FeedbackReport{
		ChallengeTitle:      f.Submission.Challenge.Title,
		SubmittedAt:         f.Submission.CreatedAt,
		PreviewURL:          f.PreviewURL,
		CodeURL:             f.CodeURL,
		OverallScore:        f.OverallScore,
		Rating:              f.Rating,
		WhatYouDidWell:      emptyIfNil(f.Strengths),
		AreasForImprovement: emptyIfNil(f.Improvements),
		BestPractices:       f.BestPractices.Data(),
		CodeFormatting:      f.CodeFormatting.Data(),
		Functionality:       f.Functionality.Data(),
		Accessibility:       f.Accessibility.Data(),
		NextChallenge:       f.NextChallenge,
		Resources:           emptyIfNil([]ai.Resource(f.Resources)),
		Screenshots:         emptyIfNil(f.Screenshots),
		DesignImages:        emptyIfNil(f.DesignImages),
	}
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
