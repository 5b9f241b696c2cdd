package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one user's attempt at a challenge: a repository link, a live
// preview link, and optional screenshots. Submissions are immutable once
// created and owned by the submission subsystem; this service only reads them.
type Submission struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	ChallengeID   uint                        `gorm:"not null;index" json:"challenge_id"`
	AuthorID      uint                        `gorm:"not null;index" json:"author_id"`
	RepositoryURL string                      `gorm:"size:512;not null" json:"repository_url"`
	PreviewURL    string                      `gorm:"size:512;not null" json:"preview_url"`
	Screenshots   datatypes.JSONSlice[string] `json:"screenshots"`
	CreatedAt     time.Time                   `json:"created_at"`
	Challenge     Challenge                   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"challenge"`
}
