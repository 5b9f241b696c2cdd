package models

import (
	"time"

	"gorm.io/datatypes"
)

// Challenge difficulty tiers surfaced to students.
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// Challenge is the evaluation rubric a submission is reviewed against.
// Challenges are owned by the catalogue subsystem and read-only here.
type Challenge struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	Slug             string                      `gorm:"size:160;uniqueIndex" json:"slug"`
	Title            string                      `gorm:"size:255;not null" json:"title"`
	Difficulty       string                      `gorm:"size:32;not null" json:"difficulty"`
	Description      string                      `gorm:"type:text" json:"description"`
	Requirements     datatypes.JSONSlice[string] `json:"requirements"`
	ExpectedFeatures datatypes.JSONSlice[string] `json:"expected_features"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	Detail           *ChallengeDetail            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"detail,omitempty"`
}

// ChallengeDetail carries optional enrichment for a challenge. Its absence is
// a valid state; readers fall back to the base challenge fields.
type ChallengeDetail struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	ChallengeID         uint                        `gorm:"not null;uniqueIndex" json:"challenge_id"`
	EnrichedDescription string                      `gorm:"type:text" json:"enriched_description"`
	Tips                datatypes.JSONSlice[string] `json:"tips"`
	Pitfalls            datatypes.JSONSlice[string] `json:"pitfalls"`
	DesignImages        datatypes.JSONSlice[string] `json:"design_images"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// EffectiveDescription prefers the enriched description when present.
func (c Challenge) EffectiveDescription() string {
	if c.Detail != nil && c.Detail.EnrichedDescription != "" {
		return c.Detail.EnrichedDescription
	}
	return c.Description
}

// Tips returns enrichment tips, or an empty list when no detail exists.
func (c Challenge) Tips() []string {
	if c.Detail == nil {
		return []string{}
	}
	return c.Detail.Tips
}

// Pitfalls returns enrichment pitfalls, or an empty list when no detail exists.
func (c Challenge) Pitfalls() []string {
	if c.Detail == nil {
		return []string{}
	}
	return c.Detail.Pitfalls
}

// DesignImages returns reference design images, or an empty list when no detail exists.
func (c Challenge) DesignImages() []string {
	if c.Detail == nil {
		return []string{}
	}
	return c.Detail.DesignImages
}
