package ai

const fallbackNextChallenge = "Keep building! Pick another challenge at your current difficulty and apply what you practised here."

const fallbackSectionNote = "Automated analysis is currently unavailable for this category."

// FallbackReport returns the deterministic, schema-complete report served when
// the generative service cannot be consulted or returned unusable output. The
// shape is indistinguishable from a real review; only the content is generic.
func FallbackReport(input ReviewInput) FeedbackReport {
	return FeedbackReport{
		ChallengeTitle: input.ChallengeTitle,
		SubmittedAt:    input.SubmittedAt,
		PreviewURL:     input.PreviewURL,
		CodeURL:        input.RepositoryURL,
		OverallScore:   defaultScore,
		Rating:         RatingFor(defaultScore),
		WhatYouDidWell: []string{
			"You completed the challenge and submitted a working solution.",
			"Your submission includes both a live preview and a public code repository.",
		},
		AreasForImprovement: []string{
			"A detailed automated review was not available for this submission. Compare your result against the challenge requirements to find refinements.",
		},
		BestPractices:  fallbackSection(),
		CodeFormatting: fallbackSection(),
		Functionality:  fallbackSection(),
		Accessibility:  fallbackSection(),
		NextChallenge:  fallbackNextChallenge,
		Resources: []Resource{
			{
				Type:  ResourceTypeDocumentation,
				Title: "MDN Web Docs",
				URL:   "https://developer.mozilla.org/",
			},
			{
				Type:  ResourceTypeVideo,
				Title: "freeCodeCamp Responsive Web Design",
				URL:   "https://www.youtube.com/c/Freecodecamp",
			},
		},
		Screenshots:  []string{},
		DesignImages: []string{},
	}
}

func fallbackSection() RubricSection {
	return RubricSection{
		Success: []string{},
		Warning: []string{},
		Error:   []string{},
		Info:    []string{fallbackSectionNote},
	}
}
