package ai

import "strings"

// defaultScore is used whenever the model omits the overall score or returns
// something non-numeric.
const defaultScore = 75

// normalizeReport converts the untyped payload a model returned into the
// canonical report, field by field. It is total: every field that is missing
// or has the wrong shape is replaced with a safe default, never rejected.
func normalizeReport(payload map[string]interface{}, input ReviewInput) FeedbackReport {
	score := normalizeScore(payload["overallScore"])

	report := FeedbackReport{
		ChallengeTitle:      input.ChallengeTitle,
		SubmittedAt:         input.SubmittedAt,
		PreviewURL:          input.PreviewURL,
		CodeURL:             input.RepositoryURL,
		OverallScore:        score,
		Rating:              RatingFor(score),
		WhatYouDidWell:      toStringList(payload["whatYouDidWell"]),
		AreasForImprovement: toStringList(payload["areasForImprovement"]),
		BestPractices:       toRubricSection(payload["bestPractices"]),
		CodeFormatting:      toRubricSection(payload["codeFormatting"]),
		Functionality:       toRubricSection(payload["functionality"]),
		Accessibility:       toRubricSection(payload["accessibility"]),
		NextChallenge:       toText(payload["nextChallenge"]),
		Resources:           toResources(payload["resources"]),
		Screenshots:         []string{},
		DesignImages:        []string{},
	}

	if report.NextChallenge == "" {
		report.NextChallenge = fallbackNextChallenge
	}

	return report
}

func normalizeScore(value interface{}) int {
	number, ok := value.(float64)
	if !ok {
		return defaultScore
	}

	score := int(number)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// toStringList coerces a value into a list of strings; anything that is not
// an array yields an empty list, and non-string entries are dropped.
func toStringList(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return []string{}
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if text, ok := item.(string); ok {
			if trimmed := strings.TrimSpace(text); trimmed != "" {
				result = append(result, trimmed)
			}
		}
	}
	return result
}

func toRubricSection(value interface{}) RubricSection {
	section, ok := value.(map[string]interface{})
	if !ok {
		section = map[string]interface{}{}
	}

	return RubricSection{
		Success: toStringList(section["success"]),
		Warning: toStringList(section["warning"]),
		Error:   toStringList(section["error"]),
		Info:    toStringList(section["info"]),
	}
}

// toResources keeps only well-formed entries: a non-empty title and URL, and
// a recognised type. Malformed entries are dropped, not failed.
func toResources(value interface{}) []Resource {
	items, ok := value.([]interface{})
	if !ok {
		return []Resource{}
	}

	result := make([]Resource, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		resource := Resource{
			Type:  strings.ToLower(toText(entry["type"])),
			Title: toText(entry["title"]),
			URL:   toText(entry["url"]),
		}
		if resource.Title == "" || resource.URL == "" {
			continue
		}
		if resource.Type != ResourceTypeVideo && resource.Type != ResourceTypeDocumentation {
			continue
		}
		result = append(result, resource)
	}
	return result
}

func toText(value interface{}) string {
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}
