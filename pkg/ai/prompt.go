package ai

import (
	"fmt"
	"strings"
)

func reviewerSystemPrompt() string {
	return "You are an automated frontend project reviewer for a coding challenge platform. " +
		"Respond with only a JSON object matching the requested schema. Do not wrap the object " +
		"in markdown fences or add any prose before or after it."
}

// buildReviewPrompt renders the deterministic user prompt for a review. The
// same input always produces the same prompt text.
func buildReviewPrompt(input ReviewInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Challenge\n")
	builder.WriteString(input.ChallengeTitle)
	builder.WriteString("\n\n## Difficulty\n")
	builder.WriteString(input.Difficulty)
	builder.WriteString("\n\n## Description\n")
	builder.WriteString(input.Description)

	builder.WriteString("\n\n## Requirements\n")
	writeList(&builder, input.Requirements)
	builder.WriteString("\n## Expected Features\n")
	writeList(&builder, input.ExpectedFeatures)

	if len(input.Tips) > 0 {
		builder.WriteString("\n## Tips\n")
		writeList(&builder, input.Tips)
	}
	if len(input.Pitfalls) > 0 {
		builder.WriteString("\n## Common Pitfalls\n")
		writeList(&builder, input.Pitfalls)
	}

	builder.WriteString("\n## Submission\n")
	builder.WriteString("- Live preview: ")
	builder.WriteString(input.PreviewURL)
	builder.WriteString("\n- Repository: ")
	builder.WriteString(input.RepositoryURL)
	builder.WriteString("\n- Submitted: ")
	builder.WriteString(input.SubmittedAt.UTC().Format("2006-01-02"))
	builder.WriteString("\n")

	if len(input.PriorAttempts) > 0 {
		builder.WriteString("\n## Prior Attempts\n")
		for _, attempt := range input.PriorAttempts {
			builder.WriteString(fmt.Sprintf("- %s\n", attempt.Summary))
		}
	}

	builder.WriteString("\nReturn only a JSON object with this exact shape:\n")
	builder.WriteString(reportSchemaTemplate)
	return builder.String()
}

func writeList(builder *strings.Builder, items []string) {
	for _, item := range items {
		builder.WriteString("- ")
		builder.WriteString(item)
		builder.WriteString("\n")
	}
}

// reportSchemaTemplate spells out the canonical field names and the four-bucket
// categorisation the model must return for every rubric section.
const reportSchemaTemplate = `{
  "overallScore": <number 0-100>,
  "whatYouDidWell": ["..."],
  "areasForImprovement": ["..."],
  "bestPractices": {"success": ["..."], "warning": ["..."], "error": ["..."], "info": ["..."]},
  "codeFormatting": {"success": ["..."], "warning": ["..."], "error": ["..."], "info": ["..."]},
  "functionality": {"success": ["..."], "warning": ["..."], "error": ["..."], "info": ["..."]},
  "accessibility": {"success": ["..."], "warning": ["..."], "error": ["..."], "info": ["..."]},
  "nextChallenge": "...",
  "resources": [{"type": "video" or "documentation", "title": "...", "url": "..."}]
}`
