package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"yourresumescanner/resume-scanner/internal/models"
)

func TestBuildJobInfo(t *testing.T) {
	pb := NewPromptBuilder()

	t.Run("fills missing fields with placeholder", func(t *testing.T) {
		info := pb.BuildJobInfo(models.JobContext{JobTitle: "Backend Engineer"})

		assert.Contains(t, info, "- Job Title: Backend Engineer")
		assert.Contains(t, info, "- Company: Not provided")
		assert.Contains(t, info, "- Experience Level: Not provided")
		assert.Contains(t, info, "- Job Description: Not provided")
	})

	t.Run("whitespace counts as missing", func(t *testing.T) {
		info := pb.BuildJobInfo(models.JobContext{Company: "   "})
		assert.Contains(t, info, "- Company: Not provided")
	})
}

func TestBuildAnalysisPrompt(t *testing.T) {
	pb := NewPromptBuilder()
	prompt := pb.BuildAnalysisPrompt(models.JobContext{
		JobTitle:        "Backend Engineer",
		Company:         "Acme",
		ExperienceLevel: "Senior",
		JobDescription:  "Go, Postgres",
	})

	assert.Contains(t, prompt, "- Company: Acme")
	assert.NotContains(t, prompt, notProvided)
	assert.Contains(t, prompt, "Return ONLY valid JSON")
	for _, category := range models.Categories {
		assert.Contains(t, prompt, `"`+category+`": {`)
	}
	assert.Equal(t, 1, strings.Count(prompt, `"actionableImprovements"`))
}

func TestSystemInstructionRequestsJSON(t *testing.T) {
	assert.Contains(t, NewPromptBuilder().SystemInstruction(), "valid JSON only")
}
