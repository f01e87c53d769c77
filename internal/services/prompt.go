package services

import (
	"fmt"
	"strings"

	"yourresumescanner/resume-scanner/internal/models"
)

const notProvided = "Not provided"

const analysisSystemInstruction = "You are an expert ATS resume analyzer and career coach with deep knowledge of hiring practices. " +
	"Provide detailed, actionable feedback. Always respond with valid JSON only - no markdown formatting, no code blocks, no additional text."

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// SystemInstruction is sent as the system message of every analysis request.
func (pb *PromptBuilder) SystemInstruction() string {
	return analysisSystemInstruction
}

// BuildJobInfo renders the job context block. Empty fields are written as
// "Not provided" so the model always sees the full template.
func (pb *PromptBuilder) BuildJobInfo(job models.JobContext) string {
	return fmt.Sprintf(`
JOB INFORMATION:
- Job Title: %s
- Company: %s
- Experience Level: %s
- Job Description: %s
`,
		orNotProvided(job.JobTitle),
		orNotProvided(job.Company),
		orNotProvided(job.ExperienceLevel),
		orNotProvided(job.JobDescription))
}

// BuildAnalysisPrompt creates the scoring prompt that accompanies the page images.
func (pb *PromptBuilder) BuildAnalysisPrompt(job models.JobContext) string {
	return fmt.Sprintf(`
Please analyze this resume based on the following criteria:

%s if provided.

The resume is provided as images (one per page). Analyze all pages carefully.

RESUME ANALYSIS CRITERIA:

Analyze the resume across these 5 dimensions:
1. Formatting (structure, layout, readability)
2. Content (clarity, relevance, completeness)
3. Experience (quality of work history, achievements)
4. Skills (technical and soft skills presentation)
5. Impact (quantifiable results, action verbs)

Also evaluate:
- Overall quality (0-100 score)
- ATS compatibility (0-100 score)
- Key strengths
- Areas for improvement
- Actionable suggestions

Provide your analysis in the following EXACT JSON format:

%s

CRITICAL: Return ONLY valid JSON in the exact structure above. No markdown, no code blocks, no additional text. Analyze critically do not be scared to score either low or high, be a bit brutal.`,
		pb.BuildJobInfo(job), responseSchemaExample)
}

const responseSchemaExample = `{
  "overallScore": 85,
  "summary": "Brief overall summary of the resume quality and fit for the role",
  "atsCompatibility": 80,
  "categoryScores": {
    "formatting": {
      "score": 85,
      "feedback": "Detailed feedback on resume formatting",
      "suggestions": ["Specific suggestion 1", "Specific suggestion 2"]
    },
    "content": {
      "score": 80,
      "feedback": "Detailed feedback on content quality",
      "suggestions": ["Specific suggestion 1", "Specific suggestion 2"]
    },
    "experience": {
      "score": 75,
      "feedback": "Detailed feedback on experience presentation",
      "suggestions": ["Specific suggestion 1", "Specific suggestion 2"]
    },
    "skills": {
      "score": 90,
      "feedback": "Detailed feedback on skills section",
      "suggestions": ["Specific suggestion 1", "Specific suggestion 2"]
    },
    "impact": {
      "score": 82,
      "feedback": "Detailed feedback on impact and achievements",
      "suggestions": ["Specific suggestion 1", "Specific suggestion 2"]
    }
  },
  "feedback": {
    "strengths": ["Strength 1", "Strength 2", "Strength 3"],
    "weaknesses": ["Weakness 1", "Weakness 2", "Weakness 3"],
    "actionableImprovements": ["Improvement 1", "Improvement 2", "Improvement 3"]
  }
}`

func orNotProvided(value string) string {
	if strings.TrimSpace(value) == "" {
		return notProvided
	}
	return value
}
