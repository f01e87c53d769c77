package services

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"yourresumescanner/resume-scanner/internal/models"
)

const (
	fallbackSummary = "Resume analysis completed"
	excerptLength   = 200
)

var (
	openingFence = regexp.MustCompile("```(?:json|JSON)?\\n?")
	closingFence = regexp.MustCompile("\\n?```")
)

// Normalize parses a raw AI reply into a FeedbackResult. Cosmetic gaps are
// repaired (scores clamped, lists defaulted, summary filled in); an
// unparseable body or a missing category block is an error.
func Normalize(raw string) (*models.FeedbackResult, error) {
	cleaned := StripCodeFences(raw)

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, &MalformedResponseError{Excerpt: Excerpt(raw), Err: err}
	}

	doc, ok := decoded.(map[string]any)
	if !ok {
		return nil, &InvalidShapeError{Reason: "response is not a JSON object"}
	}

	overall, ok := doc["overallScore"].(float64)
	if !ok {
		return nil, &InvalidShapeError{Reason: "missing required fields"}
	}
	categories, ok := doc["categoryScores"].(map[string]any)
	if !ok {
		return nil, &InvalidShapeError{Reason: "missing required fields"}
	}
	feedback, ok := doc["feedback"].(map[string]any)
	if !ok {
		return nil, &InvalidShapeError{Reason: "missing required fields"}
	}

	result := &models.FeedbackResult{
		OverallScore:     clampScore(overall),
		ATSCompatibility: clampScore(coerceScore(doc["atsCompatibility"])),
		Summary:          fallbackSummary,
	}
	if summary, ok := doc["summary"].(string); ok && summary != "" {
		result.Summary = summary
	}

	for _, name := range models.Categories {
		block, ok := categories[name].(map[string]any)
		if !ok {
			return nil, &MissingCategoryError{Category: name}
		}

		text, _ := block["feedback"].(string)
		*result.CategoryScores.Get(name) = models.CategoryScore{
			Score:       clampScore(coerceScore(block["score"])),
			Feedback:    text,
			Suggestions: stringList(block["suggestions"]),
		}
	}

	result.Feedback = models.Feedback{
		Strengths:              stringList(feedback["strengths"]),
		Weaknesses:             stringList(feedback["weaknesses"]),
		ActionableImprovements: stringList(feedback["actionableImprovements"]),
	}

	return result, nil
}

// StripCodeFences removes markdown code fences a model may wrap JSON in.
func StripCodeFences(raw string) string {
	cleaned := openingFence.ReplaceAllString(raw, "")
	cleaned = closingFence.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// Excerpt returns the leading part of a reply for error diagnostics.
func Excerpt(raw string) string {
	runes := []rune(raw)
	if len(runes) <= excerptLength {
		return raw
	}
	return string(runes[:excerptLength])
}

// coerceScore reads a score that may arrive as a number or a numeric
// string. Anything else is NaN, which clampScore turns into 0.
func coerceScore(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

// stringList keeps the string elements of a JSON array. Anything else
// becomes an empty list.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
