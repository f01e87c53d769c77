package models

import "time"

// PageImage is one rendered PDF page. URL is a data URI or a remote/relative path.
type PageImage struct {
	URL        string `json:"url"`
	PageNumber int    `json:"pageNumber"`
}

type CategoryScore struct {
	Score       int      `json:"score"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

type CategoryScores struct {
	Formatting CategoryScore `json:"formatting"`
	Content    CategoryScore `json:"content"`
	Experience CategoryScore `json:"experience"`
	Skills     CategoryScore `json:"skills"`
	Impact     CategoryScore `json:"impact"`
}

// Categories lists the scoring dimensions in the order they are prompted.
var Categories = []string{"formatting", "content", "experience", "skills", "impact"}

// Get returns a pointer to the named category, or nil for unknown names.
func (c *CategoryScores) Get(name string) *CategoryScore {
	switch name {
	case "formatting":
		return &c.Formatting
	case "content":
		return &c.Content
	case "experience":
		return &c.Experience
	case "skills":
		return &c.Skills
	case "impact":
		return &c.Impact
	}
	return nil
}

type Feedback struct {
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	ActionableImprovements []string `json:"actionableImprovements"`
}

// FeedbackResult is the validated analysis returned to clients.
type FeedbackResult struct {
	OverallScore     int            `json:"overallScore"`
	Summary          string         `json:"summary"`
	ATSCompatibility int            `json:"atsCompatibility"`
	CategoryScores   CategoryScores `json:"categoryScores"`
	Feedback         Feedback       `json:"feedback"`
}

// AnalysisData is the unit stored under a scan id for the review page.
type AnalysisData struct {
	Analysis  FeedbackResult `json:"analysis"`
	Images    []PageImage    `json:"images"`
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
}

// JobContext is the optional job information the resume is scored against.
type JobContext struct {
	JobTitle        string `json:"jobTitle,omitempty"`
	Company         string `json:"company,omitempty"`
	JobDescription  string `json:"jobDescription,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
}
