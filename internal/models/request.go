package models

// AnalyzeRequest is the body of POST /api/resume.
type AnalyzeRequest struct {
	UserID string             `json:"userId"`
	Data   AnalyzeRequestData `json:"data"`
}

type AnalyzeRequestData struct {
	ID              string      `json:"id"`
	Company         string      `json:"company,omitempty"`
	JobTitle        string      `json:"jobTitle,omitempty"`
	JobDescription  string      `json:"jobDescription,omitempty"`
	ExperienceLevel string      `json:"experienceLevel,omitempty"`
	Resume          string      `json:"resume,omitempty"`
	ResumeName      string      `json:"resume_name,omitempty"`
	ImagePaths      []PageImage `json:"imagePaths"`
}

func (d AnalyzeRequestData) JobContext() JobContext {
	return JobContext{
		JobTitle:        d.JobTitle,
		Company:         d.Company,
		JobDescription:  d.JobDescription,
		ExperienceLevel: d.ExperienceLevel,
	}
}

type AnalyzeResponse struct {
	Success bool            `json:"success"`
	Data    *FeedbackResult `json:"data"`
	ScanID  string          `json:"scanId"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Sample  string `json:"sample,omitempty"`
	Action  string `json:"action,omitempty"`
}

type RasterizeResponse struct {
	Success        bool        `json:"success"`
	Data           []PageImage `json:"data"`
	MaxImageSizeMB float64     `json:"maxImageSizeMB"`
}

type ReviewResponse struct {
	Success bool          `json:"success"`
	Data    *AnalysisData `json:"data"`
	Grade   string        `json:"grade"`
}

type ScanSummary struct {
	ID               string `json:"id"`
	JobTitle         string `json:"jobTitle,omitempty"`
	Company          string `json:"company,omitempty"`
	OverallScore     int    `json:"overallScore"`
	ATSCompatibility int    `json:"atsCompatibility"`
	CreatedAt        string `json:"createdAt"`
}

type HistoryResponse struct {
	Success bool          `json:"success"`
	Data    []ScanSummary `json:"data"`
}

// Grade maps an overall score to the letter shown on the review page.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 75:
		return "A"
	case score >= 60:
		return "B"
	case score >= 55:
		return "C"
	case score >= 40:
		return "D"
	case score >= 35:
		return "E"
	default:
		return "F"
	}
}
