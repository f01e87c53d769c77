package models

import (
	"time"

	"gorm.io/datatypes"
)

// Scan is the relational record of a completed analysis.
type Scan struct {
	ID               string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID           string         `gorm:"type:varchar(64);index;not null" json:"user_id"`
	JobTitle         string         `gorm:"type:text" json:"job_title"`
	Company          string         `gorm:"type:text" json:"company"`
	JobDescription   string         `gorm:"type:text" json:"job_description"`
	ExperienceLevel  string         `gorm:"type:text" json:"experience_level"`
	OverallScore     int            `json:"overall_score"`
	ATSCompatibility int            `json:"ats_compatibility"`
	Analysis         datatypes.JSON `json:"analysis"`
	ImagePaths       datatypes.JSON `json:"image_paths"`
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (Scan) TableName() string {
	return "scans"
}
