package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"yourresumescanner/resume-scanner/internal/models"
)

var (
	ErrScanNotFound  = errors.New("scan not found")
	ErrScanDuplicate = errors.New("scan already exists")
)

type ScanRepository interface {
	Create(scan *models.Scan) error
	Exists(id string) (bool, error)
	FindByID(id string) (*models.Scan, error)
	FindByUserID(userID string, limit int) ([]models.Scan, error)
}

type scanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

// Create implements ScanRepository. Scan ids are written once; the primary
// key decides between concurrent writers. The db must be opened with
// TranslateError so the driver reports gorm.ErrDuplicatedKey.
func (r *scanRepository) Create(scan *models.Scan) error {
	if err := r.db.Create(scan).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrScanDuplicate
		}
		return fmt.Errorf("failed to create scan: %w", err)
	}
	return nil
}

// Exists implements ScanRepository.
func (r *scanRepository) Exists(id string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Scan{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check scan: %w", err)
	}
	return count > 0, nil
}

// FindByID implements ScanRepository.
func (r *scanRepository) FindByID(id string) (*models.Scan, error) {
	var scan models.Scan
	if err := r.db.Where("id = ?", id).First(&scan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScanNotFound
		}
		return nil, fmt.Errorf("failed to find scan: %w", err)
	}
	return &scan, nil
}

// FindByUserID implements ScanRepository. Newest scans come first.
func (r *scanRepository) FindByUserID(userID string, limit int) ([]models.Scan, error) {
	if limit <= 0 {
		limit = 20
	}

	var scans []models.Scan
	err := r.db.
		Select("id", "user_id", "job_title", "company", "overall_score", "ats_compatibility", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&scans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find scans: %w", err)
	}

	return scans, nil
}
