package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"yourresumescanner/resume-scanner/internal/models"
	"yourresumescanner/resume-scanner/internal/repositories"
)

// ScanRecorder is implemented by stores that keep the caller and job context
// next to the result.
type ScanRecorder interface {
	Record(ctx context.Context, sess Session, job models.JobContext, data *models.AnalysisData) error
}

// DatabaseStore persists results as rows in the scans table. When an
// ImageStorage is set, page images are written to disk and only their paths
// are stored.
type DatabaseStore struct {
	repo   repositories.ScanRepository
	images ImageStorage
	log    *zap.Logger
}

func NewDatabaseStore(repo repositories.ScanRepository, images ImageStorage, log *zap.Logger) *DatabaseStore {
	return &DatabaseStore{
		repo:   repo,
		images: images,
		log:    log,
	}
}

// Put implements ResultStore.
func (s *DatabaseStore) Put(ctx context.Context, id string, data *models.AnalysisData) error {
	if err := validScanID(id); err != nil {
		return err
	}
	copied := *data
	copied.ID = id
	return s.Record(ctx, Session{}, models.JobContext{}, &copied)
}

// Record implements ScanRecorder.
func (s *DatabaseStore) Record(ctx context.Context, sess Session, job models.JobContext, data *models.AnalysisData) error {
	if err := validScanID(data.ID); err != nil {
		return err
	}

	analysis, err := json.Marshal(data.Analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	exists, err := s.repo.Exists(data.ID)
	if err != nil {
		return err
	}
	if exists {
		return ErrScanExists
	}

	images := data.Images
	if s.images != nil {
		images, err = s.images.SaveImages(data.ID, data.Images)
		if err != nil {
			return err
		}
		if len(images) < len(data.Images) {
			s.log.Warn("some page images were not persisted",
				zap.String("scan_id", data.ID),
				zap.Int("saved", len(images)),
				zap.Int("total", len(data.Images)),
			)
		}
	}
	imagePaths, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("failed to encode image paths: %w", err)
	}

	scan := &models.Scan{
		ID:               data.ID,
		UserID:           sess.UserID,
		JobTitle:         job.JobTitle,
		Company:          job.Company,
		JobDescription:   job.JobDescription,
		ExperienceLevel:  job.ExperienceLevel,
		OverallScore:     data.Analysis.OverallScore,
		ATSCompatibility: data.Analysis.ATSCompatibility,
		Analysis:         datatypes.JSON(analysis),
		ImagePaths:       datatypes.JSON(imagePaths),
	}
	if !data.Timestamp.IsZero() {
		scan.CreatedAt = data.Timestamp
	}

	if err := s.repo.Create(scan); err != nil {
		s.discardImages(data.ID, data.Images, images)
		if errors.Is(err, repositories.ErrScanDuplicate) {
			return ErrScanExists
		}
		return err
	}
	return nil
}

// discardImages removes files written for a scan whose row was not created.
// Pages whose URL is unchanged were never written.
func (s *DatabaseStore) discardImages(scanID string, original, stored []models.PageImage) {
	if s.images == nil {
		return
	}

	given := make(map[string]struct{}, len(original))
	for _, image := range original {
		given[image.URL] = struct{}{}
	}

	for _, image := range stored {
		if _, ok := given[image.URL]; ok {
			continue
		}
		if err := s.images.DeleteFile(image.URL); err != nil {
			s.log.Warn("failed to remove orphaned image",
				zap.String("scan_id", scanID),
				zap.String("path", image.URL),
				zap.Error(err),
			)
		}
	}
}

// Get implements ResultStore.
func (s *DatabaseStore) Get(_ context.Context, id string) (*models.AnalysisData, error) {
	if err := validScanID(id); err != nil {
		return nil, err
	}

	scan, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrScanNotFound) {
			return nil, ErrNoDataFound
		}
		return nil, err
	}

	var analysis models.FeedbackResult
	if err := json.Unmarshal(scan.Analysis, &analysis); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStoredData, err)
	}

	images, err := decodeImagePaths(scan.ImagePaths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStoredData, err)
	}

	return &models.AnalysisData{
		Analysis:  analysis,
		Images:    images,
		ID:        scan.ID,
		Timestamp: scan.CreatedAt,
	}, nil
}

// History implements HistoryStore.
func (s *DatabaseStore) History(_ context.Context, userID string, limit int) ([]models.ScanSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}

	scans, err := s.repo.FindByUserID(userID, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ScanSummary, 0, len(scans))
	for _, scan := range scans {
		summaries = append(summaries, models.ScanSummary{
			ID:               scan.ID,
			JobTitle:         scan.JobTitle,
			Company:          scan.Company,
			OverallScore:     scan.OverallScore,
			ATSCompatibility: scan.ATSCompatibility,
			CreatedAt:        scan.CreatedAt.Format(time.RFC3339),
		})
	}
	return summaries, nil
}

// decodeImagePaths accepts both page objects and bare path strings. Bare
// strings are numbered in stored order.
func decodeImagePaths(raw datatypes.JSON) ([]models.PageImage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []models.PageImage{}, nil
	}

	var pages []models.PageImage
	if err := json.Unmarshal(raw, &pages); err == nil {
		return pages, nil
	}

	var paths []string
	if err := json.Unmarshal(raw, &paths); err != nil {
		return nil, err
	}
	pages = make([]models.PageImage, len(paths))
	for i, p := range paths {
		pages[i] = models.PageImage{URL: p, PageNumber: i + 1}
	}
	return pages, nil
}
