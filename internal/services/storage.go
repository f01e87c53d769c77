package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/models"
)

var dataURLPattern = regexp.MustCompile(`^data:([A-Za-z+/-]+);base64,(.+)$`)

// ImageStorage writes page images to disk so durable stores keep file paths
// instead of inline data URLs.
type ImageStorage interface {
	SaveImages(scanID string, images []models.PageImage) ([]models.PageImage, error)
	SaveDataURL(dataURL, name string) (string, error)
	EnsureUploadDir() error
	DeleteFile(urlPath string) error
}

type imageStorage struct {
	uploadPath string
	urlPath    string
	maxSizeMB  float64
	log        *zap.Logger
	now        func() time.Time
}

func NewImageStorage(uploadPath, urlPath string, maxSizeMB float64, log *zap.Logger) ImageStorage {
	return &imageStorage{
		uploadPath: uploadPath,
		urlPath:    "/" + strings.Trim(urlPath, "/"),
		maxSizeMB:  maxSizeMB,
		log:        log,
		now:        time.Now,
	}
}

func (s *imageStorage) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveImages persists every data-URL page and returns the pages that made
// it, in order. Oversized or undecodable pages are skipped; pages that are
// already remote URLs are kept unchanged. scanID must be a UUID.
func (s *imageStorage) SaveImages(scanID string, images []models.PageImage) ([]models.PageImage, error) {
	id, err := uuid.Parse(scanID)
	if err != nil {
		return nil, ErrInvalidScanID
	}

	saved := make([]models.PageImage, 0, len(images))

	for i, image := range images {
		if !strings.HasPrefix(image.URL, "data:") {
			saved = append(saved, image)
			continue
		}

		sizeMB := ImageSizeMB(image.URL)
		if sizeMB > s.maxSizeMB {
			s.log.Warn("image too large, skipping",
				zap.Int("image", i+1),
				zap.String("size_mb", fmt.Sprintf("%.2f", sizeMB)),
			)
			continue
		}

		urlPath, err := s.SaveDataURL(image.URL, fmt.Sprintf("resume_%s_page_%d", id.String(), image.PageNumber))
		if err != nil {
			s.log.Error("failed to process image", zap.Int("image", i+1), zap.Error(err))
			continue
		}

		saved = append(saved, models.PageImage{URL: urlPath, PageNumber: image.PageNumber})
		s.log.Debug("processed image",
			zap.Int("image", i+1),
			zap.Int("total", len(images)),
			zap.String("path", urlPath),
		)
	}

	return saved, nil
}

// SaveDataURL decodes a base64 data URL into the upload directory and
// returns its URL path. name becomes the file name prefix.
func (s *imageStorage) SaveDataURL(dataURL, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid image name %q", name)
	}

	matches := dataURLPattern.FindStringSubmatch(dataURL)
	if matches == nil {
		return "", fmt.Errorf("invalid base64 data URL")
	}

	extension := "jpg"
	if _, sub, ok := strings.Cut(matches[1], "/"); ok && sub != "" && !strings.Contains(sub, "/") {
		extension = sub
	}

	data, err := base64.StdEncoding.DecodeString(matches[2])
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	if err := s.EnsureUploadDir(); err != nil {
		return "", err
	}

	uniqueFilename := fmt.Sprintf("%s_%d_%s.%s", name, s.now().UnixMilli(), uuid.NewString()[:8], extension)
	file, err := os.OpenFile(filepath.Join(s.uploadPath, uniqueFilename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return path.Join(s.urlPath, uniqueFilename), nil
}

func (s *imageStorage) DeleteFile(urlPath string) error {
	filePath := filepath.Join(s.uploadPath, path.Base(urlPath))
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
