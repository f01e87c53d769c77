package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/logger"
	"yourresumescanner/resume-scanner/internal/models"
)

type ScanService interface {
	Scan(ctx context.Context, sess Session, job models.JobContext, images []models.PageImage, scanID string) (*models.AnalysisData, error)
	ScanPDF(ctx context.Context, sess Session, job models.JobContext, pdf []byte, scanID string) (*models.AnalysisData, error)
	ScanURL(ctx context.Context, sess Session, job models.JobContext, url string, scanID string) (*models.AnalysisData, error)
}

type scanService struct {
	inspector  PDFInspector
	rasterizer Rasterizer
	analyzer   Analyzer
	store      ResultStore
	log        *zap.Logger
	now        func() time.Time
}

func NewScanService(
	inspector PDFInspector,
	rasterizer Rasterizer,
	analyzer Analyzer,
	store ResultStore,
	log *zap.Logger,
) ScanService {
	return &scanService{
		inspector:  inspector,
		rasterizer: rasterizer,
		analyzer:   analyzer,
		store:      store,
		log:        log,
		now:        time.Now,
	}
}

// Scan analyzes already rasterized pages, normalizes the reply and stores
// the result under scanID. Either a complete result is stored or an error
// is returned.
func (s *scanService) Scan(ctx context.Context, sess Session, job models.JobContext, images []models.PageImage, scanID string) (*models.AnalysisData, error) {
	reply, err := s.analyzer.Analyze(ctx, sess, job, images, scanID)
	if err != nil {
		return nil, err
	}

	result, err := Normalize(reply)
	if err != nil {
		s.log.Error("failed to parse AI response",
			zap.String("scan_id", scanID),
			zap.String("raw", logger.TruncateForLog(reply, 500)),
			zap.Error(err),
		)
		return nil, &ContractError{Excerpt: Excerpt(reply), Err: err}
	}

	data := &models.AnalysisData{
		Analysis:  *result,
		Images:    images,
		ID:        scanID,
		Timestamp: s.now().UTC(),
	}

	if recorder, ok := s.store.(ScanRecorder); ok {
		err = recorder.Record(ctx, sess, job, data)
	} else {
		err = s.store.Put(ctx, scanID, data)
	}
	if err != nil {
		s.log.Error("failed to store analysis", zap.String("scan_id", scanID), zap.Error(err))
		return nil, err
	}

	s.log.Info("analysis completed",
		zap.String("scan_id", scanID),
		zap.Int("overall", result.OverallScore),
		zap.Int("ats", result.ATSCompatibility),
	)
	return data, nil
}

// ScanPDF validates and rasterizes an uploaded PDF before scanning it.
func (s *scanService) ScanPDF(ctx context.Context, sess Session, job models.JobContext, pdf []byte, scanID string) (*models.AnalysisData, error) {
	if err := validateCaller(sess, scanID); err != nil {
		return nil, err
	}

	info, err := s.inspector.Inspect(pdf)
	if err != nil {
		return nil, err
	}
	if info.Warning != "" {
		s.log.Warn("pdf inspection failed",
			zap.String("scan_id", scanID),
			zap.Bool("encrypted", info.Encrypted),
			zap.String("warning", info.Warning),
		)
	} else if !info.HasText() {
		s.log.Info("pdf has no text layer", zap.String("scan_id", scanID), zap.Int("pages", info.PageCount))
	}

	images, err := s.rasterizer.Rasterize(ctx, pdf)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	return s.Scan(ctx, sess, job, images, scanID)
}

// ScanURL fetches a hosted PDF and scans it.
func (s *scanService) ScanURL(ctx context.Context, sess Session, job models.JobContext, url string, scanID string) (*models.AnalysisData, error) {
	if err := validateCaller(sess, scanID); err != nil {
		return nil, err
	}

	images, err := s.rasterizer.RasterizeURL(ctx, url)
	if err != nil {
		return nil, err
	}

	return s.Scan(ctx, sess, job, images, scanID)
}

func validateCaller(sess Session, scanID string) error {
	if strings.TrimSpace(sess.UserID) == "" {
		return ErrMissingUserID
	}
	return validScanID(scanID)
}
