package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/config"
	"yourresumescanner/resume-scanner/internal/models"
)

var errEmptyReply = errors.New("No response received from AI service")

// Session identifies the authenticated caller of a scan.
type Session struct {
	UserID string
}

type Analyzer interface {
	Analyze(ctx context.Context, sess Session, job models.JobContext, images []models.PageImage, scanID string) (string, error)
}

type analyzer struct {
	client        AIClient
	promptBuilder *PromptBuilder
	cfg           config.AIConfig
	log           *zap.Logger
}

func NewAnalyzer(client AIClient, cfg config.AIConfig, log *zap.Logger) Analyzer {
	return &analyzer{
		client:        client,
		promptBuilder: NewPromptBuilder(),
		cfg:           cfg,
		log:           log,
	}
}

// Analyze sends the scoring prompt and all page images in one request and
// returns the raw reply. Input is validated before any network activity.
// Provider failures come back as *UpstreamError; nothing is retried.
func (a *analyzer) Analyze(ctx context.Context, sess Session, job models.JobContext, images []models.PageImage, scanID string) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}
	if strings.TrimSpace(sess.UserID) == "" {
		return "", ErrMissingUserID
	}
	if err := validScanID(scanID); err != nil {
		return "", err
	}

	req := &ChatRequest{
		System:      a.promptBuilder.SystemInstruction(),
		Prompt:      a.promptBuilder.BuildAnalysisPrompt(job),
		Images:      images,
		Temperature: a.cfg.Temperature,
		TopP:        a.cfg.TopP,
		MaxTokens:   a.cfg.MaxTokens,
		JSONOnly:    true,
	}

	a.log.Info("sending analysis request",
		zap.String("scan_id", scanID),
		zap.String("user_id", sess.UserID),
		zap.String("model", a.client.Model()),
		zap.Int("pages", len(images)),
		zap.Bool("has_job_title", job.JobTitle != ""),
		zap.Int("job_description_length", len(job.JobDescription)),
	)

	start := time.Now()
	reply, err := a.client.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, ErrAPIKeyMissing) {
			return "", ErrAPIKeyMissing
		}
		var input *ScanError
		if errors.As(err, &input) && input.Kind == KindInput {
			a.log.Warn("analysis request refused", zap.String("scan_id", scanID), zap.Error(err))
			return "", input
		}
		upstream := ClassifyUpstreamError(err)
		a.log.Error("analysis request failed",
			zap.String("scan_id", scanID),
			zap.String("kind", string(upstream.Kind)),
			zap.Error(err),
		)
		return "", upstream
	}
	if strings.TrimSpace(reply) == "" {
		return "", ClassifyUpstreamError(errEmptyReply)
	}

	a.log.Info("analysis reply received",
		zap.String("scan_id", scanID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("reply_length", len(reply)),
	)
	return reply, nil
}
