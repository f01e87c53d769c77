package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/config"
	"yourresumescanner/resume-scanner/internal/models"
)

// ChatRequest is one multimodal completion call: a system instruction, a
// text prompt and the page images in page order.
type ChatRequest struct {
	System      string
	Prompt      string
	Images      []models.PageImage
	Temperature float32
	TopP        float32
	MaxTokens   int32
	JSONOnly    bool
}

// AIClient sends a single blocking completion and returns the reply text.
type AIClient interface {
	Complete(ctx context.Context, req *ChatRequest) (string, error)
	Model() string
}

// NewAIClient builds the client for the configured provider.
func NewAIClient(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (AIClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.Model, log)
	case config.ProviderGroq:
		return NewGroqClient(cfg.GroqAPIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, log), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
