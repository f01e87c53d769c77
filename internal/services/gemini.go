package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"yourresumescanner/resume-scanner/internal/logger"
)

const defaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiClient struct {
	models    contentGenerator
	modelName string
	log       *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, log *zap.Logger) (AIClient, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiClient(client.Models, model, log), nil
}

func newGeminiClient(models contentGenerator, model string, log *zap.Logger) *geminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiClient{
		models:    models,
		modelName: model,
		log:       log,
	}
}

func (g *geminiClient) Model() string {
	return g.modelName
}

// Complete implements AIClient.
func (g *geminiClient) Complete(ctx context.Context, req *ChatRequest) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, img := range req.Images {
		part, err := imagePart(img.URL)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", img.PageNumber, err)
		}
		parts = append(parts, part)
	}

	temperature, topP := req.Temperature, req.TopP
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSONOnly {
		cfg.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := g.models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	g.log.Debug("gemini response received",
		zap.String("model", g.modelName),
		zap.Int("pages", len(req.Images)),
		zap.String("preview", logger.TruncateForLog(text, 200)),
	)
	return text, nil
}

// geminiFileURIPrefixes are the only remote references the API resolves.
var geminiFileURIPrefixes = []string{"gs://", "https://generativelanguage.googleapis.com/"}

// imagePart turns a data URL into inline bytes. File API and GCS URIs pass
// through as file references; any other URL is refused.
func imagePart(url string) (*genai.Part, error) {
	if !strings.HasPrefix(url, "data:") {
		for _, prefix := range geminiFileURIPrefixes {
			if strings.HasPrefix(url, prefix) {
				return genai.NewPartFromURI(url, "image/jpeg"), nil
			}
		}
		return nil, ErrImageNotInline
	}

	header, payload, ok := strings.Cut(url, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("invalid image data URL")
	}
	mimeType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return genai.NewPartFromBytes(data, mimeType), nil
}
