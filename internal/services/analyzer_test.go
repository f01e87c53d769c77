package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/config"
	"yourresumescanner/resume-scanner/internal/models"
)

type stubAIClient struct {
	reply string
	err   error
	calls int
	last  *ChatRequest
}

func (s *stubAIClient) Complete(_ context.Context, req *ChatRequest) (string, error) {
	s.calls++
	s.last = req
	return s.reply, s.err
}

func (s *stubAIClient) Model() string {
	return "stub-model"
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{Temperature: 1, TopP: 1, MaxTokens: 4096}
}

var onePage = []models.PageImage{{URL: "data:image/jpeg;base64,AAAA", PageNumber: 1}}

func TestAnalyze_SendsPromptAndImages(t *testing.T) {
	stub := &stubAIClient{reply: `{"overallScore": 50}`}
	a := NewAnalyzer(stub, testAIConfig(), zap.NewNop())

	images := []models.PageImage{
		{URL: "data:image/jpeg;base64,AAAA", PageNumber: 1},
		{URL: "data:image/jpeg;base64,BBBB", PageNumber: 2},
	}
	reply, err := a.Analyze(context.Background(), Session{UserID: "user-1"}, models.JobContext{JobTitle: "Backend Engineer"}, images, "3f1b7c2e-8a4d-4c6b-9e2f-000000000001")
	require.NoError(t, err)
	assert.Equal(t, `{"overallScore": 50}`, reply)

	require.Equal(t, 1, stub.calls)
	assert.Equal(t, images, stub.last.Images)
	assert.True(t, stub.last.JSONOnly)
	assert.Equal(t, int32(4096), stub.last.MaxTokens)
	assert.Contains(t, stub.last.Prompt, "- Job Title: Backend Engineer")
	assert.Contains(t, stub.last.Prompt, "- Company: Not provided")
	assert.Equal(t, analysisSystemInstruction, stub.last.System)
}

func TestAnalyze_ValidatesBeforeCalling(t *testing.T) {
	tests := []struct {
		name   string
		sess   Session
		images []models.PageImage
		scanID string
		want   error
	}{
		{"no images", Session{UserID: "u"}, nil, "3f1b7c2e-8a4d-4c6b-9e2f-0000000000c0", ErrNoImages},
		{"empty images", Session{UserID: "u"}, []models.PageImage{}, "3f1b7c2e-8a4d-4c6b-9e2f-0000000000c0", ErrNoImages},
		{"no user", Session{}, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-0000000000c0", ErrMissingUserID},
		{"no scan id", Session{UserID: "u"}, onePage, " ", ErrMissingScanID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAIClient{reply: "{}"}
			a := NewAnalyzer(stub, testAIConfig(), zap.NewNop())

			_, err := a.Analyze(context.Background(), tt.sess, models.JobContext{}, tt.images, tt.scanID)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, stub.calls)
		})
	}
}

func TestAnalyze_ClassifiesUpstreamFailure(t *testing.T) {
	stub := &stubAIClient{err: &HTTPStatusError{StatusCode: http.StatusTooManyRequests}}
	a := NewAnalyzer(stub, testAIConfig(), zap.NewNop())

	_, err := a.Analyze(context.Background(), Session{UserID: "u"}, models.JobContext{}, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-0000000000c0")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Equal(t, 1, stub.calls)
}

func TestAnalyze_EmptyReply(t *testing.T) {
	a := NewAnalyzer(&stubAIClient{reply: "  "}, testAIConfig(), zap.NewNop())

	_, err := a.Analyze(context.Background(), Session{UserID: "u"}, models.JobContext{}, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-0000000000c0")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "AI service error", upstream.Message)
	assert.Equal(t, "No response received from AI service", upstream.Details)
}

func TestAnalyze_MissingKeyPassesThrough(t *testing.T) {
	a := NewAnalyzer(&stubAIClient{err: ErrAPIKeyMissing}, testAIConfig(), zap.NewNop())

	_, err := a.Analyze(context.Background(), Session{UserID: "u"}, models.JobContext{}, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-0000000000c0")
	assert.True(t, errors.Is(err, ErrAPIKeyMissing))
}

func TestAnalyze_InputErrorFromClientPassesThrough(t *testing.T) {
	stub := &stubAIClient{err: fmt.Errorf("page 1: %w", ErrImageNotInline)}
	a := NewAnalyzer(stub, testAIConfig(), zap.NewNop())

	_, err := a.Analyze(context.Background(), Session{UserID: "u"}, models.JobContext{}, onePage, "3f1b7c2e-8a4d-4c6b-9e2f-0000000000c0")

	assert.Same(t, ErrImageNotInline, err)
	var upstream *UpstreamError
	assert.False(t, errors.As(err, &upstream))
}
