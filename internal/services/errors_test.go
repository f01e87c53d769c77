package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestClassifyUpstreamError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    UpstreamKind
		status  int
		message string
	}{
		{"api key text", errors.New("Invalid API key provided"), UpstreamAuth, http.StatusUnauthorized, "Invalid or missing API key"},
		{"unauthorized text", errors.New("401 Unauthorized"), UpstreamAuth, http.StatusUnauthorized, "Invalid or missing API key"},
		{"model text", errors.New("The model `llama` does not exist"), UpstreamModel, http.StatusInternalServerError, "AI model not available"},
		{"rate limit text", errors.New("rate_limit_exceeded: slow down"), UpstreamRateLimit, http.StatusTooManyRequests, "API rate limit exceeded"},
		{"quota text", errors.New("quota exhausted"), UpstreamRateLimit, http.StatusTooManyRequests, "API rate limit exceeded"},
		{"timeout text", errors.New("dial tcp: ETIMEDOUT"), UpstreamTimeout, http.StatusServiceUnavailable, "Connection timeout"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), UpstreamTimeout, http.StatusServiceUnavailable, "Connection timeout"},
		{"deadline", fmt.Errorf("request failed: %w", context.DeadlineExceeded), UpstreamTimeout, http.StatusServiceUnavailable, "Connection timeout"},
		{"image text", errors.New("invalid base64 payload"), UpstreamImage, http.StatusInternalServerError, "Image processing error"},
		{"unknown", errors.New("something odd"), UpstreamUnknown, http.StatusInternalServerError, "AI service error"},
		{"http 429", &HTTPStatusError{StatusCode: http.StatusTooManyRequests, Body: "{}"}, UpstreamRateLimit, http.StatusTooManyRequests, "API rate limit exceeded"},
		{"http 401", &HTTPStatusError{StatusCode: http.StatusUnauthorized, Body: "{}"}, UpstreamAuth, http.StatusUnauthorized, "Invalid or missing API key"},
		{"genai 429", genai.APIError{Code: http.StatusTooManyRequests, Message: "Resource exhausted"}, UpstreamRateLimit, http.StatusTooManyRequests, "API rate limit exceeded"},
		{"genai 404", fmt.Errorf("generate: %w", genai.APIError{Code: http.StatusNotFound}), UpstreamModel, http.StatusInternalServerError, "AI model not available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyUpstreamError(tt.err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.message, got.Message)
			assert.Equal(t, tt.err, got.Err)
		})
	}
}

func TestClassifyUpstreamError_KeepsClassified(t *testing.T) {
	original := &UpstreamError{Kind: UpstreamAuth, Status: http.StatusUnauthorized, Message: "x"}
	assert.Same(t, original, ClassifyUpstreamError(fmt.Errorf("wrapped: %w", original)))
	assert.Nil(t, ClassifyUpstreamError(nil))
}

func TestUnknownUpstreamKeepsDetails(t *testing.T) {
	got := ClassifyUpstreamError(errors.New("something odd"))
	assert.Equal(t, "something odd", got.Details)
}

func TestScanErrorMatching(t *testing.T) {
	err := fmt.Errorf("handler: %w", ErrNoDataFound)
	assert.ErrorIs(t, err, ErrNoDataFound)
	assert.NotErrorIs(t, err, ErrCorruptStoredData)

	var scanErr *ScanError
	assert.ErrorAs(t, err, &scanErr)
	assert.Equal(t, KindStorage, scanErr.Kind)
}
