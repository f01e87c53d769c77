package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type ErrorKind string

const (
	KindInput      ErrorKind = "input"
	KindConversion ErrorKind = "conversion"
	KindUpstream   ErrorKind = "upstream"
	KindContract   ErrorKind = "contract"
	KindStorage    ErrorKind = "storage"
)

// ScanError is a classified failure with a user-facing message.
type ScanError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ScanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

func newScanError(kind ErrorKind, message string) *ScanError {
	return &ScanError{Kind: kind, Message: message}
}

// Input errors.
var (
	ErrNoImages      = newScanError(KindInput, "Missing resume images. Please upload a resume.")
	ErrMissingUserID = newScanError(KindInput, "User ID is required.")
	ErrMissingScanID = newScanError(KindInput, "Scan ID is required.")
	ErrInvalidScanID = newScanError(KindInput, "Scan ID must be a UUID.")
	ErrNotPDF        = newScanError(KindInput, "Please upload a PDF file")
	ErrFileTooLarge  = newScanError(KindInput, "File size exceeds the upload limit")
	ErrEmptyDocument = newScanError(KindInput, "The PDF has no pages")
	ErrUnsafeURL     = newScanError(KindInput, "Resume URL is not allowed")

	ErrImageNotInline = newScanError(KindInput, "Resume images must be sent as data URLs")
)

// ErrAPIKeyMissing is returned before any network call when the provider key is unset.
var ErrAPIKeyMissing = newScanError(KindUpstream, "API key not configured. Please set the AI provider API key in your environment variables.")

// Storage errors.
var (
	ErrNoDataFound       = newScanError(KindStorage, "No analysis data found. Please try scanning again.")
	ErrCorruptStoredData = newScanError(KindStorage, "Failed to parse analysis data")
	ErrScanExists        = newScanError(KindStorage, "Scan already stored")
)

// PageTooLargeError reports a page that cannot be fitted under the size ceiling.
type PageTooLargeError struct {
	Page    int
	SizeMB  float64
	LimitMB float64
}

func (e *PageTooLargeError) Error() string {
	return fmt.Sprintf("Page %d is too large (%.2fMB) and cannot be compressed below %gMB", e.Page, e.SizeMB, e.LimitMB)
}

// ConversionError wraps a rendering or encoding failure.
type ConversionError struct {
	Page int
	Err  error
}

func (e *ConversionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("PDF conversion failed on page %d: %v", e.Page, e.Err)
	}
	return fmt.Sprintf("PDF conversion failed: %v", e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the AI reply was not parseable JSON.
type MalformedResponseError struct {
	Excerpt string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed AI response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// InvalidShapeError means the reply parsed but lacks required top-level fields.
type InvalidShapeError struct {
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return "Invalid response structure from AI - " + e.Reason
}

// MissingCategoryError means one of the five category blocks is absent.
type MissingCategoryError struct {
	Category string
}

func (e *MissingCategoryError) Error() string {
	return "Missing category score: " + e.Category
}

// ContractError wraps any failure to turn an AI reply into a FeedbackResult.
type ContractError struct {
	Excerpt string
	Err     error
}

func (e *ContractError) Error() string {
	return "Failed to parse AI response - invalid JSON format: " + e.Err.Error()
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

type UpstreamKind string

const (
	UpstreamAuth      UpstreamKind = "auth"
	UpstreamModel     UpstreamKind = "model"
	UpstreamRateLimit UpstreamKind = "rate_limit"
	UpstreamTimeout   UpstreamKind = "timeout"
	UpstreamImage     UpstreamKind = "image"
	UpstreamUnknown   UpstreamKind = "unknown"
)

// UpstreamError is an AI provider failure mapped to a status code and message.
type UpstreamError struct {
	Kind    UpstreamKind
	Status  int
	Message string
	Details string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// HTTPStatusError carries the status of a non-2xx provider response.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// ClassifyUpstreamError maps a provider error to an UpstreamError. Typed status
// codes win; otherwise the error text is inspected.
func ClassifyUpstreamError(err error) *UpstreamError {
	if err == nil {
		return nil
	}

	var classified *UpstreamError
	if errors.As(err, &classified) {
		return classified
	}

	details := err.Error()
	kind := kindFromStatus(statusOf(err))
	if kind == UpstreamUnknown {
		kind = kindFromText(err, details)
	}

	out := &UpstreamError{Kind: kind, Status: http.StatusInternalServerError, Err: err}
	switch kind {
	case UpstreamAuth:
		out.Status = http.StatusUnauthorized
		out.Message = "Invalid or missing API key"
		out.Details = "Check that the AI provider API key is correctly set in your environment"
	case UpstreamModel:
		out.Message = "AI model not available"
		out.Details = "The specified model may not be available or doesn't support vision"
	case UpstreamRateLimit:
		out.Status = http.StatusTooManyRequests
		out.Message = "API rate limit exceeded"
		out.Details = "Too many requests. Please try again in a few minutes."
	case UpstreamTimeout:
		out.Status = http.StatusServiceUnavailable
		out.Message = "Connection timeout"
		out.Details = "Failed to connect to AI service. Please try again."
	case UpstreamImage:
		out.Message = "Image processing error"
		out.Details = "Failed to process resume images. Please try again."
	default:
		out.Message = "AI service error"
		out.Details = details
	}
	return out
}

func statusOf(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

func kindFromStatus(status int) UpstreamKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return UpstreamAuth
	case http.StatusNotFound:
		return UpstreamModel
	case http.StatusTooManyRequests:
		return UpstreamRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return UpstreamTimeout
	}
	return UpstreamUnknown
}

func kindFromText(err error, details string) UpstreamKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return UpstreamTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return UpstreamTimeout
	}

	switch {
	case containsAny(details, "API_KEY", "API key", "apiKey", "401", "Unauthorized"):
		return UpstreamAuth
	case containsAny(details, "model", "MODEL", "not found"):
		return UpstreamModel
	case containsAny(details, "quota", "rate_limit", "429", "Rate limit"):
		return UpstreamRateLimit
	case containsAny(details, "timeout", "ETIMEDOUT", "ECONNREFUSED", "connection refused", "deadline exceeded"):
		return UpstreamTimeout
	case containsAny(details, "image", "vision", "base64"):
		return UpstreamImage
	}
	return UpstreamUnknown
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
