package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"yourresumescanner/resume-scanner/internal/models"
)

// ResultStore keeps analysis results keyed by scan id. Each id is written
// once and read any number of times.
type ResultStore interface {
	Put(ctx context.Context, id string, data *models.AnalysisData) error
	Get(ctx context.Context, id string) (*models.AnalysisData, error)
}

// HistoryStore is implemented by stores that remember who ran each scan.
type HistoryStore interface {
	History(ctx context.Context, userID string, limit int) ([]models.ScanSummary, error)
}

func encodeAnalysis(data *models.AnalysisData) ([]byte, error) {
	return json.Marshal(data)
}

// decodeAnalysis parses a stored record. Anything that does not decode into
// an AnalysisData is corrupt.
func decodeAnalysis(raw []byte) (*models.AnalysisData, error) {
	var data models.AnalysisData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStoredData, err)
	}
	return &data, nil
}

// validScanID accepts only the canonical 36 character UUID form, so ids are
// safe to use in keys and file names.
func validScanID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingScanID
	}
	if len(id) != 36 {
		return ErrInvalidScanID
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidScanID
	}
	return nil
}
