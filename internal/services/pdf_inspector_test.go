package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yourresumescanner/resume-scanner/internal/testutil"
)

func TestInspect(t *testing.T) {
	inspector := NewPDFInspector(4 * 1024 * 1024)

	t.Run("reads page count and text", func(t *testing.T) {
		info, err := inspector.Inspect(testutil.MinimalPDF(2))
		require.NoError(t, err)
		assert.Equal(t, 2, info.PageCount)
		assert.True(t, info.HasText())
		assert.False(t, info.Encrypted)
		assert.Empty(t, info.Warning)
	})

	t.Run("rejects non pdf", func(t *testing.T) {
		_, err := inspector.Inspect([]byte("GIF89a"))
		assert.ErrorIs(t, err, ErrNotPDF)
	})

	t.Run("rejects oversized upload", func(t *testing.T) {
		_, err := NewPDFInspector(32).Inspect(testutil.MinimalPDF(1))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("broken body is a warning", func(t *testing.T) {
		info, err := inspector.Inspect([]byte("%PDF-1.4\ngarbage"))
		require.NoError(t, err)
		assert.NotEmpty(t, info.Warning)
		assert.Zero(t, info.PageCount)
	})
}
