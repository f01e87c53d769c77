package services

import (
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/config"
	"yourresumescanner/resume-scanner/internal/testutil"
)

func newTestRasterizer(cfg config.RasterizerConfig) *rasterizer {
	return NewRasterizer(cfg, config.UploadConfig{MaxFileSize: 4 * 1024 * 1024}, zap.NewNop()).(*rasterizer)
}

func TestRasterize_PagesInOrder(t *testing.T) {
	r := newTestRasterizer(config.DefaultRasterizerConfig())

	pages, err := r.Rasterize(context.Background(), testutil.MinimalPDF(3))
	require.NoError(t, err)
	require.Len(t, pages, 3)

	for i, page := range pages {
		assert.Equal(t, i+1, page.PageNumber)
		assert.True(t, strings.HasPrefix(page.URL, jpegDataURLPrefix))
		assert.LessOrEqual(t, ImageSizeMB(page.URL), r.MaxImageSizeMB())
	}
}

func TestRasterize_SinglePage(t *testing.T) {
	r := newTestRasterizer(config.DefaultRasterizerConfig())

	pages, err := r.Rasterize(context.Background(), testutil.MinimalPDF(1))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].PageNumber)
}

func TestRasterize_PageTooLargeDiscardsOutput(t *testing.T) {
	cfg := config.DefaultRasterizerConfig()
	cfg.MaxImageSizeMB = 0.0001
	r := newTestRasterizer(cfg)

	pages, err := r.Rasterize(context.Background(), testutil.MinimalPDF(2))
	assert.Nil(t, pages)

	var tooLarge *PageTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 1, tooLarge.Page)
	assert.Greater(t, tooLarge.SizeMB, tooLarge.LimitMB)
	assert.Contains(t, err.Error(), "Page 1 is too large")
}

func TestRasterize_EmptyDocument(t *testing.T) {
	r := newTestRasterizer(config.DefaultRasterizerConfig())

	_, err := r.Rasterize(context.Background(), testutil.MinimalPDF(0))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestRasterize_NotAPDF(t *testing.T) {
	r := newTestRasterizer(config.DefaultRasterizerConfig())

	_, err := r.Rasterize(context.Background(), []byte("definitely not a pdf"))
	var convErr *ConversionError
	assert.ErrorAs(t, err, &convErr)
}

func TestRasterize_CancelledContext(t *testing.T) {
	r := newTestRasterizer(config.DefaultRasterizerConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages, err := r.Rasterize(ctx, testutil.MinimalPDF(2))
	assert.Nil(t, pages)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPages_StopsWhenConsumerBreaks(t *testing.T) {
	r := newTestRasterizer(config.DefaultRasterizerConfig())

	seen := 0
	for page, err := range r.Pages(context.Background(), testutil.MinimalPDF(3)) {
		require.NoError(t, err)
		assert.Equal(t, 1, page.PageNumber)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

// widthRenderer renders a 1px tall image whose width tracks the DPI so the
// fake encoder can size its output from the render resolution.
func widthRenderer(calls *[]float64) func(dpi float64) (image.Image, error) {
	return func(dpi float64) (image.Image, error) {
		*calls = append(*calls, dpi)
		return image.NewGray(image.Rect(0, 0, int(dpi), 1)), nil
	}
}

func TestFitPage_LowersQualityUntilItFits(t *testing.T) {
	cfg := config.DefaultRasterizerConfig()
	cfg.MaxImageSizeMB = 0.05

	var qualities []int
	r := newTestRasterizer(cfg)
	r.encode = func(_ image.Image, quality int) (string, error) {
		qualities = append(qualities, quality)
		return jpegDataURLPrefix + strings.Repeat("A", quality*1000), nil
	}

	var renders []float64
	page, err := r.fitPage(1, 144, widthRenderer(&renders))
	require.NoError(t, err)

	assert.Equal(t, []int{90, 80, 70, 60}, qualities)
	assert.Equal(t, []float64{144}, renders)
	assert.LessOrEqual(t, ImageSizeMB(page.URL), cfg.MaxImageSizeMB)
}

func TestFitPage_DownscalesAfterQualityFloor(t *testing.T) {
	cfg := config.DefaultRasterizerConfig()
	cfg.MaxImageSizeMB = 0.01

	var qualities []int
	r := newTestRasterizer(cfg)
	r.encode = func(img image.Image, quality int) (string, error) {
		qualities = append(qualities, quality)
		w := img.Bounds().Dx()
		return jpegDataURLPrefix + strings.Repeat("A", w*w), nil
	}

	var renders []float64
	page, err := r.fitPage(2, 144, widthRenderer(&renders))
	require.NoError(t, err)

	assert.Equal(t, []int{90, 80, 70, 60, 50, 40, 30, 20, 10, 90}, qualities)
	require.Len(t, renders, 2)
	assert.InDelta(t, 118.2, renders[1], 0.1)
	assert.Equal(t, 2, page.PageNumber)
	assert.LessOrEqual(t, ImageSizeMB(page.URL), cfg.MaxImageSizeMB)
}

func TestFitPage_QualityStepClampsToFloor(t *testing.T) {
	cfg := config.DefaultRasterizerConfig()
	cfg.MaxImageSizeMB = 0.000001
	cfg.QualityStep = 35
	cfg.QualityFloor = 15

	var qualities []int
	r := newTestRasterizer(cfg)
	r.encode = func(_ image.Image, quality int) (string, error) {
		qualities = append(qualities, quality)
		return jpegDataURLPrefix + strings.Repeat("A", 1000), nil
	}

	var renders []float64
	_, err := r.fitPage(1, 144, widthRenderer(&renders))

	var tooLarge *PageTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, []int{90, 55, 20, 15, 90}, qualities)
}

func TestFitPage_RenderFailure(t *testing.T) {
	r := newTestRasterizer(config.DefaultRasterizerConfig())
	boom := errors.New("render failed")

	_, err := r.fitPage(4, 144, func(float64) (image.Image, error) { return nil, boom })

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, 4, convErr.Page)
	assert.ErrorIs(t, err, boom)
}

func TestImageSizeMB(t *testing.T) {
	payload := strings.Repeat("A", 4*1024*1024/3*4)

	assert.InDelta(t, 4.0, ImageSizeMB(jpegDataURLPrefix+payload), 0.001)
	assert.InDelta(t, 4.0, ImageSizeMB(payload), 0.001)
	assert.Zero(t, ImageSizeMB(jpegDataURLPrefix))
}

func TestRasterizeURL(t *testing.T) {
	pdf := testutil.MinimalPDF(2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/resume.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write(pdf)
		case "/resume.txt":
			_, _ = w.Write([]byte("plain text"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	local := config.UploadConfig{MaxFileSize: 4 * 1024 * 1024, AllowInsecureURLs: true}
	r := NewRasterizer(config.DefaultRasterizerConfig(), local, zap.NewNop())

	t.Run("fetches and rasterizes", func(t *testing.T) {
		pages, err := r.RasterizeURL(context.Background(), srv.URL+"/resume.pdf")
		require.NoError(t, err)
		assert.Len(t, pages, 2)
	})

	t.Run("rejects non pdf", func(t *testing.T) {
		_, err := r.RasterizeURL(context.Background(), srv.URL+"/resume.txt")
		assert.ErrorIs(t, err, ErrNotPDF)
	})

	t.Run("reports missing file", func(t *testing.T) {
		_, err := r.RasterizeURL(context.Background(), srv.URL+"/missing.pdf")
		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("enforces size limit", func(t *testing.T) {
		small := NewRasterizer(config.DefaultRasterizerConfig(), config.UploadConfig{MaxFileSize: 64, AllowInsecureURLs: true}, zap.NewNop())
		_, err := small.RasterizeURL(context.Background(), srv.URL+"/resume.pdf")
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}
