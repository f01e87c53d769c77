package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"iter"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/config"
	"yourresumescanner/resume-scanner/internal/models"
)

const (
	jpegDataURLPrefix = "data:image/jpeg;base64,"
	pointsPerInch     = 72.0
	minRenderDPI      = 1.0
)

type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]models.PageImage, error)
	Pages(ctx context.Context, pdf []byte) iter.Seq2[models.PageImage, error]
	RasterizeURL(ctx context.Context, url string) ([]models.PageImage, error)
	MaxImageSizeMB() float64
}

type rasterizer struct {
	cfg           config.RasterizerConfig
	maxFetchBytes int64
	guard         *urlGuard
	httpClient    *http.Client
	log           *zap.Logger

	encode func(img image.Image, quality int) (string, error)
}

// NewRasterizer renders with cfg. upload bounds hosted PDF fetches: size
// ceiling, allowed hosts and whether plain http or internal addresses may be
// reached.
func NewRasterizer(cfg config.RasterizerConfig, upload config.UploadConfig, log *zap.Logger) Rasterizer {
	guard := newURLGuard(upload)
	return &rasterizer{
		cfg:           cfg,
		maxFetchBytes: upload.MaxFileSize,
		guard:         guard,
		httpClient:    guard.client(30 * time.Second),
		log:           log,
		encode:        encodeJPEG,
	}
}

func (r *rasterizer) MaxImageSizeMB() float64 {
	return r.cfg.MaxImageSizeMB
}

// Rasterize converts every page of pdf to a JPEG data URL. Any failure
// discards the pages produced so far.
func (r *rasterizer) Rasterize(ctx context.Context, pdf []byte) ([]models.PageImage, error) {
	var pages []models.PageImage
	for page, err := range r.Pages(ctx, pdf) {
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}

	r.log.Debug("rasterized document", zap.Int("pages", len(pages)), zap.Int("bytes", len(pdf)))
	return pages, nil
}

// Pages yields one image per page in ascending page order. Iteration stops
// after the first error.
func (r *rasterizer) Pages(ctx context.Context, pdf []byte) iter.Seq2[models.PageImage, error] {
	return func(yield func(models.PageImage, error) bool) {
		doc, err := fitz.NewFromMemory(pdf)
		if err != nil {
			yield(models.PageImage{}, &ConversionError{Err: err})
			return
		}
		defer doc.Close()

		total := doc.NumPage()
		if total == 0 {
			yield(models.PageImage{}, ErrEmptyDocument)
			return
		}

		baseDPI := pointsPerInch * r.cfg.RenderScale
		for index := 0; index < total; index++ {
			if err := ctx.Err(); err != nil {
				yield(models.PageImage{}, err)
				return
			}

			render := func(dpi float64) (image.Image, error) {
				return doc.ImageDPI(index, dpi)
			}
			page, err := r.fitPage(index+1, baseDPI, render)
			if !yield(page, err) || err != nil {
				return
			}
		}
	}
}

// fitPage encodes a rendered page and shrinks it until it fits the size
// ceiling: first by lowering JPEG quality, then by re-rendering at a
// smaller resolution.
func (r *rasterizer) fitPage(pageNumber int, dpi float64, render func(dpi float64) (image.Image, error)) (models.PageImage, error) {
	limit := r.cfg.MaxImageSizeMB

	img, err := render(dpi)
	if err != nil {
		return models.PageImage{}, &ConversionError{Page: pageNumber, Err: err}
	}

	quality := r.cfg.InitialQuality
	dataURL, err := r.encode(img, quality)
	if err != nil {
		return models.PageImage{}, &ConversionError{Page: pageNumber, Err: err}
	}
	size := ImageSizeMB(dataURL)

	for size > limit && quality > r.cfg.QualityFloor {
		quality = max(quality-r.cfg.QualityStep, r.cfg.QualityFloor)
		if dataURL, err = r.encode(img, quality); err != nil {
			return models.PageImage{}, &ConversionError{Page: pageNumber, Err: err}
		}
		size = ImageSizeMB(dataURL)
	}

	if size > limit {
		scaled := max(dpi*math.Sqrt(limit/size), minRenderDPI)
		r.log.Debug("downscaling page",
			zap.Int("page", pageNumber),
			zap.Float64("size_mb", size),
			zap.Float64("dpi", scaled),
		)

		if img, err = render(scaled); err != nil {
			return models.PageImage{}, &ConversionError{Page: pageNumber, Err: err}
		}
		if dataURL, err = r.encode(img, r.cfg.ReencodeQuality); err != nil {
			return models.PageImage{}, &ConversionError{Page: pageNumber, Err: err}
		}
		size = ImageSizeMB(dataURL)
	}

	if size > limit {
		return models.PageImage{}, &PageTooLargeError{Page: pageNumber, SizeMB: size, LimitMB: limit}
	}

	return models.PageImage{URL: dataURL, PageNumber: pageNumber}, nil
}

// RasterizeURL downloads a hosted PDF and rasterizes it.
func (r *rasterizer) RasterizeURL(ctx context.Context, rawURL string) ([]models.PageImage, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, ErrUnsafeURL
	}
	if err := r.guard.Check(target); err != nil {
		r.log.Warn("refused resume URL", zap.String("host", target.Host))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for resume URL: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch resume: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch resume: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read resume: %w", err)
	}
	if int64(len(data)) > r.maxFetchBytes {
		return nil, ErrFileTooLarge
	}
	if !IsPDF(data) {
		return nil, ErrNotPDF
	}

	return r.Rasterize(ctx, data)
}

// ImageSizeMB estimates the decoded size of a data URL's payload in MiB.
func ImageSizeMB(dataURL string) float64 {
	payload := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		if _, after, ok := strings.Cut(dataURL, ","); ok {
			payload = after
		}
	}
	return float64(len(payload)) * 3 / 4 / (1024 * 1024)
}

func encodeJPEG(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", err
	}
	return jpegDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
