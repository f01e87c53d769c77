package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/models"
	"yourresumescanner/resume-scanner/internal/services"
)

type ScanHandler struct {
	scanService services.ScanService
	inspector   services.PDFInspector
	rasterizer  services.Rasterizer
	maxFileSize int64
	log         *zap.Logger
}

func NewScanHandler(
	scanService services.ScanService,
	inspector services.PDFInspector,
	rasterizer services.Rasterizer,
	maxFileSize int64,
	log *zap.Logger,
) *ScanHandler {
	return &ScanHandler{
		scanService: scanService,
		inspector:   inspector,
		rasterizer:  rasterizer,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandleScan rasterizes an uploaded or hosted PDF and analyzes it.
func (h *ScanHandler) HandleScan(c *fiber.Ctx) error {
	sess := services.Session{UserID: c.FormValue("userId")}
	job := models.JobContext{
		JobTitle:        c.FormValue("jobTitle"),
		Company:         c.FormValue("company"),
		JobDescription:  c.FormValue("jobDescription"),
		ExperienceLevel: c.FormValue("experienceLevel"),
	}

	scanID := c.FormValue("scanId")
	if scanID == "" {
		scanID = uuid.New().String()
	}

	var (
		data *models.AnalysisData
		err  error
	)
	if resumeURL := c.FormValue("resumeUrl"); resumeURL != "" {
		data, err = h.scanService.ScanURL(c.UserContext(), sess, job, resumeURL, scanID)
	} else {
		pdf, readErr := h.readUpload(c)
		if readErr != nil {
			return writeError(c, readErr)
		}
		data, err = h.scanService.ScanPDF(c.UserContext(), sess, job, pdf, scanID)
	}
	if err != nil {
		h.log.Warn("scan failed", zap.String("scan_id", scanID), zap.Error(err))
		return writeError(c, err)
	}

	return c.JSON(models.AnalyzeResponse{
		Success: true,
		Data:    &data.Analysis,
		ScanID:  data.ID,
	})
}

// HandleRasterize converts an uploaded PDF into page images without
// analyzing it.
func (h *ScanHandler) HandleRasterize(c *fiber.Ctx) error {
	pdf, err := h.readUpload(c)
	if err != nil {
		return writeError(c, err)
	}

	if _, err := h.inspector.Inspect(pdf); err != nil {
		return writeError(c, err)
	}

	pages, err := h.rasterizer.Rasterize(c.UserContext(), pdf)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(models.RasterizeResponse{
		Success:        true,
		Data:           pages,
		MaxImageSizeMB: h.rasterizer.MaxImageSizeMB(),
	})
}

// readUpload returns the bytes of the "resume" form file after the type and
// size checks.
func (h *ScanHandler) readUpload(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("resume")
	if err != nil {
		return nil, services.ErrNoImages
	}

	if !isPDFUpload(file) {
		return nil, services.ErrNotPDF
	}

	if file.Size > h.maxFileSize {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize))
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func isPDFUpload(file *multipart.FileHeader) bool {
	if file.Header.Get("Content-Type") == "application/pdf" {
		return true
	}
	return strings.ToLower(filepath.Ext(file.Filename)) == ".pdf"
}
