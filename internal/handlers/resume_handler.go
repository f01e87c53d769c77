package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/models"
	"yourresumescanner/resume-scanner/internal/services"
)

type ResumeHandler struct {
	scanService services.ScanService
	log         *zap.Logger
}

func NewResumeHandler(scanService services.ScanService, log *zap.Logger) *ResumeHandler {
	return &ResumeHandler{
		scanService: scanService,
		log:         log,
	}
}

// HandleAnalyze scores pre-rasterized resume pages.
func (h *ResumeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
	}

	h.log.Info("received analysis request",
		zap.String("scan_id", req.Data.ID),
		zap.String("user_id", req.UserID),
		zap.Bool("has_job_title", req.Data.JobTitle != ""),
		zap.Bool("has_company", req.Data.Company != ""),
		zap.Bool("has_resume", req.Data.Resume != ""),
		zap.String("resume_name", req.Data.ResumeName),
		zap.Int("image_count", len(req.Data.ImagePaths)),
		zap.Int("job_description_length", len(req.Data.JobDescription)),
	)

	data, err := h.scanService.Scan(
		c.UserContext(),
		services.Session{UserID: req.UserID},
		req.Data.JobContext(),
		req.Data.ImagePaths,
		req.Data.ID,
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(models.AnalyzeResponse{
		Success: true,
		Data:    &data.Analysis,
		ScanID:  data.ID,
	})
}
