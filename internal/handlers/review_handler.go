package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/models"
	"yourresumescanner/resume-scanner/internal/services"
)

type ReviewHandler struct {
	store   services.ResultStore
	history services.HistoryStore
	log     *zap.Logger
}

// NewReviewHandler serves stored results. history may be nil when the
// configured store does not track users.
func NewReviewHandler(store services.ResultStore, history services.HistoryStore, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		store:   store,
		history: history,
		log:     log,
	}
}

// HandleReview returns the analysis stored under ?id=.
func (h *ReviewHandler) HandleReview(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:  "No scan ID provided",
			Action: actionRescan,
		})
	}

	data, err := h.store.Get(c.UserContext(), id)
	if err != nil {
		h.log.Warn("review lookup failed", zap.String("scan_id", id), zap.Error(err))
		return writeError(c, err)
	}

	return c.JSON(models.ReviewResponse{
		Success: true,
		Data:    data,
		Grade:   models.Grade(data.Analysis.OverallScore),
	})
}

// HandleHistory lists a user's previous scans, newest first.
func (h *ReviewHandler) HandleHistory(c *fiber.Ctx) error {
	if h.history == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(models.ErrorResponse{
			Error:   "Scan history is not available",
			Details: "Scan history requires the database result store",
		})
	}

	scans, err := h.history.History(c.UserContext(), c.Params("userId"), c.QueryInt("limit", 20))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(models.HistoryResponse{
		Success: true,
		Data:    scans,
	})
}
