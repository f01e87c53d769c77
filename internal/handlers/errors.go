package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"yourresumescanner/resume-scanner/internal/models"
	"yourresumescanner/resume-scanner/internal/services"
)

const actionRescan = "rescan"

// writeError renders err in the standard failure envelope.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, models.ErrorResponse) {
	resp := models.ErrorResponse{Success: false}

	var (
		upstream *services.UpstreamError
		contract *services.ContractError
		tooLarge *services.PageTooLargeError
		convErr  *services.ConversionError
		scanErr  *services.ScanError
		fiberErr *fiber.Error
	)

	switch {
	case errors.As(err, &upstream):
		resp.Error = upstream.Message
		resp.Details = upstream.Details
		return upstream.Status, resp

	case errors.As(err, &contract):
		resp.Error = "Failed to parse AI response - invalid JSON format"
		resp.Details = contract.Err.Error()
		resp.Sample = contract.Excerpt
		return fiber.StatusInternalServerError, resp

	case errors.As(err, &tooLarge):
		resp.Error = "PDF conversion failed"
		resp.Details = tooLarge.Error()
		return fiber.StatusUnprocessableEntity, resp

	case errors.As(err, &convErr):
		resp.Error = "PDF conversion failed"
		resp.Details = convErr.Error()
		return fiber.StatusUnprocessableEntity, resp

	case errors.Is(err, services.ErrScanExists):
		resp.Error = services.ErrScanExists.Message
		return fiber.StatusConflict, resp

	case errors.Is(err, services.ErrNoDataFound):
		resp.Error = services.ErrNoDataFound.Message
		resp.Action = actionRescan
		return fiber.StatusNotFound, resp

	case errors.Is(err, services.ErrCorruptStoredData):
		resp.Error = services.ErrCorruptStoredData.Message
		resp.Action = actionRescan
		return fiber.StatusUnprocessableEntity, resp

	case errors.As(err, &scanErr):
		resp.Error = scanErr.Message
		if scanErr.Kind == services.KindInput {
			return fiber.StatusBadRequest, resp
		}
		if scanErr.Err != nil {
			resp.Details = scanErr.Err.Error()
		}
		return fiber.StatusInternalServerError, resp

	case errors.As(err, &fiberErr):
		resp.Error = fiberErr.Message
		return fiberErr.Code, resp
	}

	resp.Error = "Internal server error"
	resp.Details = err.Error()
	return fiber.StatusInternalServerError, resp
}

// ErrorHandler is the fiber error handler; it keeps unhandled errors and
// panics in the standard envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}

// RateLimitReached answers requests rejected by the limiter.
func RateLimitReached(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
		Success: false,
		Error:   "Too many requests",
		Details: "Please try again in a few minutes.",
	})
}
