package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"yourresumescanner/resume-scanner/internal/config"
)

type Handlers struct {
	Resume *ResumeHandler
	Scan   *ScanHandler
	Review *ReviewHandler
}

// NewApp builds the fiber app with middleware and all routes mounted.
func NewApp(cfg *config.Config, h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Resume Scanner API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AI.Timeout + 30*time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	if cfg.IsDevelopment() {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	if cfg.Store.PersistImages {
		app.Static(cfg.Store.ImageURLPath, cfg.Store.ImageDir)
	}

	analysisLimiter := limiter.New(limiter.Config{
		Max:          cfg.Server.RateLimitMax,
		Expiration:   cfg.Server.RateLimitEvery,
		LimitReached: RateLimitReached,
	})

	// Legacy path used by the web client.
	app.Post("/api/resume", analysisLimiter, h.Resume.HandleAnalyze)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/resume", analysisLimiter, h.Resume.HandleAnalyze)
	api.Post("/scan", analysisLimiter, h.Scan.HandleScan)
	api.Post("/rasterize", h.Scan.HandleRasterize)
	api.Get("/review", h.Review.HandleReview)
	api.Get("/users/:userId/scans", h.Review.HandleHistory)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Scanner API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resume",
				"POST /api/v1/scan",
				"POST /api/v1/rasterize",
				"GET /api/v1/review?id=",
				"GET /api/v1/users/:userId/scans",
			},
		})
	})

	return app
}
