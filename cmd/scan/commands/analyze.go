package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"yourresumescanner/resume-scanner/internal/models"
	"yourresumescanner/resume-scanner/internal/services"
)

var (
	analyzeJob    models.JobContext
	analyzeUserID string
	analyzeModel  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume.pdf>",
	Short: "Score a resume PDF and print the analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeJob.JobTitle, "job-title", "", "target job title")
	analyzeCmd.Flags().StringVar(&analyzeJob.Company, "company", "", "target company")
	analyzeCmd.Flags().StringVar(&analyzeJob.JobDescription, "description", "", "job description text")
	analyzeCmd.Flags().StringVar(&analyzeJob.ExperienceLevel, "level", "", "experience level")
	analyzeCmd.Flags().StringVar(&analyzeUserID, "user", "cli", "user id recorded with the scan")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "override the configured AI model")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pdf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	if analyzeModel != "" {
		cfg.AI.Model = analyzeModel
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AI.Timeout*2)
	defer cancel()

	aiClient, err := services.NewAIClient(ctx, cfg.AI, zlog)
	if err != nil {
		return err
	}

	rasterizer := services.NewRasterizer(cfg.Rasterizer, cfg.Upload, zlog)
	scanService := services.NewScanService(
		services.NewPDFInspector(cfg.Upload.MaxFileSize),
		rasterizer,
		services.NewAnalyzer(aiClient, cfg.AI, zlog),
		services.NewMemoryStore(0),
		zlog,
	)

	data, err := scanService.ScanPDF(ctx, services.Session{UserID: analyzeUserID}, analyzeJob, pdf, uuid.New().String())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(models.AnalyzeResponse{
		Success: true,
		Data:    &data.Analysis,
		ScanID:  data.ID,
	})
}
