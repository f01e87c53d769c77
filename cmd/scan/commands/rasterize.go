package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/services"
)

var rasterizeOutDir string

var rasterizeCmd = &cobra.Command{
	Use:   "rasterize <resume.pdf>",
	Short: "Convert a PDF into JPEG page images",
	Args:  cobra.ExactArgs(1),
	RunE:  runRasterize,
}

func init() {
	rasterizeCmd.Flags().StringVarP(&rasterizeOutDir, "out", "o", ".", "directory for page_NNN.jpg files")
	rootCmd.AddCommand(rasterizeCmd)
}

func runRasterize(cmd *cobra.Command, args []string) error {
	pdf, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	info, err := services.NewPDFInspector(cfg.Upload.MaxFileSize).Inspect(pdf)
	if err != nil {
		return err
	}
	if info.Warning != "" {
		zlog.Warn("pdf inspection warning", zap.String("warning", info.Warning))
	}

	if err := os.MkdirAll(rasterizeOutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	rasterizer := services.NewRasterizer(cfg.Rasterizer, cfg.Upload, zlog)
	out := cmd.OutOrStdout()
	for page, err := range rasterizer.Pages(cmd.Context(), pdf) {
		if err != nil {
			return err
		}

		_, payload, _ := strings.Cut(page.URL, ",")
		jpg, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return fmt.Errorf("decode page %d: %w", page.PageNumber, err)
		}

		name := filepath.Join(rasterizeOutDir, fmt.Sprintf("page_%03d.jpg", page.PageNumber))
		if err := os.WriteFile(name, jpg, 0o644); err != nil {
			return fmt.Errorf("write page %d: %w", page.PageNumber, err)
		}
		fmt.Fprintf(out, "%s\t%.2fMB\n", name, services.ImageSizeMB(page.URL))
	}

	return nil
}
