package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yourresumescanner/resume-scanner/internal/config"
	"yourresumescanner/resume-scanner/internal/logger"
)

var (
	verbose bool
	maxMB   float64

	cfg  *config.Config
	zlog *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "scan",
	Short: "Resume scanner command line tools",
	Long: `Rasterize resume PDFs into size-bounded JPEG pages and score them
with the configured AI provider, without running the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if cmd.Flags().Changed("max-mb") {
			cfg.Rasterizer.MaxImageSizeMB = maxMB
		}
		if err := cfg.Rasterizer.Validate(); err != nil {
			return err
		}

		var err error
		zlog, err = logger.New(false, verbose)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Float64Var(&maxMB, "max-mb", 4, "maximum size of one page image in MB")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
