// Package cli implements the command-line interface. Commands depend
// on the pipeline through the driving port; the concrete wiring is
// injected from main via Setup.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/core/ports/driving"
	"github.com/Kunze-Ritter/Manual2Vector-sub000/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// pipelineFactory builds the document pipeline once a command actually
// needs it. Deferred construction keeps `version` and `--help` free of
// OCR and database initialisation.
var pipelineFactory func() (driving.DocumentPipeline, func() error, error)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "manual2vector",
	Short: "Extract structured knowledge from printer service manuals",
	Long: `manual2vector converts technical service-manual PDFs into a
structured knowledge base: per-page text, classified chunks and
manufacturer entities (error codes, part numbers, product models,
versions) with confidence scores and page provenance.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default ~/.manual2vector/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// Setup injects the pipeline factory. Must be called before Execute.
func Setup(factory func() (driving.DocumentPipeline, func() error, error)) {
	pipelineFactory = factory
}

// ConfigPath returns the --config flag value.
func ConfigPath() string {
	return cfgPath
}

// Execute runs the root command with the given build version. The
// context cancels long-running commands such as watch on interrupt.
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.ExecuteContext(ctx)
}
