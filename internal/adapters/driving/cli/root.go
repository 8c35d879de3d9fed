// Package cli provides the pagegen command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

// Global flags.
var (
	configPath  string
	envFilePath string
	verbose     bool
)

// PipelineFactory builds a pipeline for the given settings.
// The returned function releases the resources it holds.
type PipelineFactory func(ctx context.Context, settings domain.Settings) (driving.PipelineService, func(), error)

// Services wired by bootstrap.
var (
	settingsService driving.SettingsService
	templateService driving.TemplateService
	historyService  driving.HistoryService
	newPipeline     PipelineFactory

	// configFile is where settings are persisted, for display only.
	configFile string

	// closers run after the command finishes.
	closers []func()
)

// bootstrap wires the services before a command runs.
// Replaced in tests.
var bootstrap = bootstrapServices

var rootCmd = &cobra.Command{
	Use:   "pagegen",
	Short: "Generate structured product pages from a product record",
	Long: `pagegen turns one product JSON record into three machine-readable pages:

  faq.json              - categorised questions with answers
  product_page.json     - a structured product description
  comparison_page.json  - a comparison against a fictional alternative

Each run goes through a fixed sequence of stages (parse, questions, content
logic, templates, page agents) and reports the outcome of every stage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Annotations[skipBootstrap] == "true" {
			return nil
		}
		return bootstrap(cmd.Context())
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
		_ = logger.L().Sync() //nolint:errcheck // stderr sync fails on some terminals
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.pagegen/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFilePath, "env-file", ".env", "dotenv file with API keys and overrides")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or Background when run
// without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
