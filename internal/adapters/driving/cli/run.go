package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagegen/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
)

var (
	runOutputDir  string
	runJSON       bool
	runConcurrent bool
	runStrict     bool
	runNoEnhance  bool
	runWatch      bool
	runProvider   string
	runModel      string
)

var runCmd = &cobra.Command{
	Use:   "run <product.json>",
	Short: "Generate the three pages for a product",
	Long: `Reads one product record and writes faq.json, product_page.json and
comparison_page.json into the output directory.

Nothing is written unless every stage succeeds. The per-stage trace is
printed either way and recorded in run history.

Examples:
  pagegen run product.json
  pagegen run product.json -o site/data --concurrent
  pagegen run product.json --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "output directory (default from settings)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run report as JSON")
	runCmd.Flags().BoolVar(&runConcurrent, "concurrent", false, "run the page agents in parallel")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "require bare JSON from the LLM")
	runCmd.Flags().BoolVar(&runNoEnhance, "no-enhance", false, "build FAQ answers and product copy without the LLM")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "re-run whenever the product file changes")
	runCmd.Flags().StringVar(&runProvider, "provider", "", "LLM provider (gemini, openai, anthropic, ollama)")
	runCmd.Flags().StringVar(&runModel, "model", "", "LLM model name")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if settingsService == nil || newPipeline == nil {
		return errors.New("pipeline not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applyRunFlags(cmd, settings); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	pipeline, release, err := newPipeline(ctx, *settings)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer release()

	if runWatch {
		return watchProduct(ctx, cmd, args[0], func() error {
			return runOnce(ctx, cmd, pipeline, args[0])
		})
	}
	return runOnce(ctx, cmd, pipeline, args[0])
}

// applyRunFlags overrides settings with explicitly set flags.
func applyRunFlags(cmd *cobra.Command, settings *domain.Settings) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		settings.Pipeline.OutputDir = runOutputDir
	}
	if flags.Changed("concurrent") {
		settings.Pipeline.ConcurrentPages = runConcurrent
	}
	if flags.Changed("strict") {
		settings.Pipeline.StrictJSON = runStrict
	}
	if flags.Changed("no-enhance") {
		settings.LLM.EnhancePages = !runNoEnhance
	}
	if flags.Changed("provider") {
		provider := domain.AIProvider(strings.ToLower(runProvider))
		if !provider.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, runProvider)
		}
		if provider != settings.LLM.Provider {
			settings.LLM.Provider = provider
			settings.LLM.Model = ""
			settings.LLM.APIKey = os.Getenv(provider.APIKeyEnv())
		}
	}
	if flags.Changed("model") {
		settings.LLM.Model = runModel
	}
	return nil
}

// runOnce executes one pipeline run and prints its report.
func runOnce(ctx context.Context, cmd *cobra.Command, pipeline driving.PipelineService, path string) error {
	product, err := loadProduct(path)
	if err != nil {
		return err
	}

	report, err := pipeline.Run(ctx, driving.RunRequest{Input: path, Product: product})
	if report != nil {
		if runJSON {
			if jsonErr := printJSON(cmd.OutOrStdout(), report); jsonErr != nil {
				return jsonErr
			}
		} else {
			printReport(cmd.OutOrStdout(), report, styles.DefaultStyles())
		}
	}
	return err
}

// loadProduct reads a product record from a JSON file.
func loadProduct(path string) (domain.RawProduct, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ValidationError{Field: "input", Reason: err.Error()}
	}

	var product domain.RawProduct
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, &domain.ValidationError{Field: "input", Reason: fmt.Sprintf("%s is not a JSON object: %v", path, err)}
	}
	if product == nil {
		return nil, &domain.ValidationError{Field: "input", Reason: path + " is empty"}
	}
	return product, nil
}

// printReport writes the per-stage trace.
func printReport(w io.Writer, report *domain.RunReport, s *styles.Styles) {
	fmt.Fprintf(w, "%s %s\n", s.Title.Render("Run"), s.Muted.Render(report.RunID))
	if report.Product != "" {
		fmt.Fprintf(w, "%s %s\n", s.Label.Render("Product:"), report.Product)
	}
	fmt.Fprintln(w)

	for _, st := range report.Stages {
		style := s.StageStatus(st.Status)
		line := fmt.Sprintf("  %s %d. %-18s", styles.StageSymbol(st.Status), st.Number, st.Name)
		fmt.Fprint(w, style.Render(line))
		switch st.Status {
		case domain.StageCompleted:
			fmt.Fprintf(w, " %s", s.Muted.Render(formatDuration(st.Duration)))
			if st.Detail != "" {
				fmt.Fprintf(w, "  %s", st.Detail)
			}
		case domain.StageFailed:
			fmt.Fprintf(w, " %s", s.Error.Render(st.Error))
		case domain.StageSkipped:
			fmt.Fprintf(w, " %s", s.Muted.Render("skipped"))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	if report.Succeeded() {
		fmt.Fprintf(w, "%s in %s\n", s.RunStatus(report.Status).Render("Success"), formatDuration(report.Duration()))
		for _, out := range report.Outputs {
			fmt.Fprintf(w, "  %s\n", out)
		}
		return
	}

	if f := report.Failure; f != nil {
		msg := fmt.Sprintf("Failed at stage %d (%s): %s error\nHint: %s", f.Stage, f.Name, f.Kind, f.Hint())
		fmt.Fprintln(w, s.Box.Render(msg))
	}
	fmt.Fprintln(w, s.Muted.Render("No files were written."))
}
