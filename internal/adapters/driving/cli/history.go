package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagegen/internal/adapters/driving/cli/styles"
	"github.com/custodia-labs/pagegen/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past pipeline runs",
	Long: `Lists recent runs, newest first. Use 'history show <run-id>' for the
full stage trace of a run.`,
	RunE: runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the report of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove a run from history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to list")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(commandContext(cmd), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if historyJSON {
		return printJSON(cmd.OutOrStdout(), runs)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	cmd.Printf("%-36s  %-19s  %-7s  %-9s  %s\n", "RUN ID", "STARTED", "STATUS", "DURATION", "INPUT")
	for _, r := range runs {
		status := string(r.Status)
		if r.FailedAt != "" {
			status += " (" + r.FailedAt + ")"
		}
		cmd.Printf("%-36s  %-19s  %-7s  %-9s  %s\n",
			r.RunID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			formatDuration(r.Duration),
			truncate(r.Input, 40),
		)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	report, err := historyService.Get(commandContext(cmd), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if historyJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}

	cmd.Printf("Input: %s\n", report.Input)
	cmd.Printf("Started: %s\n", report.StartedAt.Local().Format("2006-01-02 15:04:05"))
	printReport(cmd.OutOrStdout(), report, styles.DefaultStyles())
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	err := historyService.Delete(commandContext(cmd), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run %q not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	cmd.Printf("Deleted run %s\n", args[0])
	return nil
}
