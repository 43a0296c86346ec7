package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/service"
	"github.com/emiliopalmerini/bcilab/internal/util"
)

var resultsCmd = &cobra.Command{
	Use:   "results [session-id]",
	Short: "Show decoded results",
	Long: `Show the results of a session in recording order. Without an id the
active session is used. With --recent, show the latest results across all
sessions instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResults,
}

var resultsRecent int

func init() {
	rootCmd.AddCommand(resultsCmd)
	resultsCmd.Flags().IntVar(&resultsRecent, "recent", 0, fmt.Sprintf("Show the N latest results across sessions (e.g. %d)", service.RecentResultsLimit))
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	out := cmd.OutOrStdout()
	if resultsRecent > 0 {
		recent, err := app.Services.Trials.RecentResults(ctx, app.User, resultsRecent)
		if err != nil {
			return err
		}
		printRecentResults(out, recent)
		return nil
	}

	sessionID, err := sessionArg(ctx, app, args)
	if err != nil {
		return err
	}
	results, err := app.Services.Trials.Results(ctx, app.User, sessionID)
	if err != nil {
		return err
	}
	printResults(out, results)
	return nil
}

func printRecentResults(w io.Writer, recent []*domain.RecentResult) {
	if len(recent) == 0 {
		fmt.Fprintln(w, "No results recorded.")
		return
	}
	rows := make([][]string, len(recent))
	for i, r := range recent {
		rows[i] = []string{
			util.FormatDateTime(r.Timestamp), r.ExperimentTitle, r.SessionName,
			r.DetectedWord, util.FormatConfidence(r.ConfidenceScore), successMark(r.WasSuccessful),
		}
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Time", "Experiment", "Session", "Word", "Confidence", "Success"},
		rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
}
