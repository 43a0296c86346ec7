package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/util"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	d, err := app.Services.Stats.Dashboard(ctx, app.User)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Metric", "Value"},
		[][]string{
			{"Experiments", util.FormatNumber(d.ExperimentCount)},
			{"Sessions", util.FormatNumber(d.Stats.SessionCount)},
			{"Completed", util.FormatNumber(d.Stats.CompletedCount)},
			{"Active", util.FormatNumber(d.Stats.ActiveSessionCount)},
			{"Trials", util.FormatNumber(d.Stats.TotalTrials)},
			{"Accuracy", util.FormatAccuracy(d.Stats.OverallAccuracy)},
		},
		[]columnAlignment{alignLeft, alignRight}))

	if d.Active != nil {
		fmt.Fprintf(out, "\nActive session: %s (%s, %d trials)\n", d.Active.Name, util.FormatAccuracy(d.Active.AccuracyRate), d.Active.TotalTrials)
	}
	if len(d.RecentSessions) > 0 {
		fmt.Fprintln(out, "\nRecent sessions:")
		printSessions(out, d.RecentSessions)
	}
	return nil
}
