package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/util"
)

var recordCmd = &cobra.Command{
	Use:   "record <word> <confidence>",
	Short: "Record a decoded trial",
	Long: `Record one decoded trial against a session. Without --session the
active session is used.

Examples:
  bcilab record yes 91.5 --success
  bcilab record no 42 --session <id>`,
	Args: cobra.ExactArgs(2),
	RunE: runRecord,
}

var (
	recordSuccess bool
	recordSession string
)

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().BoolVarP(&recordSuccess, "success", "s", false, "Mark the trial as successful")
	recordCmd.Flags().StringVar(&recordSession, "session", "", "Session id (default: the active session)")
}

func runRecord(cmd *cobra.Command, args []string) error {
	confidence, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid confidence %q: %w", args[1], err)
	}

	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	sessionID, err := sessionArg(ctx, app, []string{recordSession})
	if err != nil {
		return err
	}

	result, session, err := app.Services.Trials.Record(ctx, app.User, sessionID, domain.Trial{
		DetectedWord:    args[0],
		ConfidenceScore: confidence,
		WasSuccessful:   recordSuccess,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %q at %s (success: %s). Session accuracy %s over %d trials.\n",
		result.DetectedWord, util.FormatConfidence(result.ConfidenceScore), successMark(result.WasSuccessful),
		util.FormatAccuracy(session.AccuracyRate), session.TotalTrials)
	return nil
}
