package cli

import (
	"fmt"
	"math/rand/v2"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/decoder"
	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/logging"
	"github.com/emiliopalmerini/bcilab/internal/util"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [session-id]",
	Short: "Run the simulated decoder against a session",
	Long: `Poll the simulated decision source and record every decision as a
trial. Without an id the active session is used. The run stops on Ctrl-C,
after --trials trials, or when the session ends.

A decision counts as successful when its confidence exceeds --threshold
and, if --target is set, the detected word matches it.

Examples:
  bcilab decode --trials 20 --interval 500ms
  bcilab decode --target yes --threshold 75`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

var (
	decodeInterval      time.Duration
	decodeThreshold     float64
	decodeMinConfidence float64
	decodeTarget        string
	decodeTrials        int
	decodeSeed          uint64
)

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().DurationVar(&decodeInterval, "interval", 0, "Polling interval (default $BCILAB_DECODER_INTERVAL)")
	decodeCmd.Flags().Float64Var(&decodeThreshold, "threshold", -1, "Success confidence threshold (default $BCILAB_DECODER_THRESHOLD)")
	decodeCmd.Flags().Float64Var(&decodeMinConfidence, "min-confidence", -1, "Lowest simulated confidence (default $BCILAB_DECODER_MIN_CONFIDENCE)")
	decodeCmd.Flags().StringVar(&decodeTarget, "target", "", "Only this word counts as a success")
	decodeCmd.Flags().IntVarP(&decodeTrials, "trials", "n", 0, "Stop after this many trials (0 = until stopped)")
	decodeCmd.Flags().Uint64Var(&decodeSeed, "seed", 0, "Random seed (0 = random)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	sessionID, err := sessionArg(ctx, app, args)
	if err != nil {
		return err
	}
	session, err := app.Services.Sessions.Get(ctx, app.User, sessionID)
	if err != nil {
		return err
	}
	if !session.IsActive() {
		return domain.InvalidState("session %s is %s", session.ID, session.Status)
	}
	exp, err := app.Services.Experiments.Get(ctx, app.User, session.ExperimentID)
	if err != nil {
		return err
	}

	cfg := app.Config.Decoder
	interval, threshold, minConfidence := cfg.Interval, cfg.Threshold, cfg.MinConfidence
	if decodeInterval > 0 {
		interval = decodeInterval
	}
	if decodeThreshold >= 0 {
		threshold = decodeThreshold
	}
	if decodeMinConfidence >= 0 {
		minConfidence = decodeMinConfidence
	}
	seed := decodeSeed
	if seed == 0 {
		seed = rand.Uint64()
	}

	decisions := make(chan domain.Decision)
	runner := &decoder.Runner{
		Source:    decoder.NewSimulated(minConfidence, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
		Recorder:  app.Services.Trials,
		Logger:    logging.Component(app.Logger, "decoder"),
		Interval:  interval,
		Threshold: threshold,
		Target:    decodeTarget,
		MaxTrials: decodeTrials,
		Decisions: decisions,
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Decoding %q (%s) every %s, threshold %.1f\n", session.Name, exp.Title, interval, threshold)

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for d := range decisions {
			if d.None() {
				fmt.Fprintln(out, "  -")
				continue
			}
			fmt.Fprintf(out, "  %-12s %s  %s\n", d.Word, util.FormatConfidence(d.Confidence), successMark(runner.Successful(d)))
		}
	}()

	summary, err := runner.Run(ctx, app.User, session.ID, exp.Vocabulary)
	close(decisions)
	<-printed
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Recorded %d trials (%d successful, %d skipped).\n", summary.Trials, summary.Successful, summary.Skipped)
	if summary.Session != nil {
		fmt.Fprintf(out, "Session accuracy: %s\n", util.FormatAccuracy(summary.Session.AccuracyRate))
	}
	return nil
}
