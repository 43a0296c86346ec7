package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/service"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run recording sessions",
	Long:  `Start, inspect and finish recording sessions. A user has at most one active session.`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start <experiment-id> <name>",
	Short: "Start a session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionStart,
}

var sessionEndCmd = &cobra.Command{
	Use:   "end [session-id]",
	Short: "Complete a session",
	Long:  `Complete a session. Without an id the active session is ended.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionEnd,
}

var sessionStopCmd = &cobra.Command{
	Use:   "stop [session-id]",
	Short: "Abort a session",
	Long:  `Abort a session. Without an id the active session is stopped.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionStop,
}

var sessionActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the active session",
	RunE:  runSessionActive,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE:  runSessionList,
}

var (
	sessionExperiment string
	sessionLimit      int
)

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionEndCmd)
	sessionCmd.AddCommand(sessionStopCmd)
	sessionCmd.AddCommand(sessionActiveCmd)
	sessionCmd.AddCommand(sessionListCmd)

	sessionListCmd.Flags().StringVarP(&sessionExperiment, "experiment", "e", "", "Only sessions of this experiment")
	sessionListCmd.Flags().IntVarP(&sessionLimit, "limit", "n", service.RecentSessionsLimit, "Maximum number of sessions")
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	s, err := app.Services.Sessions.Start(ctx, app.User, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Started session %q\n  ID: %s\n", s.Name, s.ID)
	return nil
}

func runSessionEnd(cmd *cobra.Command, args []string) error {
	return finishSession(cmd, args, func(svc *service.Sessions) func(context.Context, string, string) (*domain.Session, error) {
		return svc.End
	})
}

func runSessionStop(cmd *cobra.Command, args []string) error {
	return finishSession(cmd, args, func(svc *service.Sessions) func(context.Context, string, string) (*domain.Session, error) {
		return svc.Stop
	})
}

func finishSession(cmd *cobra.Command, args []string, pick func(*service.Sessions) func(context.Context, string, string) (*domain.Session, error)) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	id, err := sessionArg(ctx, app, args)
	if err != nil {
		return err
	}
	s, err := pick(app.Services.Sessions)(ctx, app.User, id)
	if err != nil {
		return err
	}
	printSession(cmd.OutOrStdout(), s)
	return nil
}

func runSessionActive(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	s, err := app.Services.Sessions.Active(ctx, app.User)
	if err != nil {
		return err
	}
	printSession(cmd.OutOrStdout(), s)
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	var sessions []*domain.Session
	if sessionExperiment != "" {
		sessions, err = app.Services.Sessions.ListByExperiment(ctx, app.User, sessionExperiment)
	} else {
		sessions, err = app.Services.Sessions.ListRecent(ctx, app.User, sessionLimit)
	}
	if err != nil {
		return err
	}
	printSessions(cmd.OutOrStdout(), sessions)
	return nil
}

// sessionArg returns the session id argument, or the active session's id
// when none is given.
func sessionArg(ctx context.Context, app *AppContext, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	s, err := app.Services.Sessions.Active(ctx, app.User)
	if err != nil {
		return "", fmt.Errorf("no session id given: %w", err)
	}
	return s.ID, nil
}
