package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/logging"
	"github.com/emiliopalmerini/bcilab/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Start the web dashboard and JSON API.

Examples:
  bcilab serve              # Start on the configured port (default 8080)
  bcilab serve --port 3000  # Start on port 3000
  bcilab serve --memory     # Use a throwaway in-memory database`,
	RunE: runServe,
}

var (
	servePort  int
	memoryFlag bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default $BCILAB_SERVER_PORT)")
	serveCmd.Flags().BoolVar(&memoryFlag, "memory", false, "Use an in-memory database")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, release, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer release()

	port := app.Config.Server.Port
	if servePort != 0 {
		port = servePort
	}

	server := web.NewServer(app.Services, app.Events, web.Options{
		Port:            port,
		DefaultUser:     app.User,
		ShutdownTimeout: app.Config.Server.ShutdownTimeout,
		Vocabulary:      defaultWords(),
	}, logging.Component(app.Logger, "web"))

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Shut down.")
	return nil
}

// cmdContext returns the command context, or Background when the command
// runs outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
