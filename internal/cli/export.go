package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data to JSON or CSV",
	Long: `Export sessions or decoded results for external analysis.

Examples:
  bcilab export sessions --format json --output sessions.json
  bcilab export sessions --format csv --experiment <id>
  bcilab export results --format csv --session <id> -o run1.csv`,
}

var exportSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Export sessions with their statistics",
	RunE:  runExportSessions,
}

var exportResultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Export decoded results",
	RunE:  runExportResults,
}

// Flags
var (
	exportFormat     string
	exportOutput     string
	exportExperiment string
	exportSession    string
	exportLimit      int
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportSessionsCmd)
	exportCmd.AddCommand(exportResultsCmd)

	for _, c := range []*cobra.Command{exportSessionsCmd, exportResultsCmd} {
		c.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json, csv")
		c.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
		c.Flags().StringVarP(&exportExperiment, "experiment", "e", "", "Only sessions of this experiment")
		c.Flags().IntVarP(&exportLimit, "limit", "n", export.DefaultLimit, "Maximum sessions to export")
	}
	exportResultsCmd.Flags().StringVar(&exportSession, "session", "", "Only results of this session")
}

func runExportSessions(cmd *cobra.Command, args []string) error {
	return runExport(cmd, "sessions", func(e *export.Exporter, app *AppContext, q export.Query, f export.Format, w io.Writer) (int, error) {
		rows, err := e.Sessions(cmd.Context(), app.User, q)
		if err != nil {
			return 0, err
		}
		return len(rows), export.WriteSessions(w, f, rows)
	})
}

func runExportResults(cmd *cobra.Command, args []string) error {
	return runExport(cmd, "results", func(e *export.Exporter, app *AppContext, q export.Query, f export.Format, w io.Writer) (int, error) {
		rows, err := e.Results(cmd.Context(), app.User, q)
		if err != nil {
			return 0, err
		}
		return len(rows), export.WriteResults(w, f, rows)
	})
}

type exportFunc func(e *export.Exporter, app *AppContext, q export.Query, f export.Format, w io.Writer) (int, error)

func runExport(cmd *cobra.Command, what string, write exportFunc) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	app, release, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	output := cmd.OutOrStdout()
	if exportOutput != "" {
		file, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		output = file
	}

	q := export.Query{ExperimentID: exportExperiment, SessionID: exportSession, Limit: exportLimit}
	n, err := write(export.New(app.Services.Sessions, app.Services.Trials), app, q, format, output)
	if err != nil {
		return err
	}

	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d %s to %s\n", n, what, exportOutput)
	}
	return nil
}
