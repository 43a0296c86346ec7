package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/bcilab/internal/config"
	"github.com/emiliopalmerini/bcilab/internal/logging"
	"github.com/emiliopalmerini/bcilab/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  bcilab migrate      # Run all pending migrations
  bcilab migrate 1    # Migrate to version 1
  bcilab migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	out := cmd.OutOrStdout()

	targetVersion := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		targetVersion = v
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = logging.Component(log, "migrate")

	db, err := openDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := migrate.EnsureMigrationsTable(ctx, db.DB); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, dirty, err := migrate.GetCurrentVersion(ctx, db.DB)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", currentVersion)
	}

	allMigrations, err := migrate.LoadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	fmt.Fprintf(out, "Current version: %d\n", currentVersion)

	switch {
	case targetVersion < 0:
		applied, err := migrate.MigrateUp(ctx, db.DB, log, allMigrations, currentVersion)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Applied %d migration(s)\n", applied)
	case targetVersion > currentVersion:
		if err := migrate.MigrateUpTo(ctx, db.DB, log, allMigrations, currentVersion, targetVersion); err != nil {
			return err
		}
		fmt.Fprintf(out, "Now at version: %d\n", targetVersion)
	case targetVersion < currentVersion:
		if err := migrate.MigrateDownTo(ctx, db.DB, log, allMigrations, currentVersion, targetVersion); err != nil {
			return err
		}
		fmt.Fprintf(out, "Now at version: %d\n", targetVersion)
	default:
		fmt.Fprintln(out, "Already at target version")
	}
	return nil
}
