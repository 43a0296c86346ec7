package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/adapters/otel"
	"github.com/emiliopalmerini/bcilab/internal/adapters/turso"
	"github.com/emiliopalmerini/bcilab/internal/config"
	"github.com/emiliopalmerini/bcilab/internal/migrate"
)

const testUser = "tester"

// testApp installs an AppContext over a migrated in-memory database as the
// override returned by openApp.
func testApp(t *testing.T) *AppContext {
	t.Helper()

	ctx := context.Background()
	db, err := turso.NewMemoryDB(ctx)
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := migrate.RunAll(ctx, db.DB); err != nil {
		db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cfg := &config.Config{
		User: testUser,
		Decoder: config.Decoder{
			Interval:      time.Millisecond,
			Threshold:     80,
			MinConfidence: 60,
		},
		Server: config.Server{Port: 8080, ShutdownTimeout: time.Second},
	}
	app := newAppContext(cfg, zap.NewNop(), db, otel.NewNoOpExporter())

	testAppOverride = app
	t.Cleanup(func() {
		testAppOverride = nil
		if err := app.Close(); err != nil {
			t.Errorf("close app: %v", err)
		}
	})
	return app
}

// runCLI executes the root command with args and returns its combined
// output. Flag values are reset first since cobra keeps them between runs.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("bcilab %v: %v\n%s", args, err, out)
	}
	return out
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
