package turso_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/bcilab/internal/adapters/turso"
	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/migrate"
)

const testUser = "user-1"

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := turso.NewMemoryDB(ctx)
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := migrate.RunAll(ctx, db.DB); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func createExperiment(t *testing.T, repos *turso.Repositories, userID string, words ...string) *domain.Experiment {
	t.Helper()
	if len(words) == 0 {
		words = []string{"yes", "no"}
	}
	exp, err := domain.NewExperiment(uuid.NewString(), userID, "Yes/No", "", words, time.Now())
	if err != nil {
		t.Fatalf("NewExperiment: %v", err)
	}
	if err := repos.Experiments.Create(context.Background(), exp); err != nil {
		t.Fatalf("Create experiment: %v", err)
	}
	return exp
}

func startSession(t *testing.T, repos *turso.Repositories, exp *domain.Experiment) *domain.Session {
	t.Helper()
	s := newSession(exp)
	if err := repos.Sessions.Start(context.Background(), s); err != nil {
		t.Fatalf("Start session: %v", err)
	}
	return s
}

func newSession(exp *domain.Experiment) *domain.Session {
	return &domain.Session{
		ID:           uuid.NewString(),
		UserID:       exp.UserID,
		ExperimentID: exp.ID,
		Name:         "Session",
		StartTime:    time.Now(),
		Status:       domain.SessionActive,
	}
}

func newResult(s *domain.Session, word string, confidence float64, ok bool) *domain.DecodedResult {
	return &domain.DecodedResult{
		ID:              uuid.NewString(),
		UserID:          s.UserID,
		SessionID:       s.ID,
		DetectedWord:    word,
		ConfidenceScore: confidence,
		WasSuccessful:   ok,
		Timestamp:       time.Now(),
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
