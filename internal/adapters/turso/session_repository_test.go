package turso_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emiliopalmerini/bcilab/internal/adapters/turso"
	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

func TestSessionRepository_StartPromotesDraft(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	exp := createExperiment(t, repos, testUser)
	s := startSession(t, repos, exp)

	got, err := repos.Sessions.GetByID(ctx, testUser, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.SessionActive || got.EndTime != nil {
		t.Errorf("session = %s end=%v, want active with no end time", got.Status, got.EndTime)
	}
	if got.TotalTrials != 0 || got.SuccessfulTrials != 0 || got.AccuracyRate != nil {
		t.Errorf("counters = %d/%d/%v, want 0/0/nil", got.TotalTrials, got.SuccessfulTrials, got.AccuracyRate)
	}

	updated, err := repos.Experiments.GetByID(ctx, testUser, exp.ID)
	if err != nil {
		t.Fatalf("GetByID experiment: %v", err)
	}
	if updated.Status != domain.ExperimentActive {
		t.Errorf("experiment status = %q, want active", updated.Status)
	}
}

func TestSessionRepository_OneActivePerUser(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	exp := createExperiment(t, repos, testUser)
	first := startSession(t, repos, exp)

	second := newSession(exp)
	if err := repos.Sessions.Start(ctx, second); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second Start: err = %v, want invalid state", err)
	}

	active, err := repos.Sessions.GetActive(ctx, testUser)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if active.ID != first.ID {
		t.Errorf("active = %s, want %s", active.ID, first.ID)
	}

	// Another user is unaffected.
	other := createExperiment(t, repos, "user-2")
	startSession(t, repos, other)
}

func TestSessionRepository_StartRejectsClosedExperiment(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	exp := createExperiment(t, repos, testUser)
	if _, err := repos.Experiments.UpdateStatus(ctx, testUser, exp.ID, domain.ExperimentCompleted, time.Now()); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := repos.Sessions.Start(ctx, newSession(exp)); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("Start on completed experiment: err = %v, want invalid state", err)
	}

	missing := newSession(exp)
	missing.ExperimentID = "missing"
	if err := repos.Sessions.Start(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Start on missing experiment: err = %v, want not found", err)
	}
}

func TestSessionRepository_Finish(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	exp := createExperiment(t, repos, testUser)
	s := startSession(t, repos, exp)
	end := s.StartTime.Add(time.Minute)

	got, err := repos.Sessions.Finish(ctx, testUser, s.ID, domain.SessionStopped, end)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got.Status != domain.SessionStopped {
		t.Errorf("Status = %q, want stopped", got.Status)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("EndTime = %v, want %v", got.EndTime, end)
	}

	if _, err := repos.Sessions.Finish(ctx, testUser, s.ID, domain.SessionCompleted, end); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("second Finish: err = %v, want invalid state", err)
	}
	if _, err := repos.Sessions.Finish(ctx, testUser, "missing", domain.SessionCompleted, end); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Finish missing: err = %v, want not found", err)
	}
	if _, err := repos.Sessions.GetActive(ctx, testUser); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetActive after finish: err = %v, want not found", err)
	}

	// The slot is free again.
	startSession(t, repos, exp)
}

func TestSessionRepository_List(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	expA := createExperiment(t, repos, testUser)
	expB := createExperiment(t, repos, testUser)

	var ids []string
	for _, exp := range []*domain.Experiment{expA, expB, expA} {
		s := startSession(t, repos, exp)
		if _, err := repos.Sessions.Finish(ctx, testUser, s.ID, domain.SessionCompleted, time.Now()); err != nil {
			t.Fatalf("Finish: %v", err)
		}
		ids = append(ids, s.ID)
	}

	all, err := repos.Sessions.List(ctx, ports.ListSessionsOptions{UserID: testUser})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != ids[2] {
		t.Errorf("List returned %d sessions, newest %v; want 3, newest %s", len(all), all, ids[2])
	}

	byExp, err := repos.Sessions.List(ctx, ports.ListSessionsOptions{UserID: testUser, ExperimentID: &expA.ID})
	if err != nil {
		t.Fatalf("List by experiment: %v", err)
	}
	if len(byExp) != 2 {
		t.Errorf("List by experiment returned %d sessions, want 2", len(byExp))
	}

	limited, err := repos.Sessions.List(ctx, ports.ListSessionsOptions{UserID: testUser, Limit: 1})
	if err != nil {
		t.Fatalf("List with limit: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("List with limit returned %d sessions, want 1", len(limited))
	}
}
