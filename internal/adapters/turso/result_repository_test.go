package turso_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/emiliopalmerini/bcilab/internal/adapters/turso"
	"github.com/emiliopalmerini/bcilab/internal/domain"
)

func TestResultRepository_RecordUpdatesCounters(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	exp := createExperiment(t, repos, testUser, "yes", "no")
	s := startSession(t, repos, exp)

	trials := []struct {
		word string
		conf float64
		ok   bool
	}{
		{"yes", 92, true},
		{"no", 71, false},
		{"yes", 88, true},
	}
	var got *domain.Session
	for _, tr := range trials {
		var err error
		if got, err = repos.Results.Record(ctx, newResult(s, tr.word, tr.conf, tr.ok)); err != nil {
			t.Fatalf("Record(%s): %v", tr.word, err)
		}
	}

	if got.TotalTrials != 3 || got.SuccessfulTrials != 2 {
		t.Errorf("counters = %d/%d, want 3/2", got.TotalTrials, got.SuccessfulTrials)
	}
	if got.AccuracyRate == nil || math.Abs(*got.AccuracyRate-66.6667) > 0.01 {
		t.Errorf("AccuracyRate = %v, want ~66.67", got.AccuracyRate)
	}

	results, err := repos.Results.ListBySession(ctx, testUser, s.ID)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("ListBySession returned %d results, want 3", len(results))
	}
	for i, tr := range trials {
		if results[i].DetectedWord != tr.word || results[i].WasSuccessful != tr.ok {
			t.Errorf("results[%d] = %s/%t, want %s/%t", i, results[i].DetectedWord, results[i].WasSuccessful, tr.word, tr.ok)
		}
	}

	ended, err := repos.Sessions.Finish(ctx, testUser, s.ID, domain.SessionCompleted, s.StartTime)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if ended.TotalTrials != 3 || *ended.AccuracyRate != *got.AccuracyRate {
		t.Errorf("statistics changed on finish: %d trials, %v accuracy", ended.TotalTrials, *ended.AccuracyRate)
	}
}

func TestResultRepository_RecordRejections(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	exp := createExperiment(t, repos, testUser, "yes", "no")
	s := startSession(t, repos, exp)
	if _, err := repos.Results.Record(ctx, newResult(s, "yes", 90, true)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	t.Run("word outside vocabulary", func(t *testing.T) {
		_, err := repos.Results.Record(ctx, newResult(s, "water", 90, true))
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("err = %v, want validation", err)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		res := newResult(s, "yes", 90, true)
		res.SessionID = "missing"
		if _, err := repos.Results.Record(ctx, res); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("other user's session", func(t *testing.T) {
		res := newResult(s, "yes", 90, true)
		res.UserID = "user-2"
		if _, err := repos.Results.Record(ctx, res); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("ended session", func(t *testing.T) {
		if _, err := repos.Sessions.Finish(ctx, testUser, s.ID, domain.SessionCompleted, s.StartTime); err != nil {
			t.Fatalf("Finish: %v", err)
		}
		if _, err := repos.Results.Record(ctx, newResult(s, "no", 80, false)); !errors.Is(err, domain.ErrInvalidState) {
			t.Errorf("err = %v, want invalid state", err)
		}
	})

	if n := countRows(t, db, "decoded_results"); n != 1 {
		t.Errorf("decoded_results has %d rows, want 1", n)
	}
	got, err := repos.Sessions.GetByID(ctx, testUser, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TotalTrials != 1 || got.SuccessfulTrials != 1 {
		t.Errorf("counters = %d/%d, want 1/1", got.TotalTrials, got.SuccessfulTrials)
	}
}

func TestResultRepository_ConcurrentRecords(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	exp := createExperiment(t, repos, testUser)
	s := startSession(t, repos, exp)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(ok bool) {
			defer wg.Done()
			if _, err := repos.Results.Record(ctx, newResult(s, "yes", 85, ok)); err != nil {
				errs <- err
			}
		}(i%2 == 0)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Record: %v", err)
	}

	got, err := repos.Sessions.GetByID(ctx, testUser, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TotalTrials != n || got.SuccessfulTrials != n/2 {
		t.Errorf("counters = %d/%d, want %d/%d", got.TotalTrials, got.SuccessfulTrials, n, n/2)
	}
	if got.AccuracyRate == nil || math.Abs(*got.AccuracyRate-50) > 1e-9 {
		t.Errorf("AccuracyRate = %v, want 50", got.AccuracyRate)
	}
}

func TestResultRepository_ListRecent(t *testing.T) {
	db := testDB(t)
	repos := turso.NewRepositories(db)
	ctx := context.Background()

	exp := createExperiment(t, repos, testUser)
	s := startSession(t, repos, exp)
	for _, w := range []string{"yes", "no", "yes"} {
		if _, err := repos.Results.Record(ctx, newResult(s, w, 90, true)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := repos.Results.ListRecent(ctx, testUser, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("ListRecent returned %d results, want 2", len(recent))
	}
	if recent[0].DetectedWord != "yes" || recent[1].DetectedWord != "no" {
		t.Errorf("ListRecent order = [%s %s], want [yes no]", recent[0].DetectedWord, recent[1].DetectedWord)
	}
	if recent[0].SessionName != s.Name || recent[0].ExperimentTitle != exp.Title {
		t.Errorf("joined names = %q/%q, want %q/%q", recent[0].SessionName, recent[0].ExperimentTitle, s.Name, exp.Title)
	}

	if _, err := repos.Results.ListBySession(ctx, "user-2", s.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ListBySession from other user: err = %v, want not found", err)
	}
}
