package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/bcilab/internal/adapters/turso"
	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/migrate"
	"github.com/emiliopalmerini/bcilab/internal/ports"
	"github.com/emiliopalmerini/bcilab/internal/service"
)

const testUser = "user-1"

type recordedEvents struct {
	mu     sync.Mutex
	events []ports.Event
}

func (r *recordedEvents) Publish(_ context.Context, ev ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordedEvents) types() []ports.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type countingMetrics struct {
	mu                        sync.Mutex
	started, finished, trials int
}

func (m *countingMetrics) SessionStarted(context.Context, *domain.Session) {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
}

func (m *countingMetrics) SessionFinished(context.Context, *domain.Session) {
	m.mu.Lock()
	m.finished++
	m.mu.Unlock()
}

func (m *countingMetrics) TrialRecorded(context.Context, *domain.DecodedResult) {
	m.mu.Lock()
	m.trials++
	m.mu.Unlock()
}

func (m *countingMetrics) Close(context.Context) error { return nil }

type fixture struct {
	svc     *service.Services
	events  *recordedEvents
	metrics *countingMetrics
}

func setup(t *testing.T) *fixture {
	t.Helper()
	return setupWithClock(t, nil)
}

// setupWithClock builds the services over a fresh database. A nil clock
// means time.Now.
func setupWithClock(t *testing.T, clock func() time.Time) *fixture {
	t.Helper()

	ctx := context.Background()
	db, err := turso.NewMemoryDB(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate.RunAll(ctx, db.DB))

	repos := turso.NewRepositories(db.DB)
	f := &fixture{events: &recordedEvents{}, metrics: &countingMetrics{}}
	f.svc = service.New(service.Deps{
		Experiments: repos.Experiments,
		Sessions:    repos.Sessions,
		Results:     repos.Results,
		Events:      f.events,
		Metrics:     f.metrics,
		Clock:       clock,
	})
	return f
}

func (f *fixture) experiment(t *testing.T, words ...string) *domain.Experiment {
	t.Helper()
	if len(words) == 0 {
		words = []string{"yes", "no"}
	}
	exp, err := f.svc.Experiments.Create(context.Background(), testUser, "Yes/No", "binary choice", words)
	require.NoError(t, err)
	return exp
}

func (f *fixture) session(t *testing.T, exp *domain.Experiment) *domain.Session {
	t.Helper()
	s, err := f.svc.Sessions.Start(context.Background(), testUser, exp.ID, "Run 1")
	require.NoError(t, err)
	return s
}
