package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

func TestSessions_StartAndEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	exp := f.experiment(t)
	s := f.session(t, exp)
	assert.True(t, s.IsActive())
	assert.Zero(t, s.TotalTrials)
	assert.Nil(t, s.AccuracyRate)

	active, err := f.svc.Sessions.Active(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, s.ID, active.ID)

	ended, err := f.svc.Sessions.End(ctx, testUser, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, ended.Status)
	require.NotNil(t, ended.EndTime)
	assert.False(t, ended.EndTime.Before(ended.StartTime))

	_, err = f.svc.Sessions.Active(ctx, testUser)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Sessions.End(ctx, testUser, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Equal(t, []ports.EventType{
		ports.EventExperimentCreated,
		ports.EventSessionStarted,
		ports.EventSessionEnded,
	}, f.events.types())
	assert.Equal(t, 1, f.metrics.started)
	assert.Equal(t, 1, f.metrics.finished)
}

func TestSessions_Stop(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	s := f.session(t, f.experiment(t))
	stopped, err := f.svc.Sessions.Stop(ctx, testUser, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStopped, stopped.Status)
	assert.Contains(t, f.events.types(), ports.EventSessionStopped)

	_, err = f.svc.Sessions.Stop(ctx, testUser, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessions_StartRejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	exp := f.experiment(t)

	tests := []struct {
		name         string
		experimentID string
		sessionName  string
		want         error
	}{
		{"blank experiment", " ", "Run", domain.ErrInvalidState},
		{"blank name", exp.ID, "  ", domain.ErrInvalidState},
		{"unknown experiment", "missing", "Run", domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Sessions.Start(ctx, testUser, tt.experimentID, tt.sessionName)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.svc.Sessions.Start(ctx, "user-2", exp.ID, "Run")
	assert.ErrorIs(t, err, domain.ErrNotFound, "experiments of other users are invisible")

	for _, typ := range f.events.types()[1:] {
		assert.Equal(t, ports.EventSessionStartFailed, typ)
	}
}

func TestSessions_ConcurrentStartsLeaveOneActive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	exp := f.experiment(t)

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Sessions.Start(ctx, testUser, exp.ID, "Run")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidState)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	sessions, err := f.svc.Sessions.ListByExperiment(ctx, testUser, exp.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSessions_ListRecent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	exp := f.experiment(t)

	for range 7 {
		s := f.session(t, exp)
		_, err := f.svc.Sessions.End(ctx, testUser, s.ID)
		require.NoError(t, err)
	}

	recent, err := f.svc.Sessions.ListRecent(ctx, testUser, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}
