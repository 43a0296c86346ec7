package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

func TestStats_Dashboard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	empty, err := f.svc.Stats.Dashboard(ctx, testUser)
	require.NoError(t, err)
	assert.Zero(t, empty.Stats.SessionCount)
	assert.Nil(t, empty.Stats.OverallAccuracy)
	assert.Nil(t, empty.Active)

	exp := f.experiment(t, "yes", "no")

	first := f.session(t, exp)
	for _, ok := range []bool{true, true, false, true} {
		_, _, err := f.svc.Trials.Record(ctx, testUser, first.ID, domain.Trial{DetectedWord: "yes", ConfidenceScore: 90, WasSuccessful: ok})
		require.NoError(t, err)
	}
	_, err = f.svc.Sessions.End(ctx, testUser, first.ID)
	require.NoError(t, err)

	// A session without trials does not count towards accuracy.
	second := f.session(t, exp)
	_, err = f.svc.Sessions.Stop(ctx, testUser, second.ID)
	require.NoError(t, err)

	third := f.session(t, exp)
	for _, ok := range []bool{true, false} {
		_, _, err := f.svc.Trials.Record(ctx, testUser, third.ID, domain.Trial{DetectedWord: "no", ConfidenceScore: 70, WasSuccessful: ok})
		require.NoError(t, err)
	}

	d, err := f.svc.Stats.Dashboard(ctx, testUser)
	require.NoError(t, err)
	assert.EqualValues(t, 3, d.Stats.SessionCount)
	assert.EqualValues(t, 1, d.Stats.CompletedCount)
	assert.EqualValues(t, 1, d.Stats.ActiveSessionCount)
	assert.EqualValues(t, 6, d.Stats.TotalTrials)
	require.NotNil(t, d.Stats.OverallAccuracy)
	assert.InDelta(t, (75.0+50.0)/2, *d.Stats.OverallAccuracy, 1e-9)
	assert.EqualValues(t, 1, d.ExperimentCount)
	require.NotNil(t, d.Active)
	assert.Equal(t, third.ID, d.Active.ID)
	assert.Len(t, d.RecentSessions, 3)
	assert.Equal(t, third.ID, d.RecentSessions[0].ID)
	assert.Len(t, d.RecentResults, 6)
	assert.Equal(t, "no", d.RecentResults[0].DetectedWord)

	other, err := f.svc.Stats.Dashboard(ctx, "user-2")
	require.NoError(t, err)
	assert.Zero(t, other.Stats.SessionCount)
}
