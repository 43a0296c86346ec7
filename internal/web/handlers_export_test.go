package web

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/export"
)

// seedExport records two trials in an ended session and returns it.
func seedExport(t *testing.T, s *Server) *domain.Session {
	t.Helper()
	ctx := context.Background()

	exp, err := s.svc.Experiments.Create(ctx, testUser, "Yes/No", "", []string{"yes", "no"})
	require.NoError(t, err)
	sess, err := s.svc.Sessions.Start(ctx, testUser, exp.ID, "Run 1")
	require.NoError(t, err)
	for _, trial := range []domain.Trial{
		{DetectedWord: "yes", ConfidenceScore: 91, WasSuccessful: true},
		{DetectedWord: "no", ConfidenceScore: 64.5},
	} {
		_, _, err := s.svc.Trials.Record(ctx, testUser, sess.ID, trial)
		require.NoError(t, err)
	}
	ended, err := s.svc.Sessions.End(ctx, testUser, sess.ID)
	require.NoError(t, err)
	return ended
}

func TestAPI_ExportSessions(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()
	sess := seedExport(t, s)

	rec := do(t, h, http.MethodGet, "/api/export/sessions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=sessions.json", rec.Header().Get("Content-Disposition"))

	rows := decode[[]export.Session](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, sess.ID, rows[0].ID)
	assert.Equal(t, "completed", rows[0].Status)
	assert.EqualValues(t, 2, rows[0].TotalTrials)
	require.NotNil(t, rows[0].AccuracyRate)
	assert.InDelta(t, 50.0, *rows[0].AccuracyRate, 0.001)

	rec = do(t, h, http.MethodGet, "/api/export/sessions?format=csv", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "accuracy_rate", records[0][len(records[0])-1])
	assert.Equal(t, "50.00", records[1][len(records[1])-1])
}

func TestAPI_ExportResults(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()
	sess := seedExport(t, s)

	rec := do(t, h, http.MethodGet, "/api/export/results?format=csv&session="+sess.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"yes", "91.00", "true"}, records[1][4:7])
	assert.Equal(t, []string{"no", "64.50", "false"}, records[2][4:7])

	rec = do(t, h, http.MethodGet, "/api/export/results?experiment="+sess.ExperimentID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rows := decode[[]export.Result](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "Run 1", rows[0].SessionName)
}

func TestAPI_ExportScopedToCaller(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()
	sess := seedExport(t, s)
	other := map[string]string{UserHeader: "mallory"}

	rec := do(t, h, http.MethodGet, "/api/export/sessions", "", other)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]export.Session](t, rec))

	rec = do(t, h, http.MethodGet, "/api/export/results?session="+sess.ID, "", other)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ExportRejectsBadInput(t *testing.T) {
	s, _ := testServer(t)
	h := s.Handler()

	for _, path := range []string{
		"/api/export/sessions?format=xml",
		"/api/export/results?limit=0",
	} {
		rec := do(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
