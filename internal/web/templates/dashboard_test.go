package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, p DashboardPage) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Dashboard(p).Render(context.Background(), &buf))
	return buf.String()
}

func TestDashboard_Empty(t *testing.T) {
	body := render(t, DashboardPage{User: "alice", DefaultVocabulary: []string{"yes", "no"}})

	assert.Contains(t, body, "No active session.")
	assert.Contains(t, body, "No experiments yet.")
	assert.Contains(t, body, "No sessions yet.")
	assert.Contains(t, body, "No decoded results yet.")
	assert.Contains(t, body, `value="yes, no"`)
	assert.Contains(t, body, `href="/api/export/sessions?format=csv"`)
	assert.Contains(t, body, `id="stats"`)
}

func TestDashboard_EscapesAndLinks(t *testing.T) {
	body := render(t, DashboardPage{
		User:   `<b>eve</b>`,
		Active: &Session{ID: "s-1", Name: `"quoted" run`, ExperimentTitle: "A & B"},
		Experiments: []Experiment{
			{ID: "e-1", Title: "<script>", Vocabulary: []string{"yes"}, Status: "active", AcceptsSession: true},
			{ID: "e-2", Title: "Closed", Vocabulary: []string{"no"}, Status: "completed"},
		},
		RecentResults: []Result{
			{Word: "yes", Confidence: "91.0%", Successful: true},
			{Word: "no", Confidence: "40.0%"},
		},
	})

	assert.Contains(t, body, "&lt;b&gt;eve&lt;/b&gt;")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "&#34;quoted&#34; run")
	assert.Contains(t, body, "A &amp; B")
	assert.Contains(t, body, `hx-post="/api/sessions/s-1/results"`)
	assert.Contains(t, body, `hx-post="/api/sessions/s-1/stop"`)
	assert.Contains(t, body, `hx-delete="/api/experiments/e-2"`)
	assert.Contains(t, body, `data-status="completed"`)
	assert.Contains(t, body, `<li data-outcome="hit"><strong>yes</strong>`)
	assert.Contains(t, body, `<li data-outcome="miss"><strong>no</strong>`)
	assert.Equal(t, 1, bytes.Count([]byte(body), []byte(`name="experiment_id"`)), "start form only for open experiments")
}

func TestStatsCards(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, StatsCards(Stats{ExperimentCount: "2", OverallAccuracy: "62.5%"}).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), `<div class="label">Overall accuracy</div><div class="value">62.5%</div>`)
	assert.Equal(t, 6, bytes.Count(buf.Bytes(), []byte(`class="card"`)))
}
