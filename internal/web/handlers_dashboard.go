package web

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/service"
	"github.com/emiliopalmerini/bcilab/internal/util"
	"github.com/emiliopalmerini/bcilab/internal/web/templates"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := UserID(r)

	var (
		dash *service.Dashboard
		exps []*domain.Experiment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dash, err = s.svc.Stats.Dashboard(gctx, user)
		return err
	})
	g.Go(func() error {
		var err error
		exps, err = s.svc.Experiments.List(gctx, user)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	vocab := s.opts.Vocabulary
	if len(vocab) == 0 {
		vocab = domain.DefaultVocabulary().Words()
	}

	page := templates.DashboardPage{
		User:              user,
		Stats:             buildStats(dash),
		Experiments:       buildExperiments(exps),
		RecentSessions:    buildSessions(dash.RecentSessions, exps),
		RecentResults:     buildResults(dash.RecentResults),
		DefaultVocabulary: vocab,
	}
	if dash.Active != nil {
		active := buildSessions([]*domain.Session{dash.Active}, exps)[0]
		page.Active = &active
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(page).Render(ctx, w); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	dash, err := s.svc.Stats.Dashboard(r.Context(), UserID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsView(dash))
}

func buildStats(d *service.Dashboard) templates.Stats {
	return templates.Stats{
		SessionCount:    util.FormatNumber(d.Stats.SessionCount),
		CompletedCount:  util.FormatNumber(d.Stats.CompletedCount),
		ActiveCount:     util.FormatNumber(d.Stats.ActiveSessionCount),
		TotalTrials:     util.FormatNumber(d.Stats.TotalTrials),
		OverallAccuracy: util.FormatAccuracy(d.Stats.OverallAccuracy),
		ExperimentCount: util.FormatNumber(d.ExperimentCount),
	}
}

func buildExperiments(exps []*domain.Experiment) []templates.Experiment {
	out := make([]templates.Experiment, len(exps))
	for i, e := range exps {
		out[i] = templates.Experiment{
			ID:             e.ID,
			Title:          e.Title,
			Vocabulary:     e.Vocabulary,
			Status:         string(e.Status),
			CreatedAt:      util.FormatDateTime(e.CreatedAt),
			AcceptsSession: e.Status.AcceptsSessions(),
		}
		if e.Description != nil {
			out[i].Description = *e.Description
		}
	}
	return out
}

func buildSessions(sessions []*domain.Session, exps []*domain.Experiment) []templates.Session {
	titles := make(map[string]string, len(exps))
	for _, e := range exps {
		titles[e.ID] = e.Title
	}

	out := make([]templates.Session, len(sessions))
	for i, s := range sessions {
		out[i] = templates.Session{
			ID:              s.ID,
			Name:            s.Name,
			ExperimentTitle: titles[s.ExperimentID],
			Status:          string(s.Status),
			Trials:          util.FormatNumber(s.TotalTrials),
			Successful:      util.FormatNumber(s.SuccessfulTrials),
			Accuracy:        util.FormatAccuracy(s.AccuracyRate),
			StartedAt:       util.FormatDateTime(s.StartTime),
			Duration:        util.FormatDuration(s.StartTime, s.EndTime),
			Active:          s.IsActive(),
		}
	}
	return out
}

func buildResults(results []*domain.RecentResult) []templates.Result {
	out := make([]templates.Result, len(results))
	for i, r := range results {
		out[i] = templates.Result{
			Word:            r.DetectedWord,
			Confidence:      util.FormatConfidence(r.ConfidenceScore),
			Successful:      r.WasSuccessful,
			SessionName:     r.SessionName,
			ExperimentTitle: r.ExperimentTitle,
			At:              util.FormatDateTime(r.Timestamp),
		}
	}
	return out
}
