package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

type Stats struct {
	experiments ports.ExperimentRepository
	sessions    ports.SessionRepository
	results     ports.ResultRepository
}

// Dashboard is everything the dashboard page shows for one user.
type Dashboard struct {
	Stats           domain.DashboardStats
	ExperimentCount int64
	Active          *domain.Session
	RecentSessions  []*domain.Session
	RecentResults   []*domain.RecentResult
}

// Dashboard loads the caller's rollup. The independent reads run
// concurrently.
func (s *Stats) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	var (
		d        Dashboard
		sessions []*domain.Session
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.sessions.List(gctx, ports.ListSessionsOptions{UserID: userID})
		return err
	})
	g.Go(func() error {
		var err error
		d.RecentResults, err = s.results.ListRecent(gctx, userID, RecentResultsLimit)
		return err
	})
	g.Go(func() error {
		var err error
		d.ExperimentCount, err = s.experiments.Count(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.Stats = domain.Aggregate(sessions)
	// Sessions are listed newest first.
	d.RecentSessions = sessions[:min(len(sessions), RecentSessionsLimit)]
	for _, sess := range sessions {
		if sess.IsActive() {
			d.Active = sess
			break
		}
	}
	return &d, nil
}
