package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

// RecentSessionsLimit is the number of sessions shown on the dashboard.
const RecentSessionsLimit = 5

type Sessions struct {
	repo    ports.SessionRepository
	events  ports.EventPublisher
	metrics ports.MetricsExporter
	log     *zap.Logger
	now     func() time.Time

	userLocks    *keyedMutex
	sessionLocks *keyedMutex
}

// Start opens a session against experimentID. A user has at most one
// active session.
func (s *Sessions) Start(ctx context.Context, userID, experimentID, name string) (*domain.Session, error) {
	experimentID = strings.TrimSpace(experimentID)
	name = strings.TrimSpace(name)
	if experimentID == "" || name == "" {
		return nil, s.startFailed(ctx, userID, domain.InvalidState("experiment and session name are required"))
	}

	unlock := s.userLocks.Lock(userID)
	defer unlock()

	session := &domain.Session{
		ID:           newID(),
		UserID:       userID,
		ExperimentID: experimentID,
		Name:         name,
		StartTime:    s.now(),
		Status:       domain.SessionActive,
	}
	if err := s.repo.Start(ctx, session); err != nil {
		return nil, s.startFailed(ctx, userID, err)
	}

	s.log.Info("session started",
		zap.String("session_id", session.ID),
		zap.String("experiment_id", experimentID),
		zap.String("user_id", userID))
	s.metrics.SessionStarted(ctx, session)
	s.events.Publish(ctx, ports.Event{
		Type:        ports.EventSessionStarted,
		UserID:      userID,
		Title:       "Session Started",
		Description: fmt.Sprintf("Recording session %q has begun", session.Name),
		SubjectID:   session.ID,
		At:          s.now(),
	})
	return session, nil
}

func (s *Sessions) startFailed(ctx context.Context, userID string, err error) error {
	s.log.Warn("session start rejected", zap.String("user_id", userID), zap.Error(err))
	s.events.Publish(ctx, ports.Event{
		Type:        ports.EventSessionStartFailed,
		UserID:      userID,
		Title:       "Error",
		Description: "Failed to start session",
		Failed:      true,
		At:          s.now(),
	})
	return err
}

// End completes an active session. Its statistics are frozen.
func (s *Sessions) End(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return s.finish(ctx, userID, sessionID, domain.SessionCompleted)
}

// Stop aborts an active session. Its statistics are frozen.
func (s *Sessions) Stop(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return s.finish(ctx, userID, sessionID, domain.SessionStopped)
}

func (s *Sessions) finish(ctx context.Context, userID, sessionID string, status domain.SessionStatus) (*domain.Session, error) {
	unlock := s.sessionLocks.Lock(sessionID)
	defer unlock()

	session, err := s.repo.Finish(ctx, userID, sessionID, status, s.now())
	if err != nil {
		return nil, err
	}

	s.log.Info("session finished",
		zap.String("session_id", session.ID),
		zap.String("status", string(status)),
		zap.Int64("total_trials", session.TotalTrials),
		zap.Int64("successful_trials", session.SuccessfulTrials))
	s.metrics.SessionFinished(ctx, session)

	ev := ports.Event{
		Type:        ports.EventSessionEnded,
		UserID:      userID,
		Title:       "Session Ended",
		Description: fmt.Sprintf("Recording session %q has been completed", session.Name),
		SubjectID:   session.ID,
		At:          s.now(),
	}
	if status == domain.SessionStopped {
		ev.Type = ports.EventSessionStopped
		ev.Title = "Session Stopped"
		ev.Description = fmt.Sprintf("Recording session %q has been stopped", session.Name)
	}
	s.events.Publish(ctx, ev)
	return session, nil
}

// Active returns the caller's active session or a not found error.
func (s *Sessions) Active(ctx context.Context, userID string) (*domain.Session, error) {
	return s.repo.GetActive(ctx, userID)
}

func (s *Sessions) Get(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	return s.repo.GetByID(ctx, userID, sessionID)
}

func (s *Sessions) ListByExperiment(ctx context.Context, userID, experimentID string) ([]*domain.Session, error) {
	return s.repo.List(ctx, ports.ListSessionsOptions{UserID: userID, ExperimentID: &experimentID})
}

func (s *Sessions) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.Session, error) {
	if limit <= 0 {
		limit = RecentSessionsLimit
	}
	return s.repo.List(ctx, ports.ListSessionsOptions{UserID: userID, Limit: limit})
}
