package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

// RecentResultsLimit is the number of results shown on the dashboard.
const RecentResultsLimit = 10

type Trials struct {
	repo    ports.ResultRepository
	events  ports.EventPublisher
	metrics ports.MetricsExporter
	log     *zap.Logger
	now     func() time.Time

	sessionLocks *keyedMutex
}

// Record appends one decode outcome to an active session and returns the
// stored result along with the session's updated statistics.
func (s *Trials) Record(ctx context.Context, userID, sessionID string, trial domain.Trial) (*domain.DecodedResult, *domain.Session, error) {
	trial, err := trial.Normalize()
	if err != nil {
		return nil, nil, err
	}

	unlock := s.sessionLocks.Lock(sessionID)
	defer unlock()

	result := &domain.DecodedResult{
		ID:              newID(),
		UserID:          userID,
		SessionID:       sessionID,
		DetectedWord:    trial.DetectedWord,
		ConfidenceScore: trial.ConfidenceScore,
		WasSuccessful:   trial.WasSuccessful,
		Timestamp:       s.now(),
	}
	session, err := s.repo.Record(ctx, result)
	if err != nil {
		return nil, nil, err
	}

	s.log.Debug("trial recorded",
		zap.String("session_id", sessionID),
		zap.String("word", result.DetectedWord),
		zap.Float64("confidence", result.ConfidenceScore),
		zap.Bool("successful", result.WasSuccessful),
		zap.Int64("total_trials", session.TotalTrials))
	s.metrics.TrialRecorded(ctx, result)

	outcome := "missed"
	if result.WasSuccessful {
		outcome = "matched"
	}
	s.events.Publish(ctx, ports.Event{
		Type:        ports.EventTrialRecorded,
		UserID:      userID,
		Title:       "Trial Recorded",
		Description: fmt.Sprintf("Decoded %q at %.1f%% confidence (%s)", result.DetectedWord, result.ConfidenceScore, outcome),
		SubjectID:   sessionID,
		At:          result.Timestamp,
	})
	return result, session, nil
}

// Results returns the session's results in timestamp order.
func (s *Trials) Results(ctx context.Context, userID, sessionID string) ([]*domain.DecodedResult, error) {
	return s.repo.ListBySession(ctx, userID, sessionID)
}

func (s *Trials) RecentResults(ctx context.Context, userID string, limit int) ([]*domain.RecentResult, error) {
	if limit <= 0 {
		limit = RecentResultsLimit
	}
	return s.repo.ListRecent(ctx, userID, limit)
}
