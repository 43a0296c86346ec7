package decoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

const (
	DefaultInterval  = 2 * time.Second
	DefaultThreshold = 80.0
)

// Recorder stores one trial for a session.
type Recorder interface {
	Record(ctx context.Context, userID, sessionID string, trial domain.Trial) (*domain.DecodedResult, *domain.Session, error)
}

// Runner polls a DecisionSource on a fixed interval and records every
// decision as a trial of one session.
type Runner struct {
	Source   ports.DecisionSource
	Recorder Recorder
	Logger   *zap.Logger

	Interval time.Duration
	// Threshold is the confidence a decision must exceed to succeed.
	Threshold float64
	// Target, when set, is the only word that counts as a success.
	Target string
	// MaxTrials stops the run after that many recorded trials. Zero means
	// run until the context is cancelled or the session ends.
	MaxTrials int
	// Decisions, when non-nil, receives every decision the source produces.
	Decisions chan<- domain.Decision
}

// Summary counts what a run did.
type Summary struct {
	Trials     int
	Successful int
	Skipped    int
	// Session is the session state after the last recorded trial.
	Session *domain.Session
}

// Successful reports whether d counts as a successful trial.
func (r *Runner) Successful(d domain.Decision) bool {
	if d.Confidence <= r.Threshold {
		return false
	}
	return r.Target == "" || domain.NormalizeWord(d.Word) == domain.NormalizeWord(r.Target)
}

// Run decodes into sessionID until ctx is cancelled, MaxTrials is reached
// or the session is no longer active. Cancellation and a session ended
// elsewhere are normal stops and return a nil error.
func (r *Runner) Run(ctx context.Context, userID, sessionID string, vocabulary []string) (Summary, error) {
	var sum Summary
	if r.Source == nil || r.Recorder == nil {
		return sum, fmt.Errorf("decoder runner needs a source and a recorder")
	}
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("session_id", sessionID))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return sum, nil
		case <-ticker.C:
		}

		d, err := r.Source.Next(ctx, vocabulary)
		if err != nil {
			if ctx.Err() != nil {
				return sum, nil
			}
			return sum, fmt.Errorf("decision source: %w", err)
		}
		if !r.emit(ctx, d) {
			return sum, nil
		}
		if d.None() {
			sum.Skipped++
			continue
		}

		trial := domain.Trial{
			DetectedWord:    d.Word,
			ConfidenceScore: d.Confidence,
			WasSuccessful:   r.Successful(d),
		}
		_, session, err := r.Recorder.Record(ctx, userID, sessionID, trial)
		switch {
		case errors.Is(err, domain.ErrInvalidState):
			log.Info("session no longer active, stopping decoder", zap.Int("trials", sum.Trials))
			return sum, nil
		case err != nil:
			if ctx.Err() != nil {
				return sum, nil
			}
			return sum, fmt.Errorf("record trial: %w", err)
		}

		sum.Trials++
		if trial.WasSuccessful {
			sum.Successful++
		}
		sum.Session = session
		log.Debug("decision recorded",
			zap.String("word", d.Word),
			zap.Float64("confidence", d.Confidence),
			zap.Bool("successful", trial.WasSuccessful))

		if r.MaxTrials > 0 && sum.Trials >= r.MaxTrials {
			return sum, nil
		}
	}
}

// emit forwards d to the Decisions channel. It returns false when ctx was
// cancelled while waiting for the receiver.
func (r *Runner) emit(ctx context.Context, d domain.Decision) bool {
	if r.Decisions == nil {
		return true
	}
	select {
	case r.Decisions <- d:
		return true
	case <-ctx.Done():
		return false
	}
}
