package domain

import (
	"math"
	"time"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionStopped   SessionStatus = "stopped"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionCompleted, SessionStopped:
		return true
	}
	return false
}

type Session struct {
	ID               string
	UserID           string
	ExperimentID     string
	Name             string
	StartTime        time.Time
	EndTime          *time.Time
	TotalTrials      int64
	SuccessfulTrials int64
	AccuracyRate     *float64 // nil until the first trial
	Status           SessionStatus
}

func (s *Session) IsActive() bool {
	return s.Status == SessionActive
}

// AccuracyRate returns successful/total*100, or nil when total is zero.
func AccuracyRate(successful, total int64) *float64 {
	if total <= 0 {
		return nil
	}
	rate := float64(successful) / float64(total) * 100
	return &rate
}

// Validate checks the counter and lifecycle invariants of a stored session.
func (s *Session) Validate() error {
	if s.ID == "" || s.UserID == "" || s.ExperimentID == "" {
		return Validation("session %q: missing identity", s.ID)
	}
	if !s.Status.Valid() {
		return Validation("session %s: unknown status %q", s.ID, s.Status)
	}
	if s.TotalTrials < 0 || s.SuccessfulTrials < 0 || s.SuccessfulTrials > s.TotalTrials {
		return Validation("session %s: inconsistent counters %d/%d", s.ID, s.SuccessfulTrials, s.TotalTrials)
	}
	if s.IsActive() != (s.EndTime == nil) {
		return Validation("session %s: status %s with end_time set=%t", s.ID, s.Status, s.EndTime != nil)
	}
	if s.TotalTrials == 0 && s.AccuracyRate != nil {
		return Validation("session %s: accuracy set without trials", s.ID)
	}
	if s.AccuracyRate != nil {
		want := *AccuracyRate(s.SuccessfulTrials, s.TotalTrials)
		if math.Abs(*s.AccuracyRate-want) > 1e-6 {
			return Validation("session %s: accuracy %.4f does not match counters", s.ID, *s.AccuracyRate)
		}
	}
	return nil
}
