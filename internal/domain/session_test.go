package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestAccuracyRate(t *testing.T) {
	if AccuracyRate(0, 0) != nil {
		t.Error("expected nil accuracy for zero trials")
	}
	got := AccuracyRate(2, 3)
	if got == nil || math.Abs(*got-66.6666666) > 1e-4 {
		t.Errorf("AccuracyRate(2, 3) = %v, want ~66.67", got)
	}
}

func TestSession_Validate(t *testing.T) {
	end := time.Now()
	tests := []struct {
		name    string
		session Session
		wantErr bool
	}{
		{
			name:    "fresh active",
			session: Session{ID: "s", UserID: "u", ExperimentID: "e", Status: SessionActive},
		},
		{
			name:    "completed with stats",
			session: Session{ID: "s", UserID: "u", ExperimentID: "e", Status: SessionCompleted, EndTime: &end, TotalTrials: 4, SuccessfulTrials: 3, AccuracyRate: ptr(75)},
		},
		{
			name:    "successful exceeds total",
			session: Session{ID: "s", UserID: "u", ExperimentID: "e", Status: SessionActive, TotalTrials: 1, SuccessfulTrials: 2},
			wantErr: true,
		},
		{
			name:    "active with end time",
			session: Session{ID: "s", UserID: "u", ExperimentID: "e", Status: SessionActive, EndTime: &end},
			wantErr: true,
		},
		{
			name:    "completed without end time",
			session: Session{ID: "s", UserID: "u", ExperimentID: "e", Status: SessionCompleted},
			wantErr: true,
		},
		{
			name:    "accuracy mismatch",
			session: Session{ID: "s", UserID: "u", ExperimentID: "e", Status: SessionActive, TotalTrials: 2, SuccessfulTrials: 1, AccuracyRate: ptr(90)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %t", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation kind, got %v", err)
			}
		})
	}
}

func TestTrial_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		trial   Trial
		wantErr bool
	}{
		{"ok", Trial{DetectedWord: " Yes ", ConfidenceScore: 85}, false},
		{"lower bound", Trial{DetectedWord: "yes", ConfidenceScore: 0}, false},
		{"upper bound", Trial{DetectedWord: "yes", ConfidenceScore: 100}, false},
		{"blank word", Trial{DetectedWord: "  ", ConfidenceScore: 50}, true},
		{"negative", Trial{DetectedWord: "yes", ConfidenceScore: -0.1}, true},
		{"above max", Trial{DetectedWord: "yes", ConfidenceScore: 100.01}, true},
		{"nan", Trial{DetectedWord: "yes", ConfidenceScore: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.trial.Normalize()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.DetectedWord != "yes" {
				t.Errorf("DetectedWord = %q, want yes", got.DetectedWord)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	err := NotFound("session %s not found", "abc")
	if !errors.Is(err, ErrNotFound) {
		t.Error("expected errors.Is to match by kind")
	}
	if errors.Is(err, ErrInvalidState) {
		t.Error("kinds must not cross-match")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("KindOf = %s", KindOf(err))
	}
	if err.Error() != "session abc not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}
