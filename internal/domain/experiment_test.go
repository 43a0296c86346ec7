package domain

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestNewExperiment(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		title   string
		words   []string
		wantErr bool
	}{
		{"valid", "Imagined speech", []string{"yes", "no"}, false},
		{"blank title", "   ", []string{"yes"}, true},
		{"empty vocabulary", "T", nil, true},
		{"only blank words", "T", []string{" ", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := NewExperiment("id", "user", tt.title, "", tt.words, now)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if exp.Status != ExperimentDraft {
				t.Errorf("Status = %s, want draft", exp.Status)
			}
			if exp.Description != nil {
				t.Errorf("expected nil description, got %q", *exp.Description)
			}
		})
	}
}

func TestNewExperiment_NormalizesVocabulary(t *testing.T) {
	exp, err := NewExperiment("id", "user", "  T  ", " notes ", []string{"Yes", "yes", " NO "}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.Title != "T" {
		t.Errorf("Title = %q, want T", exp.Title)
	}
	if exp.Description == nil || *exp.Description != "notes" {
		t.Errorf("Description = %v, want notes", exp.Description)
	}
	if !slices.Equal(exp.Vocabulary, []string{"yes", "no"}) {
		t.Errorf("Vocabulary = %v", exp.Vocabulary)
	}
	if !exp.HasWord("NO") {
		t.Error("HasWord should normalize its argument")
	}
	if err := exp.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestExperimentStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to ExperimentStatus
		want     bool
	}{
		{ExperimentDraft, ExperimentActive, true},
		{ExperimentDraft, ExperimentPaused, false},
		{ExperimentActive, ExperimentPaused, true},
		{ExperimentPaused, ExperimentActive, true},
		{ExperimentActive, ExperimentCompleted, true},
		{ExperimentCompleted, ExperimentActive, false},
		{ExperimentActive, ExperimentDraft, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %t, want %t", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestExperiment_ValidateRejectsCorruptRows(t *testing.T) {
	base := func() *Experiment {
		return &Experiment{ID: "e", UserID: "u", Title: "t", Vocabulary: []string{"yes"}, Status: ExperimentActive}
	}

	dup := base()
	dup.Vocabulary = []string{"yes", "yes"}
	upper := base()
	upper.Vocabulary = []string{"Yes"}
	status := base()
	status.Status = "archived"

	for name, exp := range map[string]*Experiment{"duplicate": dup, "not normalized": upper, "status": status} {
		if err := exp.Validate(); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}
