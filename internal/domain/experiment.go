package domain

import (
	"slices"
	"strings"
	"time"
)

type ExperimentStatus string

const (
	ExperimentDraft     ExperimentStatus = "draft"
	ExperimentActive    ExperimentStatus = "active"
	ExperimentCompleted ExperimentStatus = "completed"
	ExperimentPaused    ExperimentStatus = "paused"
)

func (s ExperimentStatus) Valid() bool {
	switch s {
	case ExperimentDraft, ExperimentActive, ExperimentCompleted, ExperimentPaused:
		return true
	}
	return false
}

// experimentTransitions lists the statuses reachable from each status.
var experimentTransitions = map[ExperimentStatus][]ExperimentStatus{
	ExperimentDraft:     {ExperimentActive, ExperimentCompleted},
	ExperimentActive:    {ExperimentPaused, ExperimentCompleted},
	ExperimentPaused:    {ExperimentActive, ExperimentCompleted},
	ExperimentCompleted: nil,
}

// CanTransition reports whether an experiment may move from s to next.
func (s ExperimentStatus) CanTransition(next ExperimentStatus) bool {
	return slices.Contains(experimentTransitions[s], next)
}

// AcceptsSessions reports whether new sessions may be started.
func (s ExperimentStatus) AcceptsSessions() bool {
	return s == ExperimentDraft || s == ExperimentActive
}

type Experiment struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Vocabulary  []string
	Status      ExperimentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewExperiment validates the input and returns a draft experiment.
// The vocabulary is normalized and deduplicated in order.
func NewExperiment(id, userID, title, description string, words []string, now time.Time) (*Experiment, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Validation("experiment title is required")
	}
	vocab := NewVocabulary(words...)
	if vocab.Len() == 0 {
		return nil, Validation("experiment vocabulary must contain at least one word")
	}

	exp := &Experiment{
		ID:         id,
		UserID:     userID,
		Title:      title,
		Vocabulary: vocab.Words(),
		Status:     ExperimentDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if desc := strings.TrimSpace(description); desc != "" {
		exp.Description = &desc
	}
	return exp, nil
}

// HasWord reports whether word belongs to the experiment vocabulary.
func (e *Experiment) HasWord(word string) bool {
	return slices.Contains(e.Vocabulary, NormalizeWord(word))
}

// Validate checks the invariants of a stored experiment.
func (e *Experiment) Validate() error {
	if e.ID == "" || e.UserID == "" {
		return Validation("experiment %q: missing identity", e.ID)
	}
	if strings.TrimSpace(e.Title) == "" {
		return Validation("experiment %s: empty title", e.ID)
	}
	if !e.Status.Valid() {
		return Validation("experiment %s: unknown status %q", e.ID, e.Status)
	}
	if len(e.Vocabulary) == 0 {
		return Validation("experiment %s: empty vocabulary", e.ID)
	}
	seen := make(map[string]struct{}, len(e.Vocabulary))
	for _, w := range e.Vocabulary {
		if w == "" || w != NormalizeWord(w) {
			return Validation("experiment %s: word %q is not normalized", e.ID, w)
		}
		if _, dup := seen[w]; dup {
			return Validation("experiment %s: duplicate word %q", e.ID, w)
		}
		seen[w] = struct{}{}
	}
	return nil
}
