package domain

import (
	"math"
	"strings"
	"time"
)

const (
	MinConfidence = 0.0
	MaxConfidence = 100.0
)

// DecodedResult is one trial outcome. Results are append-only.
type DecodedResult struct {
	ID              string
	UserID          string
	SessionID       string
	DetectedWord    string
	ConfidenceScore float64
	WasSuccessful   bool
	Timestamp       time.Time
}

// Trial is the input to record a decoded result.
type Trial struct {
	DetectedWord    string
	ConfidenceScore float64
	WasSuccessful   bool
}

// Normalize returns the trial with the word normalized, or a validation
// error when the word is blank or the confidence is out of range.
func (t Trial) Normalize() (Trial, error) {
	t.DetectedWord = NormalizeWord(t.DetectedWord)
	if t.DetectedWord == "" {
		return t, Validation("detected word is required")
	}
	if math.IsNaN(t.ConfidenceScore) || t.ConfidenceScore < MinConfidence || t.ConfidenceScore > MaxConfidence {
		return t, Validation("confidence score %v outside [%g, %g]", t.ConfidenceScore, MinConfidence, MaxConfidence)
	}
	return t, nil
}

func (r *DecodedResult) Validate() error {
	if r.ID == "" || r.SessionID == "" {
		return Validation("result %q: missing identity", r.ID)
	}
	if strings.TrimSpace(r.DetectedWord) == "" {
		return Validation("result %s: empty detected word", r.ID)
	}
	if r.ConfidenceScore < MinConfidence || r.ConfidenceScore > MaxConfidence {
		return Validation("result %s: confidence %v out of range", r.ID, r.ConfidenceScore)
	}
	return nil
}

// RecentResult is a decoded result joined with its session and experiment
// names, as shown in the dashboard activity feed.
type RecentResult struct {
	DecodedResult
	SessionName     string
	ExperimentTitle string
}
