package web

import (
	"time"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/service"
)

type experimentView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Vocabulary  []string  `json:"vocabulary_words"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toExperimentView(e *domain.Experiment) experimentView {
	return experimentView{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Vocabulary:  e.Vocabulary,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type sessionView struct {
	ID               string     `json:"id"`
	ExperimentID     string     `json:"experiment_id"`
	Name             string     `json:"session_name"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	TotalTrials      int64      `json:"total_trials"`
	SuccessfulTrials int64      `json:"successful_trials"`
	AccuracyRate     *float64   `json:"accuracy_rate"`
	Status           string     `json:"status"`
}

func toSessionView(s *domain.Session) sessionView {
	return sessionView{
		ID:               s.ID,
		ExperimentID:     s.ExperimentID,
		Name:             s.Name,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		TotalTrials:      s.TotalTrials,
		SuccessfulTrials: s.SuccessfulTrials,
		AccuracyRate:     s.AccuracyRate,
		Status:           string(s.Status),
	}
}

func toSessionViews(sessions []*domain.Session) []sessionView {
	out := make([]sessionView, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionView(s)
	}
	return out
}

type resultView struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	DetectedWord    string    `json:"detected_word"`
	ConfidenceScore float64   `json:"confidence_score"`
	WasSuccessful   bool      `json:"was_successful"`
	Timestamp       time.Time `json:"timestamp"`
	SessionName     string    `json:"session_name,omitempty"`
	ExperimentTitle string    `json:"experiment_title,omitempty"`
}

func toResultView(r *domain.DecodedResult) resultView {
	return resultView{
		ID:              r.ID,
		SessionID:       r.SessionID,
		DetectedWord:    r.DetectedWord,
		ConfidenceScore: r.ConfidenceScore,
		WasSuccessful:   r.WasSuccessful,
		Timestamp:       r.Timestamp,
	}
}

func toRecentResultViews(results []*domain.RecentResult) []resultView {
	out := make([]resultView, len(results))
	for i, r := range results {
		out[i] = toResultView(&r.DecodedResult)
		out[i].SessionName = r.SessionName
		out[i].ExperimentTitle = r.ExperimentTitle
	}
	return out
}

type recordView struct {
	Result  resultView  `json:"result"`
	Session sessionView `json:"session"`
}

type statsView struct {
	SessionCount       int64        `json:"session_count"`
	CompletedCount     int64        `json:"completed_count"`
	ActiveSessionCount int64        `json:"active_session_count"`
	TotalTrials        int64        `json:"total_trials"`
	OverallAccuracy    *float64     `json:"overall_accuracy"`
	ExperimentCount    int64        `json:"experiment_count"`
	ActiveSession      *sessionView `json:"active_session"`
}

func toStatsView(d *service.Dashboard) statsView {
	v := statsView{
		SessionCount:       d.Stats.SessionCount,
		CompletedCount:     d.Stats.CompletedCount,
		ActiveSessionCount: d.Stats.ActiveSessionCount,
		TotalTrials:        d.Stats.TotalTrials,
		OverallAccuracy:    d.Stats.OverallAccuracy,
		ExperimentCount:    d.ExperimentCount,
	}
	if d.Active != nil {
		sv := toSessionView(d.Active)
		v.ActiveSession = &sv
	}
	return v
}
