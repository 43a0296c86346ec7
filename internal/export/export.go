// Package export renders a user's sessions and decoded results as JSON or
// CSV for analysis outside the dashboard.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

// DefaultLimit caps the sessions exported when no experiment or session is
// named.
const DefaultLimit = 1000

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts json or csv in any case. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", domain.Validation("unsupported format: %s (use json or csv)", s)
}

// ContentType is the HTTP media type of f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// SessionLister and ResultLister are the read operations export needs.
// Both are scoped to the calling user.
type SessionLister interface {
	Get(ctx context.Context, userID, sessionID string) (*domain.Session, error)
	ListByExperiment(ctx context.Context, userID, experimentID string) ([]*domain.Session, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*domain.Session, error)
}

type ResultLister interface {
	Results(ctx context.Context, userID, sessionID string) ([]*domain.DecodedResult, error)
}

// Query selects what to export. SessionID wins over ExperimentID; with
// neither, the Limit most recent sessions are used.
type Query struct {
	ExperimentID string
	SessionID    string
	Limit        int
}

type Session struct {
	ID               string   `json:"id"`
	ExperimentID     string   `json:"experiment_id"`
	Name             string   `json:"session_name"`
	Status           string   `json:"status"`
	StartedAt        string   `json:"start_time"`
	EndedAt          string   `json:"end_time,omitempty"`
	DurationSeconds  int64    `json:"duration_seconds,omitempty"`
	TotalTrials      int64    `json:"total_trials"`
	SuccessfulTrials int64    `json:"successful_trials"`
	AccuracyRate     *float64 `json:"accuracy_rate"`
}

type Result struct {
	ID              string  `json:"id"`
	SessionID       string  `json:"session_id"`
	SessionName     string  `json:"session_name"`
	ExperimentID    string  `json:"experiment_id"`
	DetectedWord    string  `json:"detected_word"`
	ConfidenceScore float64 `json:"confidence_score"`
	WasSuccessful   bool    `json:"was_successful"`
	Timestamp       string  `json:"timestamp"`
}

// Exporter loads export rows through the user-scoped services.
type Exporter struct {
	sessions SessionLister
	results  ResultLister
}

func New(sessions SessionLister, results ResultLister) *Exporter {
	return &Exporter{sessions: sessions, results: results}
}

func (e *Exporter) load(ctx context.Context, userID string, q Query) ([]*domain.Session, error) {
	switch {
	case q.SessionID != "":
		s, err := e.sessions.Get(ctx, userID, q.SessionID)
		if err != nil {
			return nil, err
		}
		return []*domain.Session{s}, nil
	case q.ExperimentID != "":
		return e.sessions.ListByExperiment(ctx, userID, q.ExperimentID)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return e.sessions.ListRecent(ctx, userID, limit)
}

// Sessions returns the selected sessions, newest first.
func (e *Exporter) Sessions(ctx context.Context, userID string, q Query) ([]Session, error) {
	sessions, err := e.load(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	rows := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		row := Session{
			ID:               s.ID,
			ExperimentID:     s.ExperimentID,
			Name:             s.Name,
			Status:           string(s.Status),
			StartedAt:        s.StartTime.UTC().Format(time.RFC3339),
			TotalTrials:      s.TotalTrials,
			SuccessfulTrials: s.SuccessfulTrials,
			AccuracyRate:     s.AccuracyRate,
		}
		if s.EndTime != nil {
			row.EndedAt = s.EndTime.UTC().Format(time.RFC3339)
			row.DurationSeconds = int64(s.EndTime.Sub(s.StartTime).Seconds())
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Results returns the results of the selected sessions, each session's
// results in recording order.
func (e *Exporter) Results(ctx context.Context, userID string, q Query) ([]Result, error) {
	sessions, err := e.load(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	var rows []Result
	for _, s := range sessions {
		results, err := e.results.Results(ctx, userID, s.ID)
		if err != nil {
			return nil, fmt.Errorf("results of session %s: %w", s.ID, err)
		}
		for _, r := range results {
			rows = append(rows, Result{
				ID:              r.ID,
				SessionID:       s.ID,
				SessionName:     s.Name,
				ExperimentID:    s.ExperimentID,
				DetectedWord:    r.DetectedWord,
				ConfidenceScore: r.ConfidenceScore,
				WasSuccessful:   r.WasSuccessful,
				Timestamp:       r.Timestamp.UTC().Format(time.RFC3339Nano),
			})
		}
	}
	if rows == nil {
		rows = []Result{}
	}
	return rows, nil
}

var (
	sessionHeader = []string{
		"id", "experiment_id", "session_name", "status", "start_time", "end_time",
		"duration_seconds", "total_trials", "successful_trials", "accuracy_rate",
	}
	resultHeader = []string{
		"id", "session_id", "session_name", "experiment_id", "detected_word",
		"confidence_score", "was_successful", "timestamp",
	}
)

func WriteSessions(w io.Writer, f Format, rows []Session) error {
	if f != FormatCSV {
		return writeJSON(w, rows)
	}
	records := make([][]string, 0, len(rows))
	for _, s := range rows {
		accuracy := ""
		if s.AccuracyRate != nil {
			accuracy = strconv.FormatFloat(*s.AccuracyRate, 'f', 2, 64)
		}
		duration := ""
		if s.EndedAt != "" {
			duration = strconv.FormatInt(s.DurationSeconds, 10)
		}
		records = append(records, []string{
			s.ID, s.ExperimentID, s.Name, s.Status, s.StartedAt, s.EndedAt, duration,
			strconv.FormatInt(s.TotalTrials, 10), strconv.FormatInt(s.SuccessfulTrials, 10), accuracy,
		})
	}
	return writeCSV(w, sessionHeader, records)
}

func WriteResults(w io.Writer, f Format, rows []Result) error {
	if f != FormatCSV {
		return writeJSON(w, rows)
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.ID, r.SessionID, r.SessionName, r.ExperimentID, r.DetectedWord,
			strconv.FormatFloat(r.ConfidenceScore, 'f', 2, 64), strconv.FormatBool(r.WasSuccessful), r.Timestamp,
		})
	}
	return writeCSV(w, resultHeader, records)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
