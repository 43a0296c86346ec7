package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/util"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const experimentColumns = `id, user_id, title, description, vocabulary_words, status, created_at, updated_at`

func scanExperiment(s scanner) (*domain.Experiment, error) {
	var (
		exp                  domain.Experiment
		description          sql.NullString
		vocabJSON, status    string
		createdAt, updatedAt string
	)
	if err := s.Scan(&exp.ID, &exp.UserID, &exp.Title, &description, &vocabJSON, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(vocabJSON), &exp.Vocabulary); err != nil {
		return nil, corruptRow("experiment", exp.ID, fmt.Errorf("vocabulary: %w", err))
	}
	exp.Description = util.NullStringToPtr(description)
	exp.Status = domain.ExperimentStatus(status)

	var err error
	if exp.CreatedAt, err = util.ParseTimestamp(createdAt); err != nil {
		return nil, corruptRow("experiment", exp.ID, err)
	}
	if exp.UpdatedAt, err = util.ParseTimestamp(updatedAt); err != nil {
		return nil, corruptRow("experiment", exp.ID, err)
	}
	if err := exp.Validate(); err != nil {
		return nil, corruptRow("experiment", exp.ID, err)
	}
	return &exp, nil
}

const sessionColumns = `id, user_id, experiment_id, session_name, start_time, end_time, total_trials, successful_trials, accuracy_rate, status`

func scanSession(s scanner) (*domain.Session, error) {
	var (
		sess      domain.Session
		startTime string
		endTime   sql.NullString
		accuracy  sql.NullFloat64
		status    string
	)
	if err := s.Scan(&sess.ID, &sess.UserID, &sess.ExperimentID, &sess.Name, &startTime, &endTime,
		&sess.TotalTrials, &sess.SuccessfulTrials, &accuracy, &status); err != nil {
		return nil, err
	}
	sess.Status = domain.SessionStatus(status)
	sess.AccuracyRate = util.NullFloat64ToPtr(accuracy)

	var err error
	if sess.StartTime, err = util.ParseTimestamp(startTime); err != nil {
		return nil, corruptRow("session", sess.ID, err)
	}
	if endTime.Valid {
		t, err := util.ParseTimestamp(endTime.String)
		if err != nil {
			return nil, corruptRow("session", sess.ID, err)
		}
		sess.EndTime = &t
	}
	if err := sess.Validate(); err != nil {
		return nil, corruptRow("session", sess.ID, err)
	}
	return &sess, nil
}

const resultColumns = `r.id, r.user_id, r.session_id, r.detected_word, r.confidence_score, r.was_successful, r.timestamp`

func scanResult(s scanner, extra ...any) (*domain.DecodedResult, error) {
	var (
		res        domain.DecodedResult
		successful int64
		timestamp  string
	)
	dest := append([]any{&res.ID, &res.UserID, &res.SessionID, &res.DetectedWord, &res.ConfidenceScore, &successful, &timestamp}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	res.WasSuccessful = successful == 1

	var err error
	if res.Timestamp, err = util.ParseTimestamp(timestamp); err != nil {
		return nil, corruptRow("result", res.ID, err)
	}
	if err := res.Validate(); err != nil {
		return nil, corruptRow("result", res.ID, err)
	}
	return &res, nil
}

func corruptRow(entity, id string, err error) error {
	return fmt.Errorf("corrupt %s row %s: %w", entity, id, err)
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
// Both drivers surface the SQLite message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}
