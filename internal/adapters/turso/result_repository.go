package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/util"
)

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Record appends the result and bumps the session counters in the same
// transaction. The accuracy is recomputed from the post-increment counters
// inside the UPDATE, so it never drifts from total and successful trials.
func (r *ResultRepository) Record(ctx context.Context, res *domain.DecodedResult) (*domain.Session, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Session
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var status, vocabJSON string
		err := tx.QueryRowContext(ctx, `
			SELECT s.status, e.vocabulary_words
			FROM experiment_sessions s
			JOIN experiments e ON e.id = s.experiment_id
			WHERE s.id = ? AND s.user_id = ?`, res.SessionID, res.UserID).Scan(&status, &vocabJSON)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFound("session %s not found", res.SessionID)
			}
			return fmt.Errorf("failed to load session: %w", err)
		}
		if domain.SessionStatus(status) != domain.SessionActive {
			return domain.InvalidState("session %s is %s", res.SessionID, status)
		}

		var vocab []string
		if err := json.Unmarshal([]byte(vocabJSON), &vocab); err != nil {
			return corruptRow("experiment", res.SessionID, err)
		}
		if !slices.Contains(vocab, res.DetectedWord) {
			return domain.Validation("word %q is not in the experiment vocabulary", res.DetectedWord)
		}

		successful := util.BoolToInt64(res.WasSuccessful)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO decoded_results (id, user_id, session_id, detected_word, confidence_score, was_successful, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			res.ID, res.UserID, res.SessionID, res.DetectedWord, res.ConfidenceScore,
			successful, util.FormatTimestamp(res.Timestamp))
		if err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}

		upd, err := tx.ExecContext(ctx, `
			UPDATE experiment_sessions SET
				total_trials = total_trials + 1,
				successful_trials = successful_trials + ?,
				accuracy_rate = (successful_trials + ?) * 100.0 / (total_trials + 1)
			WHERE id = ? AND status = 'active'`,
			successful, successful, res.SessionID)
		if err != nil {
			return fmt.Errorf("failed to update session counters: %w", err)
		}
		if n, _ := upd.RowsAffected(); n != 1 {
			return domain.InvalidState("session %s is no longer active", res.SessionID)
		}

		updated, err = getSession(ctx, tx, res.UserID, res.SessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListBySession returns the session's results oldest first.
func (r *ResultRepository) ListBySession(ctx context.Context, userID, sessionID string) ([]*domain.DecodedResult, error) {
	if _, err := getSession(ctx, r.db, userID, sessionID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+resultColumns+` FROM decoded_results r
		WHERE r.session_id = ? AND r.user_id = ?
		ORDER BY r.timestamp, r.rowid`, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []*domain.DecodedResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

// ListRecent returns the user's latest results across sessions, newest first.
func (r *ResultRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*domain.RecentResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+resultColumns+`, s.session_name, e.title
		FROM decoded_results r
		JOIN experiment_sessions s ON s.id = r.session_id
		JOIN experiments e ON e.id = s.experiment_id
		WHERE r.user_id = ?
		ORDER BY r.timestamp DESC, r.rowid DESC`+limitClause(limit), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent results: %w", err)
	}
	defer rows.Close()

	var results []*domain.RecentResult
	for rows.Next() {
		var rr domain.RecentResult
		res, err := scanResult(rows, &rr.SessionName, &rr.ExperimentTitle)
		if err != nil {
			return nil, err
		}
		rr.DecodedResult = *res
		results = append(results, &rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recent results: %w", err)
	}
	return results, nil
}
