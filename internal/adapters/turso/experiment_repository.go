package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/util"
)

type ExperimentRepository struct {
	db *sql.DB
}

func NewExperimentRepository(db *sql.DB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

func (r *ExperimentRepository) Create(ctx context.Context, exp *domain.Experiment) error {
	if err := exp.Validate(); err != nil {
		return err
	}
	vocab, err := json.Marshal(exp.Vocabulary)
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO experiments (`+experimentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.UserID, exp.Title, util.NullStringPtr(exp.Description), string(vocab),
		string(exp.Status), util.FormatTimestamp(exp.CreatedAt), util.FormatTimestamp(exp.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.InvalidState("experiment %s already exists", exp.ID)
		}
		return fmt.Errorf("failed to create experiment: %w", err)
	}
	return nil
}

func (r *ExperimentRepository) GetByID(ctx context.Context, userID, id string) (*domain.Experiment, error) {
	return getExperiment(ctx, r.db, userID, id)
}

func getExperiment(ctx context.Context, q querier, userID, id string) (*domain.Experiment, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+experimentColumns+` FROM experiments
		WHERE id = ? AND user_id = ?`, id, userID)
	exp, err := scanExperiment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("experiment %s not found", id)
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return exp, nil
}

func (r *ExperimentRepository) List(ctx context.Context, userID string) ([]*domain.Experiment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+experimentColumns+` FROM experiments
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var experiments []*domain.Experiment
	for rows.Next() {
		exp, err := scanExperiment(rows)
		if err != nil {
			return nil, err
		}
		experiments = append(experiments, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	return experiments, nil
}

// UpdateStatus moves the experiment to status, stamping updated_at with now.
// Pausing or completing is refused while a session against it is active.
func (r *ExperimentRepository) UpdateStatus(ctx context.Context, userID, id string, status domain.ExperimentStatus, now time.Time) (*domain.Experiment, error) {
	if !status.Valid() {
		return nil, domain.Validation("unknown experiment status %q", status)
	}

	var updated *domain.Experiment
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		exp, err := getExperiment(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if exp.Status == status {
			updated = exp
			return nil
		}
		if !exp.Status.CanTransition(status) {
			return domain.InvalidState("experiment %s cannot move from %s to %s", id, exp.Status, status)
		}
		if !status.AcceptsSessions() {
			if err := ensureNoActiveSession(ctx, tx, id); err != nil {
				return err
			}
		}
		if err := setExperimentStatus(ctx, tx, id, status, now); err != nil {
			return err
		}
		updated, err = getExperiment(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func setExperimentStatus(ctx context.Context, q querier, id string, status domain.ExperimentStatus, now time.Time) error {
	_, err := q.ExecContext(ctx, `
		UPDATE experiments SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), util.FormatTimestamp(now), id)
	if err != nil {
		return fmt.Errorf("failed to update experiment status: %w", err)
	}
	return nil
}

// Delete removes the experiment, its sessions and their results. Children
// are deleted explicitly so the cascade holds on connections where the
// foreign_keys pragma is off.
func (r *ExperimentRepository) Delete(ctx context.Context, userID, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := getExperiment(ctx, tx, userID, id); err != nil {
			return err
		}
		if err := ensureNoActiveSession(ctx, tx, id); err != nil {
			return err
		}

		stmts := []string{
			`DELETE FROM decoded_results WHERE session_id IN (SELECT id FROM experiment_sessions WHERE experiment_id = ?)`,
			`DELETE FROM experiment_sessions WHERE experiment_id = ?`,
			`DELETE FROM experiments WHERE id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("failed to delete experiment: %w", err)
			}
		}
		return nil
	})
}

func ensureNoActiveSession(ctx context.Context, q querier, experimentID string) error {
	var active int64
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM experiment_sessions
		WHERE experiment_id = ? AND status = 'active'`, experimentID).Scan(&active)
	if err != nil {
		return fmt.Errorf("failed to check active sessions: %w", err)
	}
	if active > 0 {
		return domain.InvalidState("experiment %s has an active session", experimentID)
	}
	return nil
}

func (r *ExperimentRepository) Count(ctx context.Context, userID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiments WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count experiments: %w", err)
	}
	return n, nil
}
