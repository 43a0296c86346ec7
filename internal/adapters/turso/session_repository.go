package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
	"github.com/emiliopalmerini/bcilab/internal/util"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Start(ctx context.Context, s *domain.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.IsActive() {
		return domain.Validation("session %s must start active", s.ID)
	}

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		exp, err := getExperiment(ctx, tx, s.UserID, s.ExperimentID)
		if err != nil {
			return err
		}
		if !exp.Status.AcceptsSessions() {
			return domain.InvalidState("experiment %s is %s", exp.ID, exp.Status)
		}

		if active, err := getActiveSession(ctx, tx, s.UserID); err == nil {
			return domain.InvalidState("session %s is already active", active.ID)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO experiment_sessions (`+sessionColumns+`)
			VALUES (?, ?, ?, ?, ?, NULL, 0, 0, NULL, 'active')`,
			s.ID, s.UserID, s.ExperimentID, s.Name, util.FormatTimestamp(s.StartTime))
		if err != nil {
			return err
		}

		if exp.Status == domain.ExperimentDraft {
			return setExperimentStatus(ctx, tx, exp.ID, domain.ExperimentActive, s.StartTime)
		}
		return nil
	})
	if err != nil {
		var de *domain.Error
		switch {
		case errors.As(err, &de):
			return err
		case isUniqueViolation(err):
			// Lost a race against a concurrent start.
			return domain.InvalidState("user %s already has an active session", s.UserID)
		}
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Finish(ctx context.Context, userID, id string, status domain.SessionStatus, endTime time.Time) (*domain.Session, error) {
	if status == domain.SessionActive || !status.Valid() {
		return nil, domain.Validation("invalid terminal status %q", status)
	}

	var finished *domain.Session
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		s, err := getSession(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if !s.IsActive() {
			return domain.InvalidState("session %s is already %s", id, s.Status)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE experiment_sessions SET status = ?, end_time = ?
			WHERE id = ? AND status = 'active'`,
			string(status), util.FormatTimestamp(endTime), id)
		if err != nil {
			return fmt.Errorf("failed to finish session: %w", err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return domain.InvalidState("session %s is no longer active", id)
		}

		finished, err = getSession(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return finished, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, userID, id string) (*domain.Session, error) {
	return getSession(ctx, r.db, userID, id)
}

func getSession(ctx context.Context, q querier, userID, id string) (*domain.Session, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM experiment_sessions
		WHERE id = ? AND user_id = ?`, id, userID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("session %s not found", id)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// GetActive returns the user's active session, or a not found error.
func (r *SessionRepository) GetActive(ctx context.Context, userID string) (*domain.Session, error) {
	return getActiveSession(ctx, r.db, userID)
}

func getActiveSession(ctx context.Context, q querier, userID string) (*domain.Session, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM experiment_sessions
		WHERE user_id = ? AND status = 'active'
		ORDER BY start_time DESC LIMIT 1`, userID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("no active session")
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return s, nil
}

// List returns sessions newest first.
func (r *SessionRepository) List(ctx context.Context, opts ports.ListSessionsOptions) ([]*domain.Session, error) {
	where := []string{"user_id = ?"}
	args := []any{opts.UserID}
	if opts.ExperimentID != nil {
		where = append(where, "experiment_id = ?")
		args = append(args, *opts.ExperimentID)
	}

	query := `SELECT ` + sessionColumns + ` FROM experiment_sessions
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY start_time DESC, rowid DESC` + limitClause(opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
