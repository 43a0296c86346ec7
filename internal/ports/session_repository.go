package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

type SessionRepository interface {
	// Start inserts an active session. It fails with an invalid state error
	// when the user already has an active session or the experiment does
	// not accept sessions, and promotes a draft experiment to active.
	Start(ctx context.Context, session *domain.Session) error
	// Finish moves an active session to a terminal status.
	Finish(ctx context.Context, userID, id string, status domain.SessionStatus, endTime time.Time) (*domain.Session, error)
	GetByID(ctx context.Context, userID, id string) (*domain.Session, error)
	GetActive(ctx context.Context, userID string) (*domain.Session, error)
	List(ctx context.Context, opts ListSessionsOptions) ([]*domain.Session, error)
}

type ListSessionsOptions struct {
	UserID       string
	ExperimentID *string
	Limit        int // 0 means no limit
}

// ResultRepository appends decoded results.
type ResultRepository interface {
	// Record inserts the result and updates the session counters in one
	// transaction. It returns the updated session.
	Record(ctx context.Context, result *domain.DecodedResult) (*domain.Session, error)
	ListBySession(ctx context.Context, userID, sessionID string) ([]*domain.DecodedResult, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]*domain.RecentResult, error)
}
