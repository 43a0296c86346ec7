package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

// ExperimentRepository persists experiments. Every method is scoped to the
// owning user; rows of other users behave as if they did not exist.
type ExperimentRepository interface {
	Create(ctx context.Context, experiment *domain.Experiment) error
	GetByID(ctx context.Context, userID, id string) (*domain.Experiment, error)
	List(ctx context.Context, userID string) ([]*domain.Experiment, error)
	// UpdateStatus applies a valid transition. Pausing or completing fails
	// with an invalid state error while a session against it is active.
	UpdateStatus(ctx context.Context, userID, id string, status domain.ExperimentStatus, now time.Time) (*domain.Experiment, error)
	// Delete removes the experiment with its sessions and results. It fails
	// with an invalid state error while a session against it is active.
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int64, error)
}
