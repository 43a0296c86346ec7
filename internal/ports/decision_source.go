package ports

import (
	"context"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

// DecisionSource produces decode decisions for a running session.
// Implementations return a Decision whose Word is in vocabulary or empty,
// with Confidence in [0, 100].
type DecisionSource interface {
	Next(ctx context.Context, vocabulary []string) (domain.Decision, error)
}
