package ports

import (
	"context"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

// MetricsExporter exports lifecycle metrics to an external observability system.
type MetricsExporter interface {
	SessionStarted(ctx context.Context, s *domain.Session)
	// SessionFinished records the frozen statistics of an ended session.
	SessionFinished(ctx context.Context, s *domain.Session)
	TrialRecorded(ctx context.Context, r *domain.DecodedResult)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
