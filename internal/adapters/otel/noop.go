package otel

import (
	"context"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) SessionStarted(ctx context.Context, s *domain.Session) {}

func (e *NoOpExporter) SessionFinished(ctx context.Context, s *domain.Session) {}

func (e *NoOpExporter) TrialRecorded(ctx context.Context, r *domain.DecodedResult) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
