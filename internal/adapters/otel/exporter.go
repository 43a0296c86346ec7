package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/bcilab/internal/config"
	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

const (
	serviceName    = "bcilab"
	serviceVersion = "1.0.0"
)

// Exporter exports session and trial metrics to an OTEL Collector.
type Exporter struct {
	provider         *sdkmetric.MeterProvider
	trialsTotal      metric.Int64Counter
	confidenceHist   metric.Float64Histogram
	sessionsStarted  metric.Int64Counter
	sessionsFinished metric.Int64Counter
	accuracyHist     metric.Float64Histogram
	durationHist     metric.Float64Histogram
	sessionTrials    metric.Int64Histogram
}

// New returns an OTLP exporter when cfg enables one, and a NoOpExporter
// otherwise or when the exporter cannot be created.
func New(ctx context.Context, cfg config.OTel, log *zap.Logger) ports.MetricsExporter {
	if !cfg.Enabled {
		return NewNoOpExporter()
	}
	exp, err := NewExporter(ctx, cfg)
	if err != nil {
		if log != nil {
			log.Warn("metrics export disabled", zap.Error(err))
		}
		return NewNoOpExporter()
	}
	return exp
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg config.OTel) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	e, err := newExporter(sdkmetric.NewPeriodicReader(exp), res)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(e.provider)
	return e, nil
}

func newExporter(reader sdkmetric.Reader, res *resource.Resource) (*Exporter, error) {
	popts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	if res != nil {
		popts = append(popts, sdkmetric.WithResource(res))
	}
	provider := sdkmetric.NewMeterProvider(popts...)
	meter := provider.Meter(serviceName)

	e := &Exporter{provider: provider}
	var err error

	if e.trialsTotal, err = meter.Int64Counter(
		"bcilab_trials_total",
		metric.WithDescription("Total decoded trials recorded"),
		metric.WithUnit("{trial}"),
	); err != nil {
		return nil, fmt.Errorf("creating trials counter: %w", err)
	}

	if e.confidenceHist, err = meter.Float64Histogram(
		"bcilab_trial_confidence",
		metric.WithDescription("Confidence score of decoded trials"),
		metric.WithUnit("%"),
	); err != nil {
		return nil, fmt.Errorf("creating confidence histogram: %w", err)
	}

	if e.sessionsStarted, err = meter.Int64Counter(
		"bcilab_sessions_started_total",
		metric.WithDescription("Total number of sessions started"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, fmt.Errorf("creating sessions started counter: %w", err)
	}

	if e.sessionsFinished, err = meter.Int64Counter(
		"bcilab_sessions_finished_total",
		metric.WithDescription("Total number of sessions ended or stopped"),
		metric.WithUnit("{session}"),
	); err != nil {
		return nil, fmt.Errorf("creating sessions finished counter: %w", err)
	}

	if e.accuracyHist, err = meter.Float64Histogram(
		"bcilab_session_accuracy",
		metric.WithDescription("Accuracy of finished sessions with at least one trial"),
		metric.WithUnit("%"),
	); err != nil {
		return nil, fmt.Errorf("creating accuracy histogram: %w", err)
	}

	if e.durationHist, err = meter.Float64Histogram(
		"bcilab_session_duration_seconds",
		metric.WithDescription("Session duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	if e.sessionTrials, err = meter.Int64Histogram(
		"bcilab_session_trials",
		metric.WithDescription("Number of trials per finished session"),
		metric.WithUnit("{trial}"),
	); err != nil {
		return nil, fmt.Errorf("creating session trials histogram: %w", err)
	}

	return e, nil
}

func (e *Exporter) SessionStarted(ctx context.Context, s *domain.Session) {
	e.sessionsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("experiment_id", s.ExperimentID)))
}

// SessionFinished records the frozen statistics of an ended session.
func (e *Exporter) SessionFinished(ctx context.Context, s *domain.Session) {
	opt := metric.WithAttributes(
		attribute.String("experiment_id", s.ExperimentID),
		attribute.String("status", string(s.Status)),
	)

	e.sessionsFinished.Add(ctx, 1, opt)
	e.sessionTrials.Record(ctx, s.TotalTrials, opt)
	if s.EndTime != nil {
		e.durationHist.Record(ctx, s.EndTime.Sub(s.StartTime).Seconds(), opt)
	}
	if s.AccuracyRate != nil {
		e.accuracyHist.Record(ctx, *s.AccuracyRate, opt)
	}
}

func (e *Exporter) TrialRecorded(ctx context.Context, r *domain.DecodedResult) {
	opt := metric.WithAttributes(
		attribute.String("word", r.DetectedWord),
		attribute.Bool("successful", r.WasSuccessful),
	)
	e.trialsTotal.Add(ctx, 1, opt)
	e.confidenceHist.Record(ctx, r.ConfidenceScore, opt)
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
