// Package service implements the experiment, session, trial and stats
// operations on top of the repository ports.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/ports"
)

// Deps are the collaborators shared by all services. Events, Metrics,
// Logger and Clock are optional.
type Deps struct {
	Experiments ports.ExperimentRepository
	Sessions    ports.SessionRepository
	Results     ports.ResultRepository
	Events      ports.EventPublisher
	Metrics     ports.MetricsExporter
	Logger      *zap.Logger
	Clock       func() time.Time
}

// Services groups the application services.
type Services struct {
	Experiments *Experiments
	Sessions    *Sessions
	Trials      *Trials
	Stats       *Stats
}

func New(d Deps) *Services {
	if d.Events == nil {
		d.Events = discardEvents{}
	}
	if d.Metrics == nil {
		d.Metrics = discardMetrics{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}

	// Session end and trial recording share one lock per session.
	sessionLocks := newKeyedMutex()

	return &Services{
		Experiments: &Experiments{
			repo:   d.Experiments,
			events: d.Events,
			log:    d.Logger.With(zap.String("component", "experiments")),
			now:    d.Clock,
		},
		Sessions: &Sessions{
			repo:         d.Sessions,
			events:       d.Events,
			metrics:      d.Metrics,
			log:          d.Logger.With(zap.String("component", "sessions")),
			now:          d.Clock,
			userLocks:    newKeyedMutex(),
			sessionLocks: sessionLocks,
		},
		Trials: &Trials{
			repo:         d.Results,
			events:       d.Events,
			metrics:      d.Metrics,
			log:          d.Logger.With(zap.String("component", "trials")),
			now:          d.Clock,
			sessionLocks: sessionLocks,
		},
		Stats: &Stats{
			experiments: d.Experiments,
			sessions:    d.Sessions,
			results:     d.Results,
		},
	}
}

func newID() string {
	return uuid.NewString()
}

type discardEvents struct{}

func (discardEvents) Publish(context.Context, ports.Event) {}

type discardMetrics struct{}

func (discardMetrics) SessionStarted(context.Context, *domain.Session) {}
func (discardMetrics) SessionFinished(context.Context, *domain.Session) {}
func (discardMetrics) TrialRecorded(context.Context, *domain.DecodedResult) {}
func (discardMetrics) Close(context.Context) error { return nil }
