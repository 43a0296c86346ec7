package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/export"
	"github.com/emiliopalmerini/bcilab/internal/ports"
	"github.com/emiliopalmerini/bcilab/internal/service"
)

// Subscriber streams a user's events until the returned cancel is called.
type Subscriber interface {
	Subscribe(userID string) (<-chan ports.Event, func())
}

type Options struct {
	Port            int
	DefaultUser     string
	ShutdownTimeout time.Duration
	// Vocabulary prefills the experiment form.
	Vocabulary []string
}

type Server struct {
	svc      *service.Services
	events   Subscriber
	exporter *export.Exporter
	router   *http.ServeMux
	opts     Options
	log      *zap.Logger
}

func NewServer(svc *service.Services, events Subscriber, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		svc:      svc,
		events:   events,
		exporter: export.New(svc.Sessions, svc.Trials),
		router:   http.NewServeMux(),
		opts:     opts,
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pages
	s.router.HandleFunc("GET /{$}", s.handleDashboard)

	// Stats
	s.router.HandleFunc("GET /api/stats", s.handleAPIStats)

	// Experiments
	s.router.HandleFunc("GET /api/experiments", s.handleAPIListExperiments)
	s.router.HandleFunc("POST /api/experiments", s.handleAPICreateExperiment)
	s.router.HandleFunc("GET /api/experiments/{id}", s.handleAPIGetExperiment)
	s.router.HandleFunc("POST /api/experiments/{id}/status", s.handleAPISetExperimentStatus)
	s.router.HandleFunc("DELETE /api/experiments/{id}", s.handleAPIDeleteExperiment)
	s.router.HandleFunc("GET /api/experiments/{id}/sessions", s.handleAPIExperimentSessions)
	s.router.HandleFunc("GET /api/vocabulary/default", s.handleAPIDefaultVocabulary)

	// Sessions
	s.router.HandleFunc("POST /api/sessions", s.handleAPIStartSession)
	s.router.HandleFunc("GET /api/sessions/active", s.handleAPIActiveSession)
	s.router.HandleFunc("GET /api/sessions/recent", s.handleAPIRecentSessions)
	s.router.HandleFunc("GET /api/sessions/{id}", s.handleAPIGetSession)
	s.router.HandleFunc("POST /api/sessions/{id}/end", s.handleAPIEndSession)
	s.router.HandleFunc("POST /api/sessions/{id}/stop", s.handleAPIStopSession)

	// Trials
	s.router.HandleFunc("POST /api/sessions/{id}/results", s.handleAPIRecordResult)
	s.router.HandleFunc("GET /api/sessions/{id}/results", s.handleAPISessionResults)
	s.router.HandleFunc("GET /api/results/recent", s.handleAPIRecentResults)

	// Export
	s.router.HandleFunc("GET /api/export/sessions", s.handleAPIExportSessions)
	s.router.HandleFunc("GET /api/export/results", s.handleAPIExportResults)

	// Notifications
	s.router.HandleFunc("GET /api/events", s.handleAPIEvents)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.log, withHTMX(withUser(s.opts.DefaultUser, s.router)))
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Info("starting server", zap.String("url", fmt.Sprintf("http://localhost:%d", s.opts.Port)))

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown error", zap.Error(err))
		}
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil // Graceful shutdown
	}
	return err
}
