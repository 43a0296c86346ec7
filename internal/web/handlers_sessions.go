package web

import (
	"context"
	"net/http"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/service"
)

func (s *Server) handleAPIStartSession(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ExperimentID string `json:"experiment_id"`
		SessionName  string `json:"session_name"`
	}
	err := decodeInput(r, &in, func(r *http.Request) error {
		in.ExperimentID = r.FormValue("experiment_id")
		in.SessionName = r.FormValue("session_name")
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.svc.Sessions.Start(r.Context(), UserID(r), in.ExperimentID, in.SessionName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, toSessionView(session))
}

func (s *Server) handleAPIActiveSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.Sessions.Active(r.Context(), UserID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(session))
}

func (s *Server) handleAPIRecentSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, service.RecentSessionsLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sessions, err := s.svc.Sessions.ListRecent(r.Context(), UserID(r), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionViews(sessions))
}

func (s *Server) handleAPIGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.Sessions.Get(r.Context(), UserID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(session))
}

func (s *Server) handleAPIEndSession(w http.ResponseWriter, r *http.Request) {
	s.finishSession(w, r, s.svc.Sessions.End)
}

func (s *Server) handleAPIStopSession(w http.ResponseWriter, r *http.Request) {
	s.finishSession(w, r, s.svc.Sessions.Stop)
}

func (s *Server) finishSession(w http.ResponseWriter, r *http.Request, finish func(context.Context, string, string) (*domain.Session, error)) {
	session, err := finish(r.Context(), UserID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	done(w, r, http.StatusOK, toSessionView(session))
}
