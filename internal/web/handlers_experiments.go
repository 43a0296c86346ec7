package web

import (
	"net/http"
	"strings"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

type createExperimentInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Vocabulary  []string `json:"vocabulary_words"`
}

func (s *Server) handleAPIListExperiments(w http.ResponseWriter, r *http.Request) {
	exps, err := s.svc.Experiments.List(r.Context(), UserID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]experimentView, len(exps))
	for i, e := range exps {
		out[i] = toExperimentView(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPICreateExperiment(w http.ResponseWriter, r *http.Request) {
	var in createExperimentInput
	err := decodeInput(r, &in, func(r *http.Request) error {
		in.Title = r.FormValue("title")
		in.Description = r.FormValue("description")
		in.Vocabulary = splitWords(r.Form["vocabulary_words"])
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	exp, err := s.svc.Experiments.Create(r.Context(), UserID(r), in.Title, in.Description, in.Vocabulary)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, toExperimentView(exp))
}

func (s *Server) handleAPIGetExperiment(w http.ResponseWriter, r *http.Request) {
	exp, err := s.svc.Experiments.Get(r.Context(), UserID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExperimentView(exp))
}

func (s *Server) handleAPISetExperimentStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	err := decodeInput(r, &in, func(r *http.Request) error {
		in.Status = r.FormValue("status")
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := domain.ExperimentStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	exp, err := s.svc.Experiments.SetStatus(r.Context(), UserID(r), r.PathValue("id"), status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	done(w, r, http.StatusOK, toExperimentView(exp))
}

func (s *Server) handleAPIDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Experiments.Delete(r.Context(), UserID(r), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	done(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleAPIExperimentSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if _, err := s.svc.Experiments.Get(ctx, UserID(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	sessions, err := s.svc.Sessions.ListByExperiment(ctx, UserID(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionViews(sessions))
}

func (s *Server) handleAPIDefaultVocabulary(w http.ResponseWriter, r *http.Request) {
	words := s.opts.Vocabulary
	if len(words) == 0 {
		words = domain.DefaultVocabulary().Words()
	}
	writeJSON(w, http.StatusOK, map[string][]string{"vocabulary_words": words})
}
