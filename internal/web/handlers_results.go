package web

import (
	"net/http"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/service"
)

type recordInput struct {
	DetectedWord    string   `json:"detected_word"`
	ConfidenceScore *float64 `json:"confidence_score"`
	WasSuccessful   bool     `json:"was_successful"`
}

func (s *Server) handleAPIRecordResult(w http.ResponseWriter, r *http.Request) {
	var in recordInput
	err := decodeInput(r, &in, func(r *http.Request) error {
		in.DetectedWord = r.FormValue("detected_word")
		conf, err := formFloat(r, "confidence_score")
		if err != nil {
			return err
		}
		in.ConfidenceScore = &conf
		in.WasSuccessful, err = formBool(r, "was_successful")
		return err
	})
	if err == nil && in.ConfidenceScore == nil {
		err = domain.Validation("confidence_score is required")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	trial := domain.Trial{
		DetectedWord:    in.DetectedWord,
		ConfidenceScore: *in.ConfidenceScore,
		WasSuccessful:   in.WasSuccessful,
	}
	result, session, err := s.svc.Trials.Record(r.Context(), UserID(r), r.PathValue("id"), trial)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	done(w, r, http.StatusCreated, recordView{Result: toResultView(result), Session: toSessionView(session)})
}

func (s *Server) handleAPISessionResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.svc.Trials.Results(r.Context(), UserID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]resultView, len(results))
	for i, res := range results {
		out[i] = toResultView(res)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIRecentResults(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, service.RecentResultsLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	results, err := s.svc.Trials.RecentResults(r.Context(), UserID(r), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecentResultViews(results))
}
