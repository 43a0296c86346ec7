package web

import (
	"bytes"
	"net/http"

	"github.com/emiliopalmerini/bcilab/internal/export"
)

func (s *Server) handleAPIExportSessions(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "sessions", func(q export.Query, f export.Format, buf *bytes.Buffer) error {
		rows, err := s.exporter.Sessions(r.Context(), UserID(r), q)
		if err != nil {
			return err
		}
		return export.WriteSessions(buf, f, rows)
	})
}

func (s *Server) handleAPIExportResults(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "results", func(q export.Query, f export.Format, buf *bytes.Buffer) error {
		rows, err := s.exporter.Results(r.Context(), UserID(r), q)
		if err != nil {
			return err
		}
		return export.WriteResults(buf, f, rows)
	})
}

// serveExport renders into a buffer first so a failure still gets a proper
// error status.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, name string, render func(export.Query, export.Format, *bytes.Buffer) error) {
	query := r.URL.Query()
	format, err := export.ParseFormat(query.Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := limitParam(r, export.DefaultLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := export.Query{
		ExperimentID: query.Get("experiment"),
		SessionID:    query.Get("session"),
		Limit:        limit,
	}
	var buf bytes.Buffer
	if err := render(q, format, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+name+"."+string(format))
	_, _ = w.Write(buf.Bytes())
}
