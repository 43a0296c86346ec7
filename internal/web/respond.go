package web

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/bcilab/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain error kinds to HTTP status codes.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidState:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}

	if IsHTMX(r) {
		http.Error(w, msg, status)
		return
	}
	body := map[string]string{"error": msg}
	if kind := domain.KindOf(err); kind != "" {
		body["kind"] = string(kind)
	}
	writeJSON(w, status, body)
}

// done answers a successful mutation: HTMX callers are redirected to the
// dashboard, API callers get the JSON body.
func done(w http.ResponseWriter, r *http.Request, status int, v any) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, status, v)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// decodeInput fills dst from a JSON body, or calls fromForm with the parsed
// form for form-encoded requests.
func decodeInput(r *http.Request, dst any, fromForm func(*http.Request) error) error {
	if isJSON(r) {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil {
			return domain.Validation("invalid JSON body: %v", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return domain.Validation("invalid form data")
	}
	return fromForm(r)
}

// splitWords accepts a vocabulary typed as one comma or whitespace separated
// field, or as repeated fields.
func splitWords(values []string) []string {
	var words []string
	for _, v := range values {
		words = append(words, strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
		})...)
	}
	return words
}

func formBool(r *http.Request, key string) (bool, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return false, nil
	}
	if v == "on" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, domain.Validation("%s must be a boolean", key)
	}
	return b, nil
}

func formFloat(r *http.Request, key string) (float64, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, domain.Validation("%s is required", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, domain.Validation("%s must be a number", key)
	}
	return f, nil
}

func limitParam(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, domain.Validation("limit must be a positive integer")
	}
	return n, nil
}
