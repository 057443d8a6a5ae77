package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "rentautopro/internal/errors"

	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.WithError(err).Error("error encoding response")
		}
	}
}

// writeError maps service errors onto the wire: HTTPError carries its own
// status and optional field messages, anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		body := map[string]interface{}{"error": httpErr.Message}
		if len(httpErr.Fields) > 0 {
			body["fields"] = httpErr.Fields
		}
		writeJSON(w, httpErr.Code, body)
		return
	}

	log.WithError(err).Error("internal server error")
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal server error"})
}
