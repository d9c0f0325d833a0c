// SPDX-License-Identifier: MIT
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/ivsgw/internal/config"
	"github.com/ManuGH/ivsgw/internal/embedurl"
	"github.com/ManuGH/ivsgw/internal/log"
	"github.com/ManuGH/ivsgw/internal/mediameta"
	"github.com/ManuGH/ivsgw/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

// statusForError maps domain sentinels to HTTP status codes. Malformed input
// is the caller's fault (400), a stored record that no longer validates is a
// data problem (422), and a misconfigured service is unavailable (503).
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, embedurl.ErrInvalidFormat), errors.Is(err, embedurl.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, mediameta.ErrBadJSON), errors.Is(err, mediameta.ErrInvalidKeySet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, config.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
