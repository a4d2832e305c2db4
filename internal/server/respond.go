package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	grerrors "github.com/julianstephens/grove/internal/errors"
	"github.com/julianstephens/grove/internal/logger"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Field  string `json:"field,omitempty"`
	Opens  string `json:"opens,omitempty"`
	Closes string `json:"closes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// statusFor maps the journal error taxonomy onto HTTP.
func statusFor(err error) (int, errorBody) {
	body := errorBody{Error: err.Error()}

	var validation *grerrors.ValidationError
	var window *grerrors.WindowClosedError
	switch {
	case errors.As(err, &validation):
		body.Kind = "validation"
		body.Field = validation.Field
		return http.StatusBadRequest, body
	case errors.As(err, &window):
		body.Kind = "window_closed"
		body.Opens = window.Opens
		body.Closes = window.Closes
		return http.StatusForbidden, body
	case grerrors.IsNotFound(err):
		body.Kind = "not_found"
		return http.StatusNotFound, body
	case grerrors.IsConflict(err):
		body.Kind = "conflict"
		return http.StatusConflict, body
	case grerrors.IsUpstream(err):
		body.Kind = "upstream"
		body.Error = "storage unavailable"
		return http.StatusServiceUnavailable, body
	default:
		body.Kind = "internal"
		body.Error = "internal error"
		return http.StatusInternalServerError, body
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body, rejecting unknown fields and trailing data.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return grerrors.Invalid("body", fmt.Sprintf("malformed JSON: %v", err))
	}
	if dec.More() {
		return grerrors.Invalid("body", "unexpected data after JSON object")
	}
	return nil
}
