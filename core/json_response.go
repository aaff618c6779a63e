package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// WriteJSON renders v as a JSON response with the given status code.
// Encoding failures after the header is written cannot be reported to the
// client; they are silently dropped and left to the caller's logger.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the wire format for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError renders a JSON error body with the given status code.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteHTTPError maps err to an HTTP response. HTTPError values render with
// their own status code; anything else is treated as an internal error.
func WriteHTTPError(w http.ResponseWriter, err error) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		WriteError(w, httpErr.Code, httpErr.Key)
		return
	}
	WriteError(w, http.StatusInternalServerError, ErrInternalServerError.Key)
}
