// Package httputil provides HTTP handler utilities for consistent error
// handling, JSON encoding/decoding, and request parsing.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/uth-confms/confms/pkg/errdefs"
)

// ErrorResponse is the JSON shape of every error the API returns.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError maps a service error onto its HTTP status and writes the
// standard error body.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	body := ErrorResponse{Error: err.Error()}
	if kind := errdefs.KindOf(err); kind != "" {
		body.Code = string(kind)
	}
	if status == http.StatusInternalServerError {
		// Storage details stay out of responses.
		body = ErrorResponse{Error: "internal server error", Code: body.Code}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteErrorMessage writes a JSON error response with a custom message
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// StatusForError picks the HTTP status for a service error.
func StatusForError(err error) int {
	switch errdefs.KindOf(err) {
	case errdefs.KindValidation:
		return http.StatusBadRequest
	case errdefs.KindNotFound:
		return http.StatusNotFound
	case errdefs.KindAlreadyExists, errdefs.KindInvalidTransition,
		errdefs.KindConflictOfInterest, errdefs.KindAlreadyDecided:
		return http.StatusConflict
	case errdefs.KindNotAuthenticated, errdefs.KindAnswerIncorrect:
		return http.StatusUnauthorized
	case errdefs.KindNotAuthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
