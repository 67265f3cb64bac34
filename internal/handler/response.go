package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/blog-api/internal/apperror"
)

// MessageResponse is the body of every non-validation error response and of
// the delete confirmation, e.g. {"message":"Post not found"}.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationResponse is the body of a failed validation: one list of rule
// messages per offending field, e.g.
// {"errors":{"email":["The email has already been taken."]}}.
type ValidationResponse struct {
	Errors map[string][]string `json:"errors"`
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must go out before the body, so the order here is fixed.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error onto the HTTP surface.
//
// The service layer returns apperror values; this is the single place where
// they become status codes and bodies:
//
//	ErrValidation      → 422 {"errors": {...}}
//	ErrNotFound        → 404 {"message": "..."}
//	ErrUnauthorized    → 401 {"message": "Unauthorized"}
//	ErrUnauthenticated → 401 {"message": "Unauthenticated."}
//	anything else      → 500, generic body, nothing internal leaked
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: appErr.Fields})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, MessageResponse{Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrUnauthorized),
			errors.Is(err, apperror.ErrUnauthenticated):
			writeJSON(w, http.StatusUnauthorized, MessageResponse{Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
				Errors: map[string][]string{"slug": {appErr.Message}},
			})
			return
		}
	}

	writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: "Server Error"})
}
