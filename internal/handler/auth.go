// Package handler contains the HTTP layer: request parsing, response
// shaping and the translation of domain errors into status codes. No
// business rules live here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/blog-api/internal/service"
)

// AuthHandler serves the two public endpoints: registration and login.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// HandleRegister creates a new account.
//
// HTTP: POST /register
// Body: {"name", "email", "password", "password_confirmation"}
// 201 {"user": {...}} on success, 422 {"errors": {...}} on validation failure.
// The returned user never includes the password hash.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid JSON body"})
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// loginRequest is the login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns a bearer token.
//
// HTTP: POST /login
// Body: {"email", "password"}
// 200 {"token": "..."} on success; 401 {"message":"Unauthorized"} on any
// credential failure, with an identical body for unknown email and wrong
// password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: "Invalid JSON body"})
		return
	}

	token, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
