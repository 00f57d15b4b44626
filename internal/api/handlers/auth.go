// internal/api/handlers/auth.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/baharkarakas/catalog-backend/internal/api/httpx"
	"github.com/baharkarakas/catalog-backend/internal/models"
	"github.com/baharkarakas/catalog-backend/internal/services"
)

// Authenticator is what the auth endpoints need from the service layer.
type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (models.Credential, error)
	Login(ctx context.Context, email, password string) (models.Credential, error)
	ChangePassword(ctx context.Context, id, current, next string) error
}

type AuthHandler struct {
	svc Authenticator
}

func NewAuthHandler(svc Authenticator) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordReq struct {
	ID              string `json:"id"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badBody(w)
		return
	}
	u, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, httpx.Envelope{
		Success: true,
		Message: "Account created successfully!",
		User:    u.Public(),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badBody(w)
		return
	}
	u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
		Success: true,
		Message: "Login successful!",
		User:    u.Public(),
	})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badBody(w)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), req.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{Success: true, Message: "Password updated."})
}

func badBody(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, string(services.KindInvalidRequest), "Invalid request body.", nil)
}

func statusFor(k services.Kind) int {
	switch k {
	case services.KindPolicyViolation, services.KindInvalidRequest:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders only the user-safe part of err; internal detail
// was already logged by the service.
func writeServiceError(w http.ResponseWriter, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Message: "Server error. Please try again."}
	}
	var details interface{}
	if len(se.Details) > 0 {
		details = se.Details
	}
	httpx.WriteError(w, statusFor(se.Kind), string(se.Kind), se.Message, details)
}
