package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
	"github.com/SquizAI/JMEFIT-V3/internal/service"
)

// AuthHandlers serves login, signup, and logout. After a successful
// authentication it consumes the parked selection exactly once and
// reports the redirect target in the response.
type AuthHandlers struct {
	Auth         *service.AuthManager
	Carts        *service.CartService
	CookieDomain string
	Logger       *slog.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	authed, err := h.Auth.Login(r.Context(), sess.ID, req.Email, req.Password)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.finishAuth(w, r, authed)
}

// Signup handles POST /auth/signup.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	var req signupRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	authed, err := h.Auth.SignUp(r.Context(), sess.ID, ports.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.finishAuth(w, r, authed)
}

// Logout handles POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	anon, err := h.Auth.Logout(r.Context(), *sess)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	SetSessionCookie(w, r, h.CookieDomain, anon)
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "logged_out",
		"redirect_to": "/",
	})
}

// finishAuth refreshes the session cookie, absorbs any parked selection,
// and answers with the session summary and redirect target.
func (h *AuthHandlers) finishAuth(w http.ResponseWriter, r *http.Request, sess domainauth.Session) {
	SetSessionCookie(w, r, h.CookieDomain, sess)

	redirect, err := h.Carts.AbsorbSelection(r.Context(), sess.ID)
	if err != nil {
		// The login itself succeeded; losing the parked selection is
		// not worth failing it over.
		if h.Logger != nil {
			h.Logger.Warn("post-auth selection absorb failed",
				"session_id", sess.ID,
				"error", err)
		}
		redirect = "/dashboard"
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"session": map[string]any{
			"uid":   sess.UID,
			"email": sess.Email,
			"role":  sess.Role,
		},
		"expires_at":  sess.ExpiresAt,
		"redirect_to": redirect,
	})
}
