package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// SessionCookieName is the browser session cookie. It is minted on
// first touch so carts and parked selections have a key before the
// visitor ever authenticates.
const SessionCookieName = "jmefit_session"

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionMiddleware resolves or mints the browser session for every
// request and carries it in the request context.
type SessionMiddleware struct {
	Store        ports.SessionStore
	TTL          time.Duration
	CookieDomain string
	Logger       *slog.Logger
}

// Handler wraps next with session resolution. An unknown or expired
// cookie is replaced with a fresh anonymous session.
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health probes should not mint sessions
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		session := m.resolve(w, r)
		if session == nil {
			WriteError(w, ErrorParams{
				Code:    http.StatusInternalServerError,
				ErrCode: "session_unavailable",
				Err:     errors.New("session could not be established"),
			})
			return
		}
		ctx := SetSessionInContext(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *SessionMiddleware) resolve(w http.ResponseWriter, r *http.Request) *domainauth.Session {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if sess, getErr := m.Store.Get(r.Context(), cookie.Value); getErr == nil {
			return &sess
		}
	}

	sess := domainauth.Session{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(m.TTL),
	}
	if err := m.Store.Save(r.Context(), sess); err != nil {
		if m.Logger != nil {
			m.Logger.Error("mint anonymous session failed", "error", err)
		}
		return nil
	}
	SetSessionCookie(w, r, m.CookieDomain, sess)
	return &sess
}

// SetSessionCookie writes the session cookie based on the session's expiry.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, domain string, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// ClearSessionCookie expires the session cookie. It mirrors the
// attributes used when setting it so deletion works across browsers.
func ClearSessionCookie(w http.ResponseWriter, r *http.Request, domain string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadyGate is the slice of the auth manager the ready middleware needs.
type ReadyGate interface {
	Ready() <-chan struct{}
}

// RequireReady returns a middleware that holds requests until the auth
// manager has resolved its initial session restore, so protected
// surfaces never answer while the lifecycle is still Loading.
func RequireReady(manager ReadyGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-manager.Ready():
				next.ServeHTTP(w, r)
			case <-r.Context().Done():
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "starting_up",
					Err:     errors.New("service is still starting"),
				})
			}
		})
	}
}

// RequireAuth returns a middleware that requires an authenticated
// session. Anonymous visitors get 401 Unauthorized.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSessionFromContext(r.Context())
			if !ok || !sess.Authenticated() {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns a middleware that requires a specific role on top
// of authentication. Lesser roles get 403 Forbidden.
func RequireRole(requiredRole domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSessionFromContext(r.Context())
			if !ok || !sess.Authenticated() {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}
			if !hasRequiredRole(sess.Role, requiredRole) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hasRequiredRole checks if the user's role meets the required role.
// Role hierarchy: User < Admin.
func hasRequiredRole(userRole, requiredRole domainauth.Role) bool {
	roleHierarchy := map[domainauth.Role]int{
		domainauth.RoleUser:  0,
		domainauth.RoleAdmin: 1,
	}

	userLevel, userExists := roleHierarchy[userRole]
	requiredLevel, requiredExists := roleHierarchy[requiredRole]

	if !userExists || !requiredExists {
		return false
	}

	return userLevel >= requiredLevel
}
