package auth

// Package auth contains domain-level types for authentication, user
// profiles, and browser sessions. It is pure and free of framework or
// adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// DeriveRole classifies an email against the single-address admin
// allowlist. The role is fixed at profile creation time and is not
// re-derived on later logins.
func DeriveRole(email, adminEmail string) Role {
	if adminEmail != "" && strings.EqualFold(strings.TrimSpace(email), adminEmail) {
		return RoleAdmin
	}
	return RoleUser
}

// UserProfile is the application-level record mirrored from the identity
// provider. UID is the stable identifier the provider issued.
type UserProfile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"` // nil until first login
}

// IsAdmin reports whether the profile carries the admin role.
func (p UserProfile) IsAdmin() bool { return p.Role == RoleAdmin }

// State is the auth session manager's position in its lifecycle.
type State int

const (
	// StateLoading is the initial state, held until the identity
	// provider's one-time session-restore notification arrives.
	StateLoading State = iota
	// StateAnonymous means no active identity session.
	StateAnonymous
	// StateAuthenticated means a provider session is active and a
	// profile has been resolved.
	StateAuthenticated
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity is the authenticated principal returned by the identity
// provider. Adapters map provider-specific payloads into this shape.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	ExpiresAt   time.Time // absolute expiry from the provider token
}

// SessionEvent is one change notification from the identity provider's
// session feed. A nil Identity means no active session. Events are
// delivered in provider order and must be applied in arrival order.
type SessionEvent struct {
	Identity *Identity
}

// Session is the server-side record persisted for a browser session.
// ID is an opaque session identifier (random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid,omitempty"` // empty until authenticated
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticated reports whether the session is bound to an identity.
func (s Session) Authenticated() bool { return s.UID != "" }
