package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/SquizAI/JMEFIT-V3/internal/data"
	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// AuthManagerOptions groups dependencies for AuthManager.
type AuthManagerOptions struct {
	Provider ports.IdentityProvider
	Profiles ports.ProfileStore
	Sessions ports.SessionStore

	// AdminEmail is the single allowlisted address granted the admin
	// role at profile creation.
	AdminEmail string

	// SessionTTL bounds browser-session lifetime. The effective expiry
	// is the earlier of now+TTL and the provider token expiry.
	SessionTTL time.Duration

	// MinPasswordLength is enforced before any provider call.
	MinPasswordLength int

	Time   data.TimeProvider
	Logger *slog.Logger
}

// Subscriber receives state transitions. Callbacks run on the manager's
// event goroutine and must not block.
type Subscriber func(state domainauth.State, profile *domainauth.UserProfile)

// AuthManager owns the authentication lifecycle: it tracks the identity
// provider's session feed through Loading into Anonymous or
// Authenticated, resolves profiles lazily, and orchestrates login,
// signup, and logout against the browser session store.
//
// The manager starts in Loading and leaves it exactly once, when the
// provider's session-restore notification arrives. Later provider
// events reconcile the state in arrival order without passing back
// through Loading.
type AuthManager struct {
	provider ports.IdentityProvider
	profiles ports.ProfileStore
	sessions ports.SessionStore

	adminEmail  string
	sessionTTL  time.Duration
	minPassword int
	time        data.TimeProvider
	logger      *slog.Logger

	mu          sync.RWMutex
	state       domainauth.State
	profile     *domainauth.UserProfile
	subscribers map[int]Subscriber
	nextSubID   int

	ready     chan struct{}
	readyOnce sync.Once
}

// NewAuthManager constructs an AuthManager. Call Run to start consuming
// provider session events.
func NewAuthManager(opts AuthManagerOptions) *AuthManager {
	ttl := opts.SessionTTL
	if ttl == 0 {
		ttl = 12 * time.Hour
	}
	minPw := opts.MinPasswordLength
	if minPw == 0 {
		minPw = 6
	}
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthManager{
		provider:    opts.Provider,
		profiles:    opts.Profiles,
		sessions:    opts.Sessions,
		adminEmail:  strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
		sessionTTL:  ttl,
		minPassword: minPw,
		time:        tp,
		logger:      logger,
		state:       domainauth.StateLoading,
		subscribers: make(map[int]Subscriber),
		ready:       make(chan struct{}),
	}
}

// Run subscribes to the provider's session feed and applies events in
// arrival order until ctx is done. It blocks; callers run it on its own
// goroutine.
func (m *AuthManager) Run(ctx context.Context) {
	events := m.provider.SessionChanges(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			m.applyEvent(ctx, ev)
		}
	}
}

// applyEvent reconciles one provider session event. The first event of
// any kind resolves the Loading state.
func (m *AuthManager) applyEvent(ctx context.Context, ev domainauth.SessionEvent) {
	if ev.Identity == nil {
		m.transition(domainauth.StateAnonymous, nil)
		return
	}

	profile, err := m.ensureProfile(ctx, *ev.Identity)
	if err != nil {
		// A session exists but the profile cannot be resolved; better
		// anonymous than a half-authenticated state.
		m.logger.Error("profile resolution failed on session event",
			"uid", ev.Identity.UID,
			"error", err)
		m.transition(domainauth.StateAnonymous, nil)
		return
	}
	m.transition(domainauth.StateAuthenticated, &profile)
}

func (m *AuthManager) transition(state domainauth.State, profile *domainauth.UserProfile) {
	m.mu.Lock()
	m.state = state
	m.profile = profile
	subs := make([]Subscriber, 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.readyOnce.Do(func() { close(m.ready) })

	for _, fn := range subs {
		fn(state, profile)
	}
}

// Current returns the manager's state and, when authenticated, the
// resolved profile.
func (m *AuthManager) Current() (domainauth.State, *domainauth.UserProfile) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return m.state, nil
	}
	p := *m.profile
	return m.state, &p
}

// Subscribe registers fn for state transitions and returns an
// unsubscribe function.
func (m *AuthManager) Subscribe(fn Subscriber) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// Ready returns a channel closed once the initial session restore has
// resolved. Protected surfaces wait on it rather than serving during
// Loading.
func (m *AuthManager) Ready() <-chan struct{} { return m.ready }

// WaitReady blocks until the manager leaves Loading or ctx expires.
func (m *AuthManager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login signs the session in with email/password credentials. The
// browser session keeps its ID, so the cart and any parked selection
// survive the transition.
func (m *AuthManager) Login(ctx context.Context, sessionID, email, password string) (domainauth.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domainauth.Session{}, apperrors.Validation("Email and password are required.")
	}

	identity, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return domainauth.Session{}, apperrors.MapIdentityError(err)
	}

	profile, err := m.ensureProfile(ctx, identity)
	if err != nil {
		return domainauth.Session{}, err
	}

	return m.bindSession(ctx, sessionID, identity, profile)
}

// SignUp creates a new account and signs the session in. Inputs are
// validated before any provider call; a profile-creation failure after
// the identity exists triggers the compensating identity delete so the
// email can sign up again.
func (m *AuthManager) SignUp(ctx context.Context, sessionID string, in ports.SignUpInput) (domainauth.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)

	if err := m.validateSignUp(in); err != nil {
		return domainauth.Session{}, err
	}

	identity, err := m.provider.SignUp(ctx, in)
	if err != nil {
		return domainauth.Session{}, apperrors.MapIdentityError(err)
	}
	if identity.DisplayName == "" {
		identity.DisplayName = in.DisplayName
	}

	profile := m.newProfile(identity)
	if createErr := m.profiles.Create(ctx, profile); createErr != nil {
		m.rollbackIdentity(ctx, identity.UID, createErr)
		return domainauth.Session{}, apperrors.Wrap(createErr, apperrors.ErrCodeInternal,
			"We couldn't finish creating your account. Please try again.")
	}

	return m.bindSession(ctx, sessionID, identity, profile)
}

// Logout ends the identity session. The browser session survives as
// anonymous with the same ID, so the cart is kept.
func (m *AuthManager) Logout(ctx context.Context, sess domainauth.Session) (domainauth.Session, error) {
	if !sess.Authenticated() {
		return sess, nil
	}

	if err := m.provider.SignOut(ctx, sess.UID); err != nil {
		return domainauth.Session{}, apperrors.MapIdentityError(err)
	}

	anon := domainauth.Session{
		ID:        sess.ID,
		ExpiresAt: m.time.Now().Add(m.sessionTTL),
	}
	if err := m.sessions.Save(ctx, anon); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	return anon, nil
}

func (m *AuthManager) validateSignUp(in ports.SignUpInput) error {
	if in.Email == "" {
		return apperrors.ValidationField("email", "Email is required.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return apperrors.ValidationField("email", "Please enter a valid email address.")
	}
	if in.Password == "" {
		return apperrors.ValidationField("password", "Password is required.")
	}
	if len(in.Password) < m.minPassword {
		return apperrors.ValidationField("password",
			fmt.Sprintf("Password should be at least %d characters.", m.minPassword))
	}
	if in.DisplayName == "" {
		return apperrors.ValidationField("display_name", "Name is required.")
	}
	return nil
}

// ensureProfile resolves the profile for an identity, creating it on
// first login. The role is derived once at creation; later changes to
// the allowlist do not reclassify existing profiles. The last-login
// update is best-effort: its failure is logged, never surfaced.
func (m *AuthManager) ensureProfile(ctx context.Context, identity domainauth.Identity) (domainauth.UserProfile, error) {
	profile, err := m.profiles.Get(ctx, identity.UID)
	switch {
	case err == nil:
	case apperrors.IsCode(err, apperrors.ErrCodeNotFound):
		profile = m.newProfile(identity)
		if createErr := m.profiles.Create(ctx, profile); createErr != nil {
			if apperrors.IsCode(createErr, apperrors.ErrCodeConflict) {
				// Lost a create race; the other writer's profile wins
				return m.profiles.Get(ctx, identity.UID)
			}
			return domainauth.UserProfile{}, fmt.Errorf("create profile: %w", createErr)
		}
	default:
		return domainauth.UserProfile{}, fmt.Errorf("load profile: %w", err)
	}

	now := m.time.Now()
	if llErr := m.profiles.UpdateLastLogin(ctx, identity.UID, now); llErr != nil {
		m.logger.Warn("last-login update failed",
			"uid", identity.UID,
			"error", llErr)
	} else {
		profile.LastLogin = &now
	}

	return profile, nil
}

func (m *AuthManager) newProfile(identity domainauth.Identity) domainauth.UserProfile {
	return domainauth.UserProfile{
		UID:         identity.UID,
		Email:       strings.ToLower(identity.Email),
		DisplayName: identity.DisplayName,
		Role:        domainauth.DeriveRole(identity.Email, m.adminEmail),
		CreatedAt:   m.time.Now(),
	}
}

// rollbackIdentity deletes a just-created identity after a failed
// profile write, so the address is free to sign up again.
func (m *AuthManager) rollbackIdentity(ctx context.Context, uid string, cause error) {
	m.logger.Error("profile creation failed after signup, rolling back identity",
		"uid", uid,
		"error", cause)
	if delErr := m.provider.DeleteIdentity(ctx, uid); delErr != nil {
		// The identity is now orphaned; the next signup with this email
		// will see EMAIL_EXISTS until it is removed manually.
		m.logger.Error("identity rollback failed",
			"uid", uid,
			"error", delErr)
	}
}

// bindSession persists the authenticated browser session.
func (m *AuthManager) bindSession(ctx context.Context, sessionID string, identity domainauth.Identity, profile domainauth.UserProfile) (domainauth.Session, error) {
	expires := m.time.Now().Add(m.sessionTTL)
	if !identity.ExpiresAt.IsZero() && identity.ExpiresAt.Before(expires) {
		expires = identity.ExpiresAt
	}

	sess := domainauth.Session{
		ID:        sessionID,
		UID:       identity.UID,
		Email:     profile.Email,
		Role:      profile.Role,
		ExpiresAt: expires,
	}
	if err := m.sessions.Save(ctx, sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}

	m.logger.Info("session authenticated",
		"session_id", sessionID,
		"uid", identity.UID,
		"role", string(profile.Role))
	return sess, nil
}
