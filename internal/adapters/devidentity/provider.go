// Package devidentity provides an in-memory identity provider for local
// development. It enforces the same rules and emits the same wire codes
// as the hosted provider, so the rest of the stack cannot tell them apart.
package devidentity

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// Config controls the dev identity provider.
type Config struct {
	// SeedEmail/SeedPassword pre-register one account so a fresh
	// environment has a known login. Both empty means no seed account.
	SeedEmail    string
	SeedPassword string
	SeedName     string

	// SessionDuration is the lifetime of issued identities. Defaults
	// to 12h when zero.
	SessionDuration time.Duration
}

type account struct {
	uid         string
	email       string
	password    string
	displayName string
}

// Provider implements ports.IdentityProvider against an in-memory
// account table. Safe for concurrent use.
type Provider struct {
	mu          sync.Mutex
	accounts    map[string]*account // keyed by lowercase email
	subscribers []chan domainauth.SessionEvent
	current     *domainauth.Identity
	duration    time.Duration
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a dev identity provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 12 * time.Hour
	}
	p := &Provider{
		accounts: make(map[string]*account),
		duration: dur,
	}
	if cfg.SeedEmail != "" {
		if cfg.SeedPassword == "" {
			return nil, fmt.Errorf("dev identity: seed account %s has no password", cfg.SeedEmail)
		}
		uid, err := randomUID()
		if err != nil {
			return nil, fmt.Errorf("dev identity: seed uid: %w", err)
		}
		p.accounts[strings.ToLower(cfg.SeedEmail)] = &account{
			uid:         uid,
			email:       strings.ToLower(cfg.SeedEmail),
			password:    cfg.SeedPassword,
			displayName: cfg.SeedName,
		}
	}
	return p, nil
}

// SignIn verifies credentials against the in-memory table. Unknown
// emails and wrong passwords both report INVALID_LOGIN_CREDENTIALS,
// matching the hosted provider's combined-credential response.
func (p *Provider) SignIn(_ context.Context, email, password string) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return domainauth.Identity{}, &apperrors.IdentityError{Code: apperrors.ProviderInvalidCredential}
	}
	if subtle.ConstantTimeCompare([]byte(acct.password), []byte(password)) != 1 {
		return domainauth.Identity{}, &apperrors.IdentityError{Code: apperrors.ProviderInvalidCredential}
	}

	ident := p.identityFor(acct)
	p.setCurrentLocked(&ident)
	return ident, nil
}

// SignUp registers a new account and signs it in.
func (p *Provider) SignUp(_ context.Context, in ports.SignUpInput) (domainauth.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domainauth.Identity{}, &apperrors.IdentityError{Code: apperrors.ProviderInvalidEmail, Err: err}
	}
	if len(in.Password) < 6 {
		return domainauth.Identity{}, &apperrors.IdentityError{Code: apperrors.ProviderWeakPassword}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return domainauth.Identity{}, &apperrors.IdentityError{Code: apperrors.ProviderEmailExists}
	}

	uid, err := randomUID()
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("generate uid: %w", err)
	}
	acct := &account{
		uid:         uid,
		email:       email,
		password:    in.Password,
		displayName: in.DisplayName,
	}
	p.accounts[email] = acct

	ident := p.identityFor(acct)
	p.setCurrentLocked(&ident)
	return ident, nil
}

// SignOut clears the current identity if it matches uid.
func (p *Provider) SignOut(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.UID == uid {
		p.setCurrentLocked(nil)
	}
	return nil
}

// DeleteIdentity removes the account for uid. This is the compensating
// action run when profile creation fails after a successful signup.
func (p *Provider) DeleteIdentity(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for email, acct := range p.accounts {
		if acct.uid == uid {
			delete(p.accounts, email)
			if p.current != nil && p.current.UID == uid {
				p.setCurrentLocked(nil)
			}
			return nil
		}
	}
	return apperrors.NotFoundf("identity %s not found", uid)
}

// SessionChanges returns a feed that fires once with the current state
// and again on every sign-in and sign-out, in order. The channel closes
// when ctx is done.
func (p *Provider) SessionChanges(ctx context.Context) <-chan domainauth.SessionEvent {
	ch := make(chan domainauth.SessionEvent, 16)

	p.mu.Lock()
	// Initial event reflects the state at subscription time
	ch <- domainauth.SessionEvent{Identity: copyIdentity(p.current)}
	p.subscribers = append(p.subscribers, ch)
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		for i, sub := range p.subscribers {
			if sub == ch {
				p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
				break
			}
		}
		p.mu.Unlock()
		close(ch)
	}()

	return ch
}

// setCurrentLocked updates the current identity and fans the change out
// to subscribers. Callers hold p.mu.
func (p *Provider) setCurrentLocked(ident *domainauth.Identity) {
	p.current = copyIdentity(ident)
	for _, sub := range p.subscribers {
		select {
		case sub <- domainauth.SessionEvent{Identity: copyIdentity(p.current)}:
		default:
			// Slow subscriber; drop rather than block sign-in
		}
	}
}

func (p *Provider) identityFor(acct *account) domainauth.Identity {
	return domainauth.Identity{
		UID:         acct.uid,
		Email:       acct.email,
		DisplayName: acct.displayName,
		ExpiresAt:   time.Now().Add(p.duration),
	}
}

func copyIdentity(ident *domainauth.Identity) *domainauth.Identity {
	if ident == nil {
		return nil
	}
	c := *ident
	return &c
}

func randomUID() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "dev-" + base64.RawURLEncoding.EncodeToString(b), nil
}
