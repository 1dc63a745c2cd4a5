package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// ProviderConfig holds configuration for the hosted identity provider.
type ProviderConfig struct {
	BaseURL string // identity toolkit REST base
	APIKey  string

	// IssuerURL enables ID-token verification via OIDC discovery when
	// set. Audience is the expected aud claim (the project identifier).
	IssuerURL string
	Audience  string

	// TokenURL is the secure-token refresh endpoint.
	TokenURL string

	HTTPClient *http.Client // optional
	Logger     *slog.Logger // optional
}

// session tracks the provider-side tokens for one signed-in identity.
type session struct {
	identity     domainauth.Identity
	idToken      string
	refreshToken string
}

// Provider implements ports.IdentityProvider against the hosted service.
type Provider struct {
	client   *Client
	verifier *gooidc.IDTokenVerifier
	tokenURL string
	apiKey   string
	httpc    *http.Client
	logger   *slog.Logger

	mu          sync.Mutex
	sessions    map[string]*session // keyed by uid
	current     *domainauth.Identity
	subscribers []chan domainauth.SessionEvent
}

var _ ports.IdentityProvider = (*Provider)(nil)

// NewProvider constructs a hosted identity provider. When IssuerURL is
// set, discovery runs once at startup and every issued ID token is
// verified before the identity is trusted.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("identity: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("identity: API key is required")
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Provider{
		client:   NewClient(cfg.BaseURL, cfg.APIKey, httpc),
		tokenURL: cfg.TokenURL,
		apiKey:   cfg.APIKey,
		httpc:    httpc,
		logger:   logger,
		sessions: make(map[string]*session),
	}

	if cfg.IssuerURL != "" {
		octx := context.WithValue(ctx, oauth2.HTTPClient, httpc)
		op, err := gooidc.NewProvider(octx, cfg.IssuerURL)
		if err != nil {
			return nil, fmt.Errorf("identity: oidc discovery: %w", err)
		}
		p.verifier = op.Verifier(&gooidc.Config{ClientID: cfg.Audience})
	}

	return p, nil
}

// SignIn exchanges credentials for an identity.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domainauth.Identity, error) {
	tr, err := p.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return domainauth.Identity{}, err
	}
	return p.adopt(ctx, tr)
}

// SignUp creates a new account and signs it in. DisplayName is set in a
// follow-up call; a failure there is logged but does not fail the signup,
// since the account already exists and the name can be set later.
func (p *Provider) SignUp(ctx context.Context, in ports.SignUpInput) (domainauth.Identity, error) {
	tr, err := p.client.SignUp(ctx, in.Email, in.Password)
	if err != nil {
		return domainauth.Identity{}, err
	}

	if in.DisplayName != "" {
		if nameErr := p.client.UpdateDisplayName(ctx, tr.IDToken, in.DisplayName); nameErr != nil {
			p.logger.Warn("set display name after signup failed",
				"uid", tr.LocalID,
				"error", nameErr)
		} else {
			tr.DisplayName = in.DisplayName
		}
	}

	return p.adopt(ctx, tr)
}

// SignOut drops the provider-side tokens for uid. The hosted service has
// no server-side session to terminate; forgetting the refresh token ends
// our ability to mint new ID tokens for the identity.
func (p *Provider) SignOut(_ context.Context, uid string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.sessions, uid)
	if p.current != nil && p.current.UID == uid {
		p.setCurrentLocked(nil)
	}
	return nil
}

// DeleteIdentity removes the account. It requires a live ID token, so it
// only works for identities this process signed in; that covers its one
// caller, the signup compensation path.
func (p *Provider) DeleteIdentity(ctx context.Context, uid string) error {
	p.mu.Lock()
	sess, ok := p.sessions[uid]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("identity %s has no active token to delete with", uid)
	}

	if err := p.client.DeleteAccount(ctx, sess.idToken); err != nil {
		return err
	}

	p.mu.Lock()
	delete(p.sessions, uid)
	if p.current != nil && p.current.UID == uid {
		p.setCurrentLocked(nil)
	}
	p.mu.Unlock()
	return nil
}

// SessionChanges returns a feed that fires once with the current state
// and again on every sign-in and sign-out, in order. The channel closes
// when ctx is done.
func (p *Provider) SessionChanges(ctx context.Context) <-chan domainauth.SessionEvent {
	ch := make(chan domainauth.SessionEvent, 16)

	p.mu.Lock()
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

// Refresh mints a fresh ID token for uid through the secure-token
// endpoint, extending the identity's expiry. Returns the updated
// identity.
func (p *Provider) Refresh(ctx context.Context, uid string) (domainauth.Identity, error) {
	p.mu.Lock()
	sess, ok := p.sessions[uid]
	p.mu.Unlock()
	if !ok {
		return domainauth.Identity{}, fmt.Errorf("identity %s has no refresh token", uid)
	}
	if p.tokenURL == "" {
		return domainauth.Identity{}, errors.New("identity: no token URL configured")
	}

	cfg := &oauth2.Config{
		ClientID: p.apiKey,
		Endpoint: oauth2.Endpoint{TokenURL: p.tokenURL + "?key=" + p.apiKey},
	}
	octx := context.WithValue(ctx, oauth2.HTTPClient, p.httpc)
	tok, err := cfg.TokenSource(octx, &oauth2.Token{RefreshToken: sess.refreshToken}).Token()
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("refresh token: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	sess.idToken = tok.AccessToken
	if tok.RefreshToken != "" {
		sess.refreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		sess.identity.ExpiresAt = tok.Expiry
	} else {
		sess.identity.ExpiresAt = time.Now().Add(time.Hour)
	}
	if p.current != nil && p.current.UID == uid {
		p.setCurrentLocked(&sess.identity)
	}
	return sess.identity, nil
}

// adopt verifies the token response, records the session, and publishes
// the sign-in.
func (p *Provider) adopt(ctx context.Context, tr tokenResponse) (domainauth.Identity, error) {
	if p.verifier != nil {
		if _, err := p.verifier.Verify(ctx, tr.IDToken); err != nil {
			return domainauth.Identity{}, fmt.Errorf("verify id token: %w", err)
		}
	}

	ident := domainauth.Identity{
		UID:         tr.LocalID,
		Email:       tr.Email,
		DisplayName: tr.DisplayName,
		ExpiresAt:   tr.expiry(time.Now()),
	}

	p.mu.Lock()
	p.sessions[ident.UID] = &session{
		identity:     ident,
		idToken:      tr.IDToken,
		refreshToken: tr.RefreshToken,
	}
	p.setCurrentLocked(&ident)
	p.mu.Unlock()

	return ident, nil
}

// setCurrentLocked updates the current identity and fans the change out.
// Callers hold p.mu.
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

func copyIdentity(ident *domainauth.Identity) *domainauth.Identity {
	if ident == nil {
		return nil
	}
	c := *ident
	return &c
}
