// Package identity provides the hosted identity-provider adapter. It
// speaks the identity toolkit REST API for credential operations,
// verifies issued ID tokens with go-oidc, and refreshes them through the
// secure-token endpoint using oauth2.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
)

// Client is a thin REST client for the identity toolkit endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a Client. httpClient may be nil, in which case a
// 30s-timeout client is used.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// tokenResponse is the common response shape of the sign-in and sign-up
// endpoints.
type tokenResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	ExpiresIn    string `json:"expiresIn"` // seconds, as a string
}

func (r tokenResponse) expiry(now time.Time) time.Time {
	secs, err := strconv.ParseInt(r.ExpiresIn, 10, 64)
	if err != nil || secs <= 0 {
		secs = 3600
	}
	return now.Add(time.Duration(secs) * time.Second)
}

// errorEnvelope is the provider's error payload. Message carries the
// wire code, sometimes with a suffix like "TOO_MANY_ATTEMPTS_TRY_LATER :
// Access to this account...".
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword exchanges email/password for tokens.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (tokenResponse, error) {
	return c.tokenCall(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

// SignUp creates a new account.
func (c *Client) SignUp(ctx context.Context, email, password string) (tokenResponse, error) {
	return c.tokenCall(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

// UpdateDisplayName sets the display name on the account owning idToken.
func (c *Client) UpdateDisplayName(ctx context.Context, idToken, displayName string) error {
	_, err := c.tokenCall(ctx, "accounts:update", map[string]any{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": false,
	})
	return err
}

// DeleteAccount removes the account owning idToken.
func (c *Client) DeleteAccount(ctx context.Context, idToken string) error {
	_, err := c.tokenCall(ctx, "accounts:delete", map[string]any{
		"idToken": idToken,
	})
	return err
}

func (c *Client) tokenCall(ctx context.Context, method string, payload map[string]any) (tokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("marshal %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("read %s response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		return tokenResponse{}, decodeProviderError(resp.StatusCode, data)
	}

	var tr tokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return tokenResponse{}, fmt.Errorf("decode %s response: %w", method, err)
	}
	return tr, nil
}

// decodeProviderError extracts the wire code from an error payload.
// The code is the first whitespace-delimited token of the message, so
// suffixed variants still map.
func decodeProviderError(status int, body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Message == "" {
		return &apperrors.IdentityError{
			Code: fmt.Sprintf("HTTP_%d", status),
		}
	}
	code := env.Error.Message
	if i := strings.IndexAny(code, " :"); i > 0 {
		code = code[:i]
	}
	return &apperrors.IdentityError{Code: code}
}
