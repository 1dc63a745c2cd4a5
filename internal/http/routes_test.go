package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/JMEFIT-V3/internal/data"
	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/mocks/storefront"
	"github.com/SquizAI/JMEFIT-V3/internal/service"
)

type routerFixture struct {
	provider *storefront.MockIdentityProvider
	profiles *storefront.MemoryProfileStore
	sessions *storefront.MemorySessionStore
	carts    *storefront.MemoryCartStore
	bridge   *storefront.MemorySelectionBridge
	gateway  *storefront.MockPaymentGateway
	orders   *storefront.MemoryOrderRepo

	manager *service.AuthManager
	server  *httptest.Server
	cancel  context.CancelFunc

	cookie *http.Cookie // session cookie captured from responses
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	f := &routerFixture{
		provider: storefront.NewMockIdentityProvider(),
		profiles: storefront.NewMemoryProfileStore(),
		sessions: storefront.NewMemorySessionStore(),
		carts:    storefront.NewMemoryCartStore(),
		bridge:   storefront.NewMemorySelectionBridge(),
		gateway:  &storefront.MockPaymentGateway{},
		orders:   &storefront.MemoryOrderRepo{},
	}

	clock := data.NewFixedTimeProvider(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	f.sessions.Now = clock.Now
	f.manager = service.NewAuthManager(service.AuthManagerOptions{
		Provider:   f.provider,
		Profiles:   f.profiles,
		Sessions:   f.sessions,
		AdminEmail: "admin@jmefit.com",
		SessionTTL: 12 * time.Hour,
		Time:       clock,
		Logger:     logger,
	})

	carts := service.NewCartService(service.CartServiceOptions{
		Carts:     f.carts,
		Selection: f.bridge,
		Logger:    logger,
	})
	checkout := service.NewCheckoutService(service.CheckoutServiceOptions{
		Carts:   f.carts,
		Gateway: f.gateway,
		Orders:  f.orders,
		Time:    clock,
		Logger:  logger,
	})
	bookings := service.NewBookingService(service.BookingServiceOptions{
		Bookings: &storefront.MemoryBookingRepo{},
		Time:     clock,
		Logger:   logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	t.Cleanup(cancel)
	go f.manager.Run(ctx) // default provider feed fires the restore event
	require.NoError(t, f.manager.WaitReady(ctx))

	handler := NewRouter(RouterServices{
		Auth:       f.manager,
		Carts:      carts,
		Checkout:   checkout,
		Bookings:   bookings,
		Profiles:   f.profiles,
		Sessions:   f.sessions,
		SessionTTL: 12 * time.Hour,
		Logger:     logger,
	})
	f.server = httptest.NewServer(handler)
	t.Cleanup(f.server.Close)
	return f
}

// do sends a request, carrying the captured session cookie and keeping
// it updated from Set-Cookie headers.
func (f *routerFixture) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			f.cookie = c
		}
	}

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), "body: %s", raw)
	}
	return resp, payload
}

func (f *routerFixture) login(t *testing.T, email string) {
	t.Helper()
	resp, _ := f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_SessionCookieMintedOnFirstTouch(t *testing.T) {
	f := newRouterFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/services", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, f.cookie)
	assert.NotEmpty(t, f.cookie.Value)
	assert.True(t, f.cookie.HttpOnly)

	// The same cookie is reused on the next request
	prev := f.cookie.Value
	resp, _ = f.do(t, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, prev, f.cookie.Value)
}

func TestRouter_CatalogEndpoints(t *testing.T) {
	f := newRouterFixture(t)

	resp, payload := f.do(t, http.MethodGet, "/services", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	offerings := payload["offerings"].([]any)
	assert.Len(t, offerings, 12)

	resp, payload = f.do(t, http.MethodGet, "/services/nutrition", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, payload["offerings"].([]any), 3)

	resp, _ = f.do(t, http.MethodGet, "/services/yoga", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_AnonymousSelectParksAndRedirectsToLogin(t *testing.T) {
	f := newRouterFixture(t)

	resp, payload := f.do(t, http.MethodPost, "/services/online-coaching/select", map[string]string{
		"offering_id": "oc-premium",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/login", payload["redirect_to"])

	// Cart is still empty; the selection waits on the bridge
	_, cartPayload := f.do(t, http.MethodGet, "/cart", nil)
	assert.Empty(t, cartPayload["items"])
}

func TestRouter_LoginAbsorbsParkedSelection(t *testing.T) {
	f := newRouterFixture(t)

	_, _ = f.do(t, http.MethodPost, "/services/online-coaching/select", map[string]string{
		"offering_id": "oc-elite",
	})

	resp, payload := f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "member@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/cart", payload["redirect_to"])

	_, cartPayload := f.do(t, http.MethodGet, "/cart", nil)
	items := cartPayload["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "oc-elite", items[0].(map[string]any)["id"])
}

func TestRouter_LoginWithoutSelectionGoesToDashboard(t *testing.T) {
	f := newRouterFixture(t)
	_, _ = f.do(t, http.MethodGet, "/services", nil) // mint session

	resp, payload := f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "member@example.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", payload["redirect_to"])
}

func TestRouter_AuthenticatedSelectGoesStraightToCart(t *testing.T) {
	f := newRouterFixture(t)
	f.login(t, "member@example.com")

	resp, payload := f.do(t, http.MethodPost, "/services/nutrition/select", map[string]string{
		"offering_id": "nt-meal-plan",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/cart", payload["redirect_to"])
	assert.Len(t, payload["items"].([]any), 1)
}

func TestRouter_CartAddRemove(t *testing.T) {
	f := newRouterFixture(t)

	resp, payload := f.do(t, http.MethodPost, "/cart/items", map[string]string{
		"offering_id": "pt-online",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "$199.00", payload["total"])

	// Duplicate add keeps the first entry
	_, payload = f.do(t, http.MethodPost, "/cart/items", map[string]string{
		"offering_id": "pt-online",
	})
	assert.Len(t, payload["items"].([]any), 1)

	resp, payload = f.do(t, http.MethodDelete, "/cart/items/pt-online", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, payload["items"])
	assert.Equal(t, "$0.00", payload["total"])
}

func TestRouter_CartAddUnknownOffering(t *testing.T) {
	f := newRouterFixture(t)

	resp, payload := f.do(t, http.MethodPost, "/cart/items", map[string]string{
		"offering_id": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation", payload["error"])
}

func TestRouter_LoginBadCredentialsMessage(t *testing.T) {
	f := newRouterFixture(t)
	f.provider.SignInFunc = func(context.Context, string, string) (domainauth.Identity, error) {
		return domainauth.Identity{}, &apperrors.IdentityError{Code: apperrors.ProviderInvalidCredential}
	}
	_, _ = f.do(t, http.MethodGet, "/services", nil)

	resp, payload := f.do(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "member@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password. Please check your credentials.", payload["message"])
}

func TestRouter_SignupWeakPasswordMessage(t *testing.T) {
	f := newRouterFixture(t)

	resp, payload := f.do(t, http.MethodPost, "/auth/signup", map[string]string{
		"email":        "new@example.com",
		"password":     "12345",
		"display_name": "New",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Password should be at least 6 characters.", payload["message"])
	assert.Equal(t, "password", payload["field"])
}

func TestRouter_CheckoutRequiresAuth(t *testing.T) {
	f := newRouterFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/checkout", map[string]string{
		"card_number": "4242424242424242",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_CheckoutEmptyCartRedirectsToServices(t *testing.T) {
	f := newRouterFixture(t)
	f.login(t, "member@example.com")

	resp, payload := f.do(t, http.MethodPost, "/checkout", map[string]string{
		"card_number": "4242424242424242", "expiry": "12/27", "cvc": "123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/services", payload["redirect_to"])
}

func TestRouter_CheckoutFlow(t *testing.T) {
	f := newRouterFixture(t)
	f.login(t, "member@example.com")

	_, _ = f.do(t, http.MethodPost, "/cart/items", map[string]string{"offering_id": "gt-unlimited"})

	resp, payload := f.do(t, http.MethodPost, "/checkout", map[string]string{
		"card_number": "4242424242424242", "expiry": "12/27", "cvc": "123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", payload["redirect_to"])
	require.NotNil(t, payload["order"])

	// Cart cleared, order visible in history
	_, cartPayload := f.do(t, http.MethodGet, "/cart", nil)
	assert.Empty(t, cartPayload["items"])

	resp, historyPayload := f.do(t, http.MethodGet, "/dashboard/services", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, historyPayload["orders"].([]any), 1)
}

func TestRouter_CheckoutSummary(t *testing.T) {
	f := newRouterFixture(t)
	_, _ = f.do(t, http.MethodPost, "/cart/items", map[string]string{"offering_id": "pt-program"})

	resp, payload := f.do(t, http.MethodGet, "/checkout/pt-program", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pkg := payload["package"].(map[string]any)
	assert.Equal(t, "pt-program", pkg["id"])
	assert.Len(t, payload["cart"].(map[string]any)["items"].([]any), 1)

	resp, _ = f.do(t, http.MethodGet, "/checkout/unknown-ref", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_CheckoutSummaryEmptyCartRedirectsToServices(t *testing.T) {
	f := newRouterFixture(t)
	f.login(t, "member@example.com")

	resp, payload := f.do(t, http.MethodGet, "/checkout/pt-program", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/services", payload["redirect_to"])
	// No payment form data for an empty cart
	assert.NotContains(t, payload, "package")
	assert.NotContains(t, payload, "cart")
}

func TestRouter_DashboardRequiresAuth(t *testing.T) {
	f := newRouterFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_BookingFlow(t *testing.T) {
	f := newRouterFixture(t)
	f.login(t, "member@example.com")

	resp, payload := f.do(t, http.MethodPost, "/dashboard/bookings", map[string]string{
		"date": "2025-06-20", "slot": "10:00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	booking := payload["booking"].(map[string]any)
	assert.Equal(t, "10:00", booking["slot"])

	// Same slot again conflicts
	resp, _ = f.do(t, http.MethodPost, "/dashboard/bookings", map[string]string{
		"date": "2025-06-20", "slot": "10:00",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, payload = f.do(t, http.MethodGet, "/dashboard/bookings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, payload["bookings"].([]any), 1)
	assert.Len(t, payload["slots"].([]any), 7)
}

func TestRouter_AdminGate(t *testing.T) {
	f := newRouterFixture(t)
	f.login(t, "member@example.com")

	resp, _ := f.do(t, http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_AdminListUsers(t *testing.T) {
	f := newRouterFixture(t)
	f.provider.DefaultIdentity.UID = "uid-admin"
	f.login(t, "admin@jmefit.com")

	resp, payload := f.do(t, http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, payload["users"].([]any), 1)
}

func TestRouter_LogoutKeepsCart(t *testing.T) {
	f := newRouterFixture(t)
	f.login(t, "member@example.com")
	_, _ = f.do(t, http.MethodPost, "/cart/items", map[string]string{"offering_id": "gt-hiit"})

	resp, payload := f.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", payload["redirect_to"])

	// Still anonymous access to the cart with the same session
	_, cartPayload := f.do(t, http.MethodGet, "/cart", nil)
	assert.Len(t, cartPayload["items"].([]any), 1)

	// But the dashboard is gone
	resp, _ = f.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)

	resp, payload := f.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", payload["status"])
	// No session cookie for health probes
	assert.Nil(t, f.cookie)
}
