package httpx

import (
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
	"github.com/SquizAI/JMEFIT-V3/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     *service.AuthManager
	Carts    *service.CartService
	Checkout *service.CheckoutService
	Bookings *service.BookingService
	Profiles ports.ProfileStore
	Sessions ports.SessionStore

	SessionTTL   time.Duration
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router. Every route runs
// behind session resolution; protected routes additionally wait for the
// auth manager's ready gate and require authentication.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Auth:         services.Auth,
		Carts:        services.Carts,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	catalogHandlers := &CatalogHandlers{Carts: services.Carts}
	cartHandlers := &CartHandlers{Carts: services.Carts}
	checkoutHandlers := &CheckoutHandlers{Checkout: services.Checkout, Carts: services.Carts}
	dashboardHandlers := &DashboardHandlers{
		Checkout: services.Checkout,
		Bookings: services.Bookings,
		Profiles: services.Profiles,
	}
	adminHandlers := &AdminHandlers{Profiles: services.Profiles}

	ready := RequireReady(services.Auth)
	authed := func(h http.HandlerFunc) http.Handler {
		return ready(RequireAuth()(h))
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return ready(RequireRole(domainauth.RoleAdmin)(h))
	}

	// Auth
	mux.Handle("POST /auth/login", ready(http.HandlerFunc(authHandlers.Login)))
	mux.Handle("POST /auth/signup", ready(http.HandlerFunc(authHandlers.Signup)))
	mux.Handle("POST /auth/logout", http.HandlerFunc(authHandlers.Logout))

	// Catalog
	mux.HandleFunc("GET /services", catalogHandlers.List)
	mux.HandleFunc("GET /services/{category}", catalogHandlers.ByCategory)
	mux.HandleFunc("POST /services/{category}/select", catalogHandlers.Select)

	// Cart
	mux.HandleFunc("GET /cart", cartHandlers.Get)
	mux.HandleFunc("POST /cart/items", cartHandlers.AddItem)
	mux.HandleFunc("DELETE /cart/items/{id}", cartHandlers.RemoveItem)

	// Checkout
	mux.HandleFunc("GET /checkout/{packageRef}", checkoutHandlers.Summary)
	mux.Handle("POST /checkout", authed(checkoutHandlers.Submit))

	// Dashboard
	mux.Handle("GET /dashboard", authed(dashboardHandlers.Home))
	mux.Handle("GET /dashboard/services", authed(dashboardHandlers.Services))
	mux.Handle("POST /dashboard/bookings", authed(dashboardHandlers.CreateBooking))
	mux.Handle("GET /dashboard/bookings", authed(dashboardHandlers.ListBookings))

	// Admin
	mux.Handle("GET /admin/users", adminOnly(http.HandlerFunc(adminHandlers.ListUsers)))

	// Health
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	sessionMW := &SessionMiddleware{
		Store:        services.Sessions,
		TTL:          services.SessionTTL,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}

	var handler http.Handler = sessionMW.Handler(mux)
	if services.Logger != nil {
		handler = Logging(services.Logger)(Recover(services.Logger)(handler))
	}
	return handler
}
