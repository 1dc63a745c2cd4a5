package httpx

import (
	"errors"
	"net/http"

	"github.com/SquizAI/JMEFIT-V3/internal/ports"
	"github.com/SquizAI/JMEFIT-V3/internal/service"
)

var errUnknownPackage = errors.New("unknown service package")

// DashboardHandlers serves the signed-in member area: profile summary,
// order history, and session booking.
type DashboardHandlers struct {
	Checkout *service.CheckoutService
	Bookings *service.BookingService
	Profiles ports.ProfileStore
}

// Home handles GET /dashboard.
func (h *DashboardHandlers) Home(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	profile, err := h.Profiles.Get(r.Context(), sess.UID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

// Services handles GET /dashboard/services (order history).
func (h *DashboardHandlers) Services(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	orders, err := h.Checkout.OrderHistory(r.Context(), sess.UID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type bookingRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
	Slot string `json:"slot"` // e.g. "10:00"
}

// CreateBooking handles POST /dashboard/bookings.
func (h *DashboardHandlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	var req bookingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	booking, err := h.Bookings.Book(r.Context(), sess.UID, req.Date, req.Slot)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"booking": booking})
}

// ListBookings handles GET /dashboard/bookings.
func (h *DashboardHandlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	bookings, err := h.Bookings.List(r.Context(), sess.UID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"slots":    h.Bookings.Slots(),
	})
}

// AdminHandlers serves the admin-only surfaces.
type AdminHandlers struct {
	Profiles ports.ProfileStore
}

// ListUsers handles GET /admin/users.
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Profiles.List(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": profiles})
}
