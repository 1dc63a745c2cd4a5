package httpx

import (
	"net/http"

	"github.com/SquizAI/JMEFIT-V3/internal/domain/cart"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/catalog"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
	"github.com/SquizAI/JMEFIT-V3/internal/service"
)

// CheckoutHandlers serves the checkout summary and submit.
type CheckoutHandlers struct {
	Checkout *service.CheckoutService
	Carts    *service.CartService
}

// Summary handles GET /checkout/{packageRef}. It answers with the named
// package and the current cart so the payment page can render both. An
// empty cart means there is nothing to pay for; the visitor is pointed
// back at the services page before any payment form renders.
func (h *CheckoutHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())
	items, err := h.Carts.Get(r.Context(), sess.ID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if len(items) == 0 {
		WriteJSON(w, http.StatusOK, map[string]any{
			"redirect_to": "/services",
		})
		return
	}

	offering, ok := catalog.ByID(r.PathValue("packageRef"))
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "unknown_package",
			Err:     errUnknownPackage,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"package": offering,
		"cart": map[string]any{
			"items":       items,
			"total_cents": items.TotalCents(),
			"total":       cart.FormatUSD(items.TotalCents()),
		},
	})
}

type submitRequest struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVC        string `json:"cvc"`
}

// Submit handles POST /checkout.
func (h *CheckoutHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	var req submitRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Checkout.Submit(r.Context(), *sess, ports.CardDetails{
		Number: req.CardNumber,
		Expiry: req.Expiry,
		CVC:    req.CVC,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	payload := map[string]any{"redirect_to": res.RedirectTo}
	if res.Order != nil {
		payload["order"] = res.Order
	}
	WriteJSON(w, http.StatusOK, payload)
}
