package httpx

import (
	"net/http"

	"github.com/SquizAI/JMEFIT-V3/internal/service"
)

// CartHandlers serves the session cart.
type CartHandlers struct {
	Carts *service.CartService
}

// Get handles GET /cart.
func (h *CartHandlers) Get(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	items, err := h.Carts.Get(r.Context(), sess.ID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeCartPayload(w, http.StatusOK, items, "")
}

type addItemRequest struct {
	OfferingID string `json:"offering_id"`
}

// AddItem handles POST /cart/items.
func (h *CartHandlers) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	var req addItemRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	items, err := h.Carts.Add(r.Context(), sess.ID, req.OfferingID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeCartPayload(w, http.StatusOK, items, "")
}

// RemoveItem handles DELETE /cart/items/{id}.
func (h *CartHandlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, _ := GetSessionFromContext(r.Context())

	items, err := h.Carts.Remove(r.Context(), sess.ID, r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	writeCartPayload(w, http.StatusOK, items, "")
}
