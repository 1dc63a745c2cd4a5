package httpx

import (
	"errors"
	"net/http"

	"github.com/SquizAI/JMEFIT-V3/internal/domain/cart"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/catalog"
	"github.com/SquizAI/JMEFIT-V3/internal/service"
)

// CatalogHandlers serves the offering catalog and the package-select
// action that feeds carts and the selection bridge.
type CatalogHandlers struct {
	Carts *service.CartService
}

// List handles GET /services.
func (h *CatalogHandlers) List(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"categories": catalog.Categories(),
		"offerings":  catalog.All(),
	})
}

var errUnknownCategory = errors.New("unknown service category")

// ByCategory handles GET /services/{category}.
func (h *CatalogHandlers) ByCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := catalog.ValidCategory(r.PathValue("category"))
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "unknown_category",
			Err:     errUnknownCategory,
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"category":  category,
		"offerings": catalog.ByCategory(category),
	})
}

type selectRequest struct {
	OfferingID string `json:"offering_id"`
}

// Select handles POST /services/{category}/select. A signed-in visitor
// gets the package straight into the cart; an anonymous one has it
// parked on the selection bridge and is pointed at the login page.
func (h *CatalogHandlers) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sess, _ := GetSessionFromContext(r.Context())

	if sess.Authenticated() {
		items, err := h.Carts.Add(r.Context(), sess.ID, req.OfferingID)
		if err != nil {
			WriteAppError(w, err)
			return
		}
		writeCartPayload(w, http.StatusOK, items, "/cart")
		return
	}

	if err := h.Carts.Park(r.Context(), sess.ID, req.OfferingID); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":      "selection_saved",
		"redirect_to": "/login",
	})
}

func writeCartPayload(w http.ResponseWriter, code int, items cart.Items, redirectTo string) {
	payload := map[string]any{
		"items":       items,
		"total_cents": items.TotalCents(),
		"total":       cart.FormatUSD(items.TotalCents()),
	}
	if redirectTo != "" {
		payload["redirect_to"] = redirectTo
	}
	WriteJSON(w, code, payload)
}
