// Package service contains the storefront orchestration layer: cart
// operations, the auth session manager, and the checkout flow. Services
// coordinate ports; they hold no storage of their own beyond in-flight
// guards.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SquizAI/JMEFIT-V3/internal/domain/cart"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/catalog"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// CartServiceOptions groups dependencies for CartService.
type CartServiceOptions struct {
	Carts     ports.CartStore
	Selection ports.SelectionBridge
	Logger    *slog.Logger
}

// CartService mediates cart mutations. Every mutation validates against
// the catalog and writes a wholly new item sequence back to the store.
type CartService struct {
	carts     ports.CartStore
	selection ports.SelectionBridge
	logger    *slog.Logger
}

// NewCartService constructs a new CartService.
func NewCartService(opts CartServiceOptions) *CartService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{
		carts:     opts.Carts,
		selection: opts.Selection,
		logger:    logger,
	}
}

// Get returns the session's cart.
func (s *CartService) Get(ctx context.Context, sessionID string) (cart.Items, error) {
	items, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return items, nil
}

// Add puts the offering into the session's cart. An offering already in
// the cart stays as first added; the duplicate add is accepted silently.
func (s *CartService) Add(ctx context.Context, sessionID, offeringID string) (cart.Items, error) {
	offering, ok := catalog.ByID(offeringID)
	if !ok {
		return nil, apperrors.ValidationField("offering_id", "Unknown service package.")
	}

	items, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	updated := items.Add(offering.CartItem())
	if err := s.carts.Put(ctx, sessionID, updated); err != nil {
		return nil, fmt.Errorf("store cart: %w", err)
	}
	return updated, nil
}

// Remove takes the offering out of the session's cart. Removing an
// absent id is a no-op.
func (s *CartService) Remove(ctx context.Context, sessionID, offeringID string) (cart.Items, error) {
	items, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	updated := items.Remove(offeringID)
	if err := s.carts.Put(ctx, sessionID, updated); err != nil {
		return nil, fmt.Errorf("store cart: %w", err)
	}
	return updated, nil
}

// Clear empties the session's cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// Park stores the offering as the session's pending selection, to be
// absorbed into the cart after the visitor authenticates.
func (s *CartService) Park(ctx context.Context, sessionID, offeringID string) error {
	offering, ok := catalog.ByID(offeringID)
	if !ok {
		return apperrors.ValidationField("offering_id", "Unknown service package.")
	}
	if err := s.selection.Offer(ctx, sessionID, offering.CartItem()); err != nil {
		return fmt.Errorf("park selection: %w", err)
	}
	return nil
}

// AbsorbSelection consumes the session's pending selection, if any, and
// adds it to the cart. It reports the post-auth redirect target: /cart
// when a selection was waiting, /dashboard otherwise. The consume is
// exactly-once, so a second call after login lands on /dashboard.
func (s *CartService) AbsorbSelection(ctx context.Context, sessionID string) (string, error) {
	item, ok, err := s.selection.Consume(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("consume selection: %w", err)
	}
	if !ok {
		return "/dashboard", nil
	}

	items, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load cart: %w", err)
	}
	if err := s.carts.Put(ctx, sessionID, items.Add(item)); err != nil {
		return "", fmt.Errorf("store cart: %w", err)
	}

	s.logger.Debug("absorbed parked selection",
		"session_id", sessionID,
		"offering_id", item.ID)
	return "/cart", nil
}
