package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SquizAI/JMEFIT-V3/internal/data"
	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/model"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// CheckoutServiceOptions groups dependencies for CheckoutService.
type CheckoutServiceOptions struct {
	Carts   ports.CartStore
	Gateway ports.PaymentGateway
	Orders  ports.OrderRepo
	Time    data.TimeProvider
	Logger  *slog.Logger
}

// CheckoutService runs the payment step of the storefront. One submit
// may be in flight per session; the guard exists because the simulated
// processor is slow and double-clicks would double-charge.
type CheckoutService struct {
	carts   ports.CartStore
	gateway ports.PaymentGateway
	orders  ports.OrderRepo
	time    data.TimeProvider
	logger  *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewCheckoutService constructs a new CheckoutService.
func NewCheckoutService(opts CheckoutServiceOptions) *CheckoutService {
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutService{
		carts:    opts.Carts,
		gateway:  opts.Gateway,
		orders:   opts.Orders,
		time:     tp,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// SubmitResult reports the outcome of a checkout submit.
type SubmitResult struct {
	// RedirectTo is where the client should go next: /services when
	// there was nothing to buy, /dashboard after a completed purchase.
	RedirectTo string

	// Order is set when a purchase completed.
	Order *model.Order
}

// Submit runs checkout for the session's cart. On success the order is
// recorded, the cart cleared, and the result points at /dashboard. On
// payment failure the cart is left intact so the visitor can retry. An
// empty cart short-circuits to /services with no payment attempted.
func (s *CheckoutService) Submit(ctx context.Context, sess domainauth.Session, card ports.CardDetails) (SubmitResult, error) {
	if !sess.Authenticated() {
		return SubmitResult{}, apperrors.Validation("Please sign in before checking out.")
	}

	if !s.begin(sess.ID) {
		return SubmitResult{}, apperrors.Conflict("Your order is already being processed.")
	}
	defer s.end(sess.ID)

	items, err := s.carts.Get(ctx, sess.ID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return SubmitResult{RedirectTo: "/services"}, nil
	}

	total := items.TotalCents()
	if _, err := s.gateway.Charge(ctx, ports.ChargeInput{
		SessionID:   sess.ID,
		AmountCents: total,
		Card:        card,
	}); err != nil {
		s.logger.Info("checkout payment failed",
			"session_id", sess.ID,
			"uid", sess.UID,
			"amount_cents", total,
			"error", err)
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return SubmitResult{}, appErr
		}
		return SubmitResult{}, apperrors.Wrap(err, apperrors.ErrCodePayment,
			"Payment failed. Please try again.")
	}

	order := &model.Order{
		UID:        sess.UID,
		TotalCents: total,
		Items:      model.OrderItemsFromCart(items),
		CreatedAt:  s.time.Now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		// Charged but unrecorded. The cart stays so support can
		// reconcile; with a real processor this would be a refund path.
		s.logger.Error("order record failed after charge",
			"session_id", sess.ID,
			"uid", sess.UID,
			"amount_cents", total,
			"error", err)
		return SubmitResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal,
			"Your payment went through but we couldn't record the order. Please contact support.")
	}

	if err := s.carts.Clear(ctx, sess.ID); err != nil {
		// The purchase completed; a stale cart is a nuisance, not a failure
		s.logger.Warn("cart clear failed after checkout",
			"session_id", sess.ID,
			"error", err)
	}

	s.logger.Info("checkout completed",
		"session_id", sess.ID,
		"uid", sess.UID,
		"order_id", order.ID,
		"amount_cents", total)
	return SubmitResult{RedirectTo: "/dashboard", Order: order}, nil
}

// OrderHistory lists the user's completed orders, newest first.
func (s *CheckoutService) OrderHistory(ctx context.Context, uid string) ([]model.Order, error) {
	orders, err := s.orders.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *CheckoutService) begin(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *CheckoutService) end(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}
