package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/JMEFIT-V3/internal/data"
	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/mocks/storefront"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

type checkoutFixture struct {
	carts   *storefront.MemoryCartStore
	gateway *storefront.MockPaymentGateway
	orders  *storefront.MemoryOrderRepo
	svc     *CheckoutService
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		carts:   storefront.NewMemoryCartStore(),
		gateway: &storefront.MockPaymentGateway{},
		orders:  &storefront.MemoryOrderRepo{},
	}
	f.svc = NewCheckoutService(CheckoutServiceOptions{
		Carts:   f.carts,
		Gateway: f.gateway,
		Orders:  f.orders,
		Time:    data.NewFixedTimeProvider(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)),
		Logger:  slog.New(slog.DiscardHandler),
	})
	return f
}

func authedSession(id string) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		UID:       "uid-1",
		Email:     "member@example.com",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func seedCart(t *testing.T, f *checkoutFixture, sessionID string, offeringIDs ...string) {
	t.Helper()
	svc := NewCartService(CartServiceOptions{
		Carts:     f.carts,
		Selection: storefront.NewMemorySelectionBridge(),
		Logger:    slog.New(slog.DiscardHandler),
	})
	for _, id := range offeringIDs {
		_, err := svc.Add(context.Background(), sessionID, id)
		require.NoError(t, err)
	}
}

func validCard() ports.CardDetails {
	return ports.CardDetails{Number: "4242424242424242", Expiry: "12/27", CVC: "123"}
}

func TestCheckoutService_EmptyCartRedirectsToServices(t *testing.T) {
	f := newCheckoutFixture(t)

	res, err := f.svc.Submit(context.Background(), authedSession("sess-1"), validCard())
	require.NoError(t, err)
	assert.Equal(t, "/services", res.RedirectTo)
	assert.Nil(t, res.Order)

	// No payment was attempted
	assert.Equal(t, 0, f.gateway.ChargeCount())
}

func TestCheckoutService_SuccessRecordsOrderAndClearsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedCart(t, f, "sess-1", "oc-premium", "nt-meal-plan")

	res, err := f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", res.RedirectTo)
	require.NotNil(t, res.Order)
	assert.Equal(t, int64(34800), res.Order.TotalCents)
	assert.Len(t, res.Order.Items, 2)

	// Charge amount matched the cart total
	require.Equal(t, 1, f.gateway.ChargeCount())
	assert.Equal(t, int64(34800), f.gateway.Charges[0].AmountCents)

	// The order is queryable and the cart is gone
	orders, err := f.orders.ListByUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	items, err := f.carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCheckoutService_DeclineKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedCart(t, f, "sess-1", "pt-online")

	f.gateway.ChargeFunc = func(context.Context, ports.ChargeInput) (ports.ChargeResult, error) {
		return ports.ChargeResult{}, apperrors.Payment("Your card was declined. Please try a different payment method.")
	}

	_, err := f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePayment, apperrors.CodeOf(err))

	// Cart intact, nothing recorded
	items, err := f.carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	orders, err := f.orders.ListByUser(ctx, "uid-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutService_DeclineMessagePassesThrough(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedCart(t, f, "sess-1", "pt-online")

	f.gateway.ChargeFunc = func(context.Context, ports.ChargeInput) (ports.ChargeResult, error) {
		return ports.ChargeResult{}, apperrors.Payment("Your card was declined. Please try a different payment method.")
	}

	_, err := f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePayment, apperrors.CodeOf(err))
	assert.Equal(t, "Your card was declined. Please try a different payment method.", apperrors.UserMessage(err))
}

func TestCheckoutService_UnrecognizedGatewayErrorIsRetryablePayment(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedCart(t, f, "sess-1", "pt-online")

	f.gateway.ChargeFunc = func(context.Context, ports.ChargeInput) (ports.ChargeResult, error) {
		return ports.ChargeResult{}, errors.New("processor: connection reset")
	}

	_, err := f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodePayment, apperrors.CodeOf(err))
	assert.Equal(t, "Payment failed. Please try again.", apperrors.UserMessage(err))

	// Cart intact for the retry
	items, cartErr := f.carts.Get(ctx, "sess-1")
	require.NoError(t, cartErr)
	assert.Len(t, items, 1)
}

func TestCheckoutService_RejectsAnonymousSession(t *testing.T) {
	f := newCheckoutFixture(t)

	anon := domainauth.Session{ID: "sess-1", ExpiresAt: time.Now().Add(time.Hour)}
	_, err := f.svc.Submit(context.Background(), anon, validCard())
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestCheckoutService_DoubleSubmitConflicts(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedCart(t, f, "sess-1", "gt-unlimited")

	firstEntered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.ChargeFunc = func(context.Context, ports.ChargeInput) (ports.ChargeResult, error) {
		close(firstEntered)
		<-release
		return ports.ChargeResult{Reference: "slow-1"}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	}()

	<-firstEntered
	// While the first submit waits on the processor, a second one conflicts
	_, err := f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.CodeOf(err))
	assert.Equal(t, "Your order is already being processed.", apperrors.UserMessage(err))

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)

	// The guard lifts once the first submit finishes; but the cart is
	// now empty, so the rerun short-circuits to /services
	res, err := f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	require.NoError(t, err)
	assert.Equal(t, "/services", res.RedirectTo)
}

func TestCheckoutService_OtherSessionsUnaffectedByGuard(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedCart(t, f, "sess-a", "gt-hiit")
	seedCart(t, f, "sess-b", "gt-strength")

	entered := make(chan struct{})
	release := make(chan struct{})
	first := true
	var mu sync.Mutex
	f.gateway.ChargeFunc = func(context.Context, ports.ChargeInput) (ports.ChargeResult, error) {
		mu.Lock()
		wasFirst := first
		first = false
		mu.Unlock()
		if wasFirst {
			close(entered)
			<-release
		}
		return ports.ChargeResult{Reference: "ref"}, nil
	}

	go func() {
		_, _ = f.svc.Submit(ctx, authedSession("sess-a"), validCard())
	}()
	<-entered

	sessB := authedSession("sess-b")
	sessB.UID = "uid-2"
	res, err := f.svc.Submit(ctx, sessB, validCard())
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", res.RedirectTo)

	close(release)
}

func TestCheckoutService_OrderRecordFailureSurfaces(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedCart(t, f, "sess-1", "pt-1on1")
	f.orders.CreateErr = assert.AnError

	_, err := f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.CodeOf(err))

	// Cart kept for reconciliation
	items, cartErr := f.carts.Get(ctx, "sess-1")
	require.NoError(t, cartErr)
	assert.Len(t, items, 1)
}

func TestCheckoutService_OrderHistory(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	seedCart(t, f, "sess-1", "nt-coaching")

	_, err := f.svc.Submit(ctx, authedSession("sess-1"), validCard())
	require.NoError(t, err)

	orders, err := f.svc.OrderHistory(ctx, "uid-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(9900), orders[0].TotalCents)

	other, err := f.svc.OrderHistory(ctx, "uid-other")
	require.NoError(t, err)
	assert.Empty(t, other)
}
