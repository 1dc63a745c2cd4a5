package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/JMEFIT-V3/internal/domain/cart"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/mocks/storefront"
)

func newCartService(carts *storefront.MemoryCartStore, bridge *storefront.MemorySelectionBridge) *CartService {
	return NewCartService(CartServiceOptions{
		Carts:     carts,
		Selection: bridge,
		Logger:    slog.New(slog.DiscardHandler),
	})
}

func TestCartService_AddFromCatalog(t *testing.T) {
	svc := newCartService(storefront.NewMemoryCartStore(), storefront.NewMemorySelectionBridge())
	ctx := context.Background()

	items, err := svc.Add(ctx, "sess-1", "pt-online")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "pt-online", items[0].ID)
	assert.Equal(t, int64(19900), items[0].PriceCents)
	assert.Equal(t, "Online", items[0].Location)
}

func TestCartService_AddUnknownOffering(t *testing.T) {
	svc := newCartService(storefront.NewMemoryCartStore(), storefront.NewMemorySelectionBridge())

	_, err := svc.Add(context.Background(), "sess-1", "no-such-package")
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestCartService_DuplicateAddKeepsFirst(t *testing.T) {
	carts := storefront.NewMemoryCartStore()
	svc := newCartService(carts, storefront.NewMemorySelectionBridge())
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess-1", "gt-hiit")
	require.NoError(t, err)

	// Adding the same package again is accepted but changes nothing
	items, err := svc.Add(ctx, "sess-1", "gt-hiit")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2500), items.TotalCents())
}

func TestCartService_RemoveAndTotal(t *testing.T) {
	svc := newCartService(storefront.NewMemoryCartStore(), storefront.NewMemorySelectionBridge())
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess-1", "oc-basic")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "sess-1", "nt-meal-plan")
	require.NoError(t, err)

	items, err := svc.Remove(ctx, "sess-1", "oc-basic")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(14900), items.TotalCents())

	// Removing an id that is not present is a no-op
	items, err = svc.Remove(ctx, "sess-1", "oc-basic")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartService_ParkAndAbsorb(t *testing.T) {
	carts := storefront.NewMemoryCartStore()
	svc := newCartService(carts, storefront.NewMemorySelectionBridge())
	ctx := context.Background()

	require.NoError(t, svc.Park(ctx, "sess-1", "oc-premium"))

	redirect, err := svc.AbsorbSelection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "/cart", redirect)

	items, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "oc-premium", items[0].ID)

	// The slot is one-shot; a second absorb finds nothing
	redirect, err = svc.AbsorbSelection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", redirect)
}

func TestCartService_AbsorbWithoutSelection(t *testing.T) {
	svc := newCartService(storefront.NewMemoryCartStore(), storefront.NewMemorySelectionBridge())

	redirect, err := svc.AbsorbSelection(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", redirect)
}

func TestCartService_ParkOverwritesPrevious(t *testing.T) {
	svc := newCartService(storefront.NewMemoryCartStore(), storefront.NewMemorySelectionBridge())
	ctx := context.Background()

	require.NoError(t, svc.Park(ctx, "sess-1", "gt-strength"))
	require.NoError(t, svc.Park(ctx, "sess-1", "gt-unlimited"))

	redirect, err := svc.AbsorbSelection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "/cart", redirect)

	items, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "gt-unlimited", items[0].ID)
}

func TestCartService_AbsorbKeepsExistingCartEntry(t *testing.T) {
	carts := storefront.NewMemoryCartStore()
	svc := newCartService(carts, storefront.NewMemorySelectionBridge())
	ctx := context.Background()

	// Cart already holds the package the visitor also parked
	_, err := svc.Add(ctx, "sess-1", "pt-program")
	require.NoError(t, err)
	require.NoError(t, svc.Park(ctx, "sess-1", "pt-program"))

	redirect, err := svc.AbsorbSelection(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "/cart", redirect)

	items, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartService_ParkUnknownOffering(t *testing.T) {
	svc := newCartService(storefront.NewMemoryCartStore(), storefront.NewMemorySelectionBridge())

	err := svc.Park(context.Background(), "sess-1", "bogus")
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestCartService_ClearEmptiesCart(t *testing.T) {
	svc := newCartService(storefront.NewMemoryCartStore(), storefront.NewMemorySelectionBridge())
	ctx := context.Background()

	_, err := svc.Add(ctx, "sess-1", "nt-complete")
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "sess-1"))

	items, err := svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, cart.Items{}, items)
	assert.Equal(t, int64(0), items.TotalCents())
}
