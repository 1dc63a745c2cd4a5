// Package model contains persistence-facing domain records for orders
// and bookings.
package model

import (
	"errors"
	"time"

	"github.com/SquizAI/JMEFIT-V3/internal/domain/cart"
)

// Order is one completed checkout for a user. Orders are only recorded
// after the payment step succeeds; a failed payment leaves no order.
type Order struct {
	ID         string      `json:"id"` // uuid
	UID        string      `json:"uid"`
	TotalCents int64       `json:"total_cents"`
	Items      []OrderItem `json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrderItem is the frozen cart line captured at checkout time. Catalog
// prices can change later; the order keeps what the user actually paid.
type OrderItem struct {
	OfferingID string `json:"offering_id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Duration   string `json:"duration"`
	Location   string `json:"location"`
	Type       string `json:"type"`
}

// OrderItemsFromCart freezes cart items into order lines.
func OrderItemsFromCart(items cart.Items) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, OrderItem{
			OfferingID: it.ID,
			Title:      it.Title,
			PriceCents: it.PriceCents,
			Duration:   it.Duration,
			Location:   it.Location,
			Type:       it.Type,
		})
	}
	return out
}

// Validate checks order invariants before persistence.
func (o *Order) Validate() error {
	if o.UID == "" {
		return errors.New("order uid is required")
	}
	if len(o.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	if o.TotalCents < 0 {
		return errors.New("order total cannot be negative")
	}
	var sum int64
	for _, it := range o.Items {
		sum += it.PriceCents
	}
	if sum != o.TotalCents {
		return errors.New("order total does not match item prices")
	}
	return nil
}
