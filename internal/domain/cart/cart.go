package cart

// Package cart contains the pure session-cart model. It is free of
// storage and transport concerns; adapters persist Items per session.

import "fmt"

// Item is one selected service offering in a cart. Identity is the
// offering ID; no two items in a cart share an ID.
type Item struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Duration   string `json:"duration"` // billing period label, e.g. "Monthly"
	Location   string `json:"location"` // delivery mode label, e.g. "Virtual"
	Type       string `json:"type"`     // offering category tag
}

// Items is an ordered cart sequence, insertion order preserved.
// All mutating operations return a new slice and never modify the
// receiver in place, so a cart value can be replaced atomically.
type Items []Item

// Add appends item iff no existing item shares its ID. A duplicate ID is
// a no-op: the existing entry wins and no error is raised.
func (items Items) Add(item Item) Items {
	if items.Contains(item.ID) {
		return items
	}
	out := make(Items, 0, len(items)+1)
	out = append(out, items...)
	return append(out, item)
}

// Remove drops the item with the given ID if present; absent IDs are a no-op.
func (items Items) Remove(id string) Items {
	out := make(Items, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}

// Contains reports whether an item with the given ID is in the cart.
func (items Items) Contains(id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// TotalCents is the sum of item prices. It is recomputed on demand from
// the current sequence; there is no cached total to invalidate. An empty
// cart totals zero.
func (items Items) TotalCents() int64 {
	var total int64
	for _, it := range items {
		total += it.PriceCents
	}
	return total
}

// FormatUSD renders a cent amount as a dollar string, e.g. 14900 -> "$149.00".
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
