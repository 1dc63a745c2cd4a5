package catalog

// Package catalog holds the fixed service-offering catalog for the
// storefront. Offerings are defined in code; there is no catalog admin
// surface, pricing comes straight from the published service pages.

import "github.com/SquizAI/JMEFIT-V3/internal/domain/cart"

// Category groups offerings by service line.
type Category string

const (
	CategoryPersonalTraining Category = "personal-training"
	CategoryGroupTraining    Category = "group-training"
	CategoryOnlineCoaching   Category = "online-coaching"
	CategoryNutrition        Category = "nutrition"
)

// Offering is a purchasable service package with a fixed price and
// billing cadence.
type Offering struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Duration    string   `json:"duration"`
	Location    string   `json:"location"`
	Category    Category `json:"category"`
	Features    []string `json:"features,omitempty"`
}

// CartItem converts the offering into its cart representation.
func (o Offering) CartItem() cart.Item {
	return cart.Item{
		ID:         o.ID,
		Title:      o.Title,
		PriceCents: o.PriceCents,
		Duration:   o.Duration,
		Location:   o.Location,
		Type:       string(o.Category),
	}
}

var offerings = []Offering{
	{
		ID:          "pt-1on1",
		Title:       "1-on-1 Training",
		Description: "Personalized attention and custom workout plans",
		PriceCents:  7500,
		Duration:    "Per Session",
		Location:    "In Person",
		Category:    CategoryPersonalTraining,
		Features: []string{
			"Customized workout programming",
			"Form correction and technique guidance",
			"Progress tracking and adjustments",
			"Nutrition recommendations",
			"Flexible scheduling",
		},
	},
	{
		ID:          "pt-online",
		Title:       "Online Coaching",
		Description: "Remote training with weekly check-ins",
		PriceCents:  19900,
		Duration:    "Monthly",
		Location:    "Virtual",
		Category:    CategoryPersonalTraining,
		Features: []string{
			"Custom workout plans",
			"Weekly video check-ins",
			"Form analysis via video",
			"Nutrition guidance",
			"24/7 messaging support",
		},
	},
	{
		ID:          "pt-program",
		Title:       "Program Design",
		Description: "Custom workout program without live coaching",
		PriceCents:  9900,
		Duration:    "Monthly",
		Location:    "Virtual",
		Category:    CategoryPersonalTraining,
		Features: []string{
			"Personalized workout plan",
			"Monthly program updates",
			"Exercise video library",
			"Basic nutrition guidelines",
			"Email support",
		},
	},
	{
		ID:          "gt-hiit",
		Title:       "HIIT Classes",
		Description: "High-intensity interval training in a group setting",
		PriceCents:  2500,
		Duration:    "Per Class",
		Location:    "In Person",
		Category:    CategoryGroupTraining,
	},
	{
		ID:          "gt-strength",
		Title:       "Strength Classes",
		Description: "Focus on building strength and muscle",
		PriceCents:  2500,
		Duration:    "Per Class",
		Location:    "In Person",
		Category:    CategoryGroupTraining,
	},
	{
		ID:          "gt-unlimited",
		Title:       "Monthly Unlimited",
		Description: "Unlimited access to all group classes",
		PriceCents:  14900,
		Duration:    "Monthly",
		Location:    "In Person",
		Category:    CategoryGroupTraining,
	},
	{
		ID:          "oc-basic",
		Title:       "Basic Package",
		Description: "Custom workout plans with monthly check-ins",
		PriceCents:  9900,
		Duration:    "Monthly",
		Location:    "Virtual",
		Category:    CategoryOnlineCoaching,
	},
	{
		ID:          "oc-premium",
		Title:       "Premium Package",
		Description: "Weekly check-ins with nutrition coaching",
		PriceCents:  19900,
		Duration:    "Monthly",
		Location:    "Virtual",
		Category:    CategoryOnlineCoaching,
	},
	{
		ID:          "oc-elite",
		Title:       "Elite Package",
		Description: "Daily support with full programming",
		PriceCents:  29900,
		Duration:    "Monthly",
		Location:    "Virtual",
		Category:    CategoryOnlineCoaching,
	},
	{
		ID:          "nt-meal-plan",
		Title:       "Meal Planning",
		Description: "Custom meal plans and nutrition guidance",
		PriceCents:  14900,
		Duration:    "Monthly",
		Location:    "Virtual",
		Category:    CategoryNutrition,
	},
	{
		ID:          "nt-coaching",
		Title:       "Nutrition Coaching",
		Description: "One-on-one nutrition counseling",
		PriceCents:  9900,
		Duration:    "Per Session",
		Location:    "Virtual",
		Category:    CategoryNutrition,
	},
	{
		ID:          "nt-complete",
		Title:       "Complete Package",
		Description: "Meal planning + weekly coaching calls",
		PriceCents:  24900,
		Duration:    "Monthly",
		Location:    "Virtual",
		Category:    CategoryNutrition,
	},
}

// All returns every offering in catalog order.
func All() []Offering {
	out := make([]Offering, len(offerings))
	copy(out, offerings)
	return out
}

// ByID looks up an offering by its identifier.
func ByID(id string) (Offering, bool) {
	for _, o := range offerings {
		if o.ID == id {
			return o, true
		}
	}
	return Offering{}, false
}

// ByCategory returns all offerings in the given category, in catalog order.
func ByCategory(cat Category) []Offering {
	var out []Offering
	for _, o := range offerings {
		if o.Category == cat {
			out = append(out, o)
		}
	}
	return out
}

// Categories returns the known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryPersonalTraining,
		CategoryGroupTraining,
		CategoryOnlineCoaching,
		CategoryNutrition,
	}
}

// ValidCategory reports whether the string names a known category.
func ValidCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
