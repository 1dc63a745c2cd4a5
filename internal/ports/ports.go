package ports

// Package ports defines interfaces (hexagonal ports) for the storefront
// core. Implementations live in internal/adapters and internal/data;
// orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/cart"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/model"
)

// SignUpInput carries inputs for creating a new identity.
type SignUpInput struct {
	Email       string
	Password    string
	DisplayName string
}

// IdentityProvider abstracts the external identity service the
// storefront delegates all credential handling to.
type IdentityProvider interface {
	// SignIn exchanges credentials for an identity. Failures carry
	// provider error codes mappable by errors.MapIdentityError.
	SignIn(ctx context.Context, email, password string) (domainauth.Identity, error)

	// SignUp creates a new identity. The caller validates inputs before
	// calling; the provider still enforces its own rules.
	SignUp(ctx context.Context, in SignUpInput) (domainauth.Identity, error)

	// SignOut terminates the provider session for the given identity.
	SignOut(ctx context.Context, uid string) error

	// DeleteIdentity removes a newly created identity. Used as the
	// compensating action when profile creation fails during signup.
	DeleteIdentity(ctx context.Context, uid string) error

	// SessionChanges subscribes to the provider's session feed. The
	// channel fires once with the current session state (possibly none)
	// and again on every change, in provider order. It closes when ctx
	// is done.
	SessionChanges(ctx context.Context) <-chan domainauth.SessionEvent
}

// ProfileStore persists user profile records.
type ProfileStore interface {
	// Get returns the profile for uid, or an error with code not_found.
	Get(ctx context.Context, uid string) (domainauth.UserProfile, error)

	// Create inserts a new profile record.
	Create(ctx context.Context, profile domainauth.UserProfile) error

	// UpdateLastLogin merges a new last-login timestamp into the record.
	// Callers treat failure here as non-fatal.
	UpdateLastLogin(ctx context.Context, uid string, at time.Time) error

	// List returns all profiles, newest first. Admin surface only.
	List(ctx context.Context) ([]domainauth.UserProfile, error)
}

// SessionStore persists and retrieves browser sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// CartStore persists the per-session cart. Mutations replace the whole
// sequence; the store never edits a stored cart in place.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (cart.Items, error)
	Put(ctx context.Context, sessionID string, items cart.Items) error
	Clear(ctx context.Context, sessionID string) error
}

// SelectionBridge is the single-slot mailbox that carries one pending
// offering selection across the unauthenticated-to-authenticated
// boundary. It is not a queue: Offer overwrites, Consume is exactly-once.
type SelectionBridge interface {
	// Offer durably stores item as the pending selection, overwriting
	// any previous unconsumed value.
	Offer(ctx context.Context, sessionID string, item cart.Item) error

	// Consume removes and returns the pending selection. ok is false
	// when the slot is empty; an unreadable slot reads as empty.
	Consume(ctx context.Context, sessionID string) (item cart.Item, ok bool, err error)
}

// ChargeInput carries the simulated payment request.
type ChargeInput struct {
	SessionID   string
	AmountCents int64
	Card        CardDetails
}

// CardDetails is payment-form input. It is collected but never sent to a
// real processor.
type CardDetails struct {
	Number string
	Expiry string
	CVC    string
}

// ChargeResult reports a successful charge.
type ChargeResult struct {
	Reference string
}

// PaymentGateway performs the (simulated) payment step of checkout.
type PaymentGateway interface {
	Charge(ctx context.Context, in ChargeInput) (ChargeResult, error)
}

// OrderRepo persists completed checkouts.
type OrderRepo interface {
	Create(ctx context.Context, order *model.Order) error
	ListByUser(ctx context.Context, uid string) ([]model.Order, error)
}

// BookingRepo persists training-session bookings.
type BookingRepo interface {
	Create(ctx context.Context, booking *model.Booking) error
	ListByUser(ctx context.Context, uid string) ([]model.Booking, error)
}
