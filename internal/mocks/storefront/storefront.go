package storefront

// Package storefront contains simple hand-written test doubles for the
// storefront ports. These are lightweight and suitable for unit tests
// without codegen.

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/SquizAI/JMEFIT-V3/internal/domain/auth"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/cart"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/model"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider = (*MockIdentityProvider)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.ProfileStore     = (*MemoryProfileStore)(nil)
	_ ports.CartStore        = (*MemoryCartStore)(nil)
	_ ports.SelectionBridge  = (*MemorySelectionBridge)(nil)
	_ ports.PaymentGateway   = (*MockPaymentGateway)(nil)
	_ ports.OrderRepo        = (*MemoryOrderRepo)(nil)
	_ ports.BookingRepo      = (*MemoryBookingRepo)(nil)
)

// MockIdentityProvider simulates the identity service with overridable
// behavior per method. Unset funcs fall back to a deterministic default.
type MockIdentityProvider struct {
	SignInFunc         func(ctx context.Context, email, password string) (domainauth.Identity, error)
	SignUpFunc         func(ctx context.Context, in ports.SignUpInput) (domainauth.Identity, error)
	SignOutFunc        func(ctx context.Context, uid string) error
	DeleteIdentityFunc func(ctx context.Context, uid string) error
	SessionChangesFunc func(ctx context.Context) <-chan domainauth.SessionEvent

	// DefaultIdentity is returned by the default SignIn/SignUp paths.
	DefaultIdentity domainauth.Identity

	mu      sync.Mutex
	Deleted []string // uids passed to DeleteIdentity
}

// NewMockIdentityProvider creates a provider with a sensible default identity.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		DefaultIdentity: domainauth.Identity{
			UID:         "mock-uid-1",
			Email:       "mock.user@example.com",
			DisplayName: "Mock User",
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, email, password string) (domainauth.Identity, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	ident := m.DefaultIdentity
	ident.Email = email
	ident.ExpiresAt = time.Now().Add(time.Hour)
	return ident, nil
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, in ports.SignUpInput) (domainauth.Identity, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, in)
	}
	ident := m.DefaultIdentity
	ident.Email = in.Email
	ident.DisplayName = in.DisplayName
	ident.ExpiresAt = time.Now().Add(time.Hour)
	return ident, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, uid string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, uid)
	}
	return nil
}

func (m *MockIdentityProvider) DeleteIdentity(ctx context.Context, uid string) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, uid)
	m.mu.Unlock()
	if m.DeleteIdentityFunc != nil {
		return m.DeleteIdentityFunc(ctx, uid)
	}
	return nil
}

func (m *MockIdentityProvider) SessionChanges(ctx context.Context) <-chan domainauth.SessionEvent {
	if m.SessionChangesFunc != nil {
		return m.SessionChangesFunc(ctx)
	}
	ch := make(chan domainauth.SessionEvent, 1)
	ch <- domainauth.SessionEvent{}
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

// DeletedUIDs returns a copy of the uids passed to DeleteIdentity.
func (m *MockIdentityProvider) DeletedUIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

// MemorySessionStore is an in-memory ports.SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	SaveErr error            // when set, Save fails with this error
	Now     func() time.Time // expiry clock; defaults to time.Now
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	sess, ok := s.sessions[id]
	if !ok || now().After(sess.ExpiresAt) {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// MemoryProfileStore is an in-memory ports.ProfileStore.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domainauth.UserProfile

	CreateErr          error // when set, Create fails with this error
	UpdateLastLoginErr error // when set, UpdateLastLogin fails
	lastLoginCalls     int
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]domainauth.UserProfile)}
}

func (s *MemoryProfileStore) Get(_ context.Context, uid string) (domainauth.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[uid]
	if !ok {
		return domainauth.UserProfile{}, apperrors.NotFoundf("profile %s not found", uid)
	}
	return p, nil
}

func (s *MemoryProfileStore) Create(_ context.Context, profile domainauth.UserProfile) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.UID]; exists {
		return apperrors.Conflict("profile already exists")
	}
	s.profiles[profile.UID] = profile
	return nil
}

func (s *MemoryProfileStore) UpdateLastLogin(_ context.Context, uid string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLoginCalls++
	if s.UpdateLastLoginErr != nil {
		return s.UpdateLastLoginErr
	}
	p, ok := s.profiles[uid]
	if !ok {
		return apperrors.NotFoundf("profile %s not found", uid)
	}
	p.LastLogin = &at
	s.profiles[uid] = p
	return nil
}

func (s *MemoryProfileStore) List(_ context.Context) ([]domainauth.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domainauth.UserProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}

// LastLoginCalls reports how many times UpdateLastLogin was invoked.
func (s *MemoryProfileStore) LastLoginCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLoginCalls
}

// Put seeds a profile directly, bypassing Create checks.
func (s *MemoryProfileStore) Put(profile domainauth.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UID] = profile
}

// MemoryCartStore is an in-memory ports.CartStore.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]cart.Items

	GetErr   error // when set, Get fails with this error
	PutErr   error // when set, Put fails
	ClearErr error // when set, Clear fails
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]cart.Items)}
}

func (s *MemoryCartStore) Get(_ context.Context, sessionID string) (cart.Items, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(cart.Items{}, s.carts[sessionID]...), nil
}

func (s *MemoryCartStore) Put(_ context.Context, sessionID string, items cart.Items) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = append(cart.Items{}, items...)
	return nil
}

func (s *MemoryCartStore) Clear(_ context.Context, sessionID string) error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

// MemorySelectionBridge is an in-memory ports.SelectionBridge.
type MemorySelectionBridge struct {
	mu    sync.Mutex
	slots map[string]cart.Item

	OfferErr   error // when set, Offer fails with this error
	ConsumeErr error // when set, Consume fails
}

func NewMemorySelectionBridge() *MemorySelectionBridge {
	return &MemorySelectionBridge{slots: make(map[string]cart.Item)}
}

func (b *MemorySelectionBridge) Offer(_ context.Context, sessionID string, item cart.Item) error {
	if b.OfferErr != nil {
		return b.OfferErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots[sessionID] = item
	return nil
}

func (b *MemorySelectionBridge) Consume(_ context.Context, sessionID string) (cart.Item, bool, error) {
	if b.ConsumeErr != nil {
		return cart.Item{}, false, b.ConsumeErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.slots[sessionID]
	if ok {
		delete(b.slots, sessionID)
	}
	return item, ok, nil
}

// MockPaymentGateway approves every charge unless ChargeFunc is set.
type MockPaymentGateway struct {
	ChargeFunc func(ctx context.Context, in ports.ChargeInput) (ports.ChargeResult, error)

	mu      sync.Mutex
	Charges []ports.ChargeInput
}

func (g *MockPaymentGateway) Charge(ctx context.Context, in ports.ChargeInput) (ports.ChargeResult, error) {
	g.mu.Lock()
	g.Charges = append(g.Charges, in)
	g.mu.Unlock()
	if g.ChargeFunc != nil {
		return g.ChargeFunc(ctx, in)
	}
	return ports.ChargeResult{Reference: "mock-charge-1"}, nil
}

// ChargeCount reports how many charges were attempted.
func (g *MockPaymentGateway) ChargeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Charges)
}

// MemoryOrderRepo is an in-memory ports.OrderRepo.
type MemoryOrderRepo struct {
	mu     sync.Mutex
	orders []model.Order

	CreateErr error // when set, Create fails with this error
}

func (r *MemoryOrderRepo) Create(_ context.Context, order *model.Order) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	if err := order.Validate(); err != nil {
		return err
	}
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, *order)
	return nil
}

func (r *MemoryOrderRepo) ListByUser(_ context.Context, uid string) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if o.UID == uid {
			out = append(out, o)
		}
	}
	return out, nil
}

// MemoryBookingRepo is an in-memory ports.BookingRepo.
type MemoryBookingRepo struct {
	mu       sync.Mutex
	bookings []model.Booking
}

func (r *MemoryBookingRepo) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.UID == booking.UID && b.Date == booking.Date && b.Slot == booking.Slot {
			return apperrors.Conflict("That time slot is already booked.")
		}
	}
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *MemoryBookingRepo) ListByUser(_ context.Context, uid string) ([]model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Booking
	for _, b := range r.bookings {
		if b.UID == uid {
			out = append(out, b)
		}
	}
	return out, nil
}
