// Package mocks provides mock implementations for testing the storefront.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the ports interfaces. The mocks are generated using go:generate directives
// and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockOrderRepo(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
//
// Hand-written doubles for the same interfaces live in the storefront
// subpackage; most unit tests use those.
package mocks

// Generate mock for IdentityProvider interface from internal/ports.
// This creates MockIdentityProvider with methods:
// SignIn, SignUp, SignOut, DeleteIdentity, SessionChanges
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=identity_provider_mock.go github.com/SquizAI/JMEFIT-V3/internal/ports IdentityProvider

// Generate mock for ProfileStore interface from internal/ports.
// This creates MockProfileStore with methods:
// Get, Create, UpdateLastLogin, List
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=profile_store_mock.go github.com/SquizAI/JMEFIT-V3/internal/ports ProfileStore

// Generate mock for CartStore interface from internal/ports.
// This creates MockCartStore with methods:
// Get, Put, Clear
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cart_store_mock.go github.com/SquizAI/JMEFIT-V3/internal/ports CartStore

// Generate mock for SelectionBridge interface from internal/ports.
// This creates MockSelectionBridge with methods:
// Offer, Consume
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=selection_bridge_mock.go github.com/SquizAI/JMEFIT-V3/internal/ports SelectionBridge

// Generate mock for PaymentGateway interface from internal/ports.
// This creates MockPaymentGateway with methods:
// Charge
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=payment_gateway_mock.go github.com/SquizAI/JMEFIT-V3/internal/ports PaymentGateway

// Generate mock for OrderRepo interface from internal/ports.
// This creates MockOrderRepo with methods:
// Create, ListByUser
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=order_repo_mock.go github.com/SquizAI/JMEFIT-V3/internal/ports OrderRepo

// Generate mock for BookingRepo interface from internal/ports.
// This creates MockBookingRepo with methods:
// Create, ListByUser
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=booking_repo_mock.go github.com/SquizAI/JMEFIT-V3/internal/ports BookingRepo
