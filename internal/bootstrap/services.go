package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/SquizAI/JMEFIT-V3/config"
	"github.com/SquizAI/JMEFIT-V3/internal/adapters/devidentity"
	"github.com/SquizAI/JMEFIT-V3/internal/adapters/identity"
	"github.com/SquizAI/JMEFIT-V3/internal/adapters/payment"
	"github.com/SquizAI/JMEFIT-V3/internal/adapters/redisstore"
	"github.com/SquizAI/JMEFIT-V3/internal/data"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
	"github.com/SquizAI/JMEFIT-V3/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth     *service.AuthManager
	Carts    *service.CartService
	Checkout *service.CheckoutService
	Bookings *service.BookingService

	Profiles ports.ProfileStore
	Sessions ports.SessionStore
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices builds the service container: identity provider per auth
// mode, Redis-backed session state, Postgres repositories, and the
// domain services on top of them.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps and config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	provider, err := newIdentityProvider(ctx, cfg, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	sessions := redisstore.NewSessionStore(deps.RedisClient)
	carts := redisstore.NewCartStore(deps.RedisClient, cfg.Auth.SessionTTL, logger)
	selection := redisstore.NewSelectionBridge(deps.RedisClient, cfg.Auth.SessionTTL, logger)

	profiles := data.NewProfileRepo(deps.DB)
	orders := data.NewOrderRepo(deps.DB)
	bookings := data.NewBookingRepo(deps.DB)

	gateway := payment.NewGateway(cfg.Checkout.ProcessingDelay, cfg.Checkout.DeclineCard, logger)

	authManager := service.NewAuthManager(service.AuthManagerOptions{
		Provider:          provider,
		Profiles:          profiles,
		Sessions:          sessions,
		AdminEmail:        cfg.Auth.AdminEmail,
		SessionTTL:        cfg.Auth.SessionTTL,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		Logger:            logger,
	})

	cartService := service.NewCartService(service.CartServiceOptions{
		Carts:     carts,
		Selection: selection,
		Logger:    logger,
	})

	checkoutService := service.NewCheckoutService(service.CheckoutServiceOptions{
		Carts:   carts,
		Gateway: gateway,
		Orders:  orders,
		Logger:  logger,
	})

	bookingService := service.NewBookingService(service.BookingServiceOptions{
		Bookings: bookings,
		Logger:   logger,
	})

	return ServiceContainer{
		Auth:     authManager,
		Carts:    cartService,
		Checkout: checkoutService,
		Bookings: bookingService,
		Profiles: profiles,
		Sessions: sessions,
	}, nil
}

//nolint:ireturn // the provider is selected at runtime from config.
func newIdentityProvider(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (ports.IdentityProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeDev:
		logger.Warn("using dev identity provider; accounts are in-memory only")
		provider, err := devidentity.NewProvider(devidentity.Config{
			SeedEmail:       cfg.Auth.Dev.Email,
			SeedPassword:    cfg.Auth.Dev.Password,
			SeedName:        cfg.Auth.Dev.Name,
			SessionDuration: cfg.Auth.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev identity provider: %w", err)
		}
		return provider, nil

	case config.AuthModeHosted:
		provider, err := identity.NewProvider(ctx, identity.ProviderConfig{
			BaseURL:   cfg.Auth.Hosted.BaseURL,
			APIKey:    cfg.Auth.Hosted.APIKey,
			IssuerURL: cfg.Auth.Hosted.IssuerURL,
			Audience:  cfg.Auth.Hosted.Audience,
			TokenURL:  cfg.Auth.Hosted.TokenURL,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create hosted identity provider: %w", err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
const shutdownWaitTimeout = 15 * time.Second

// RunServicesWithShutdown starts the auth manager and the HTTP server
// and blocks until a shutdown signal arrives or either fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// The auth manager consumes the identity provider's session feed for
	// the life of the process. Protected routes hold behind its ready
	// gate until the first event lands.
	group.Go(func() error {
		cfg.Services.Auth.Run(groupCtx)
		return nil
	})

	server := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()
		return ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  server,
			Logger:  logger,
		})
	})

	logger.Info("storefront running", "addr", cfg.Config.HTTP.Addr)

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
