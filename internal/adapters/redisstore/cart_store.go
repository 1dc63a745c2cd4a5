package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SquizAI/JMEFIT-V3/internal/domain/cart"
)

// CartStore persists per-browser-session carts as a JSON array under a
// single key. Writes replace the whole value; the cart is small enough
// that read-modify-write at the service layer keeps the storage simple.
type CartStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCartStore creates a Redis-backed cart store. TTL bounds how long an
// abandoned cart survives; it is refreshed on every write.
func NewCartStore(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CartStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartStore{
		client: client,
		prefix: "cart:",
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cart for the given session. A missing key and a corrupt
// value both read as an empty cart; corruption is logged and the key
// cleared so the next read is clean.
func (s *CartStore) Get(ctx context.Context, sessionID string) (cart.Items, error) {
	if sessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	key := s.prefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.Items{}, nil
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var items cart.Items
	if unmarshalErr := json.Unmarshal([]byte(data), &items); unmarshalErr != nil {
		s.logger.Warn("discarding corrupt cart payload",
			"session_id", sessionID,
			"error", unmarshalErr)
		if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
			return nil, fmt.Errorf("clear corrupt cart: %w", delErr)
		}
		return cart.Items{}, nil
	}

	return items, nil
}

// Put replaces the stored cart for the session and refreshes its TTL.
func (s *CartStore) Put(ctx context.Context, sessionID string, items cart.Items) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	return s.client.Set(ctx, s.prefix+sessionID, data, s.ttl).Err()
}

// Clear removes the session's cart. Clearing an absent cart is a no-op.
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
