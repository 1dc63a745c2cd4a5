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

// SelectionBridge holds at most one pending package selection per session.
// A visitor who picks a package while signed out has it parked here, and it
// is consumed exactly once after they complete login or signup. GETDEL makes
// the consume atomic, so concurrent consumers cannot both observe the slot.
type SelectionBridge struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewSelectionBridge creates a Redis-backed selection bridge. TTL bounds how
// long a parked selection waits for the visitor to finish authenticating.
func NewSelectionBridge(client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *SelectionBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &SelectionBridge{
		client: client,
		prefix: "selection:",
		ttl:    ttl,
		logger: logger,
	}
}

// Offer parks a selection for the session, replacing any previous one.
// Offering twice before a consume keeps only the latest selection.
func (b *SelectionBridge) Offer(ctx context.Context, sessionID string, item cart.Item) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}

	return b.client.Set(ctx, b.prefix+sessionID, data, b.ttl).Err()
}

// Consume removes and returns the parked selection, if any. The removal and
// the read are a single GETDEL, so a selection is observed at most once.
// A corrupt value reads as empty; the slot is already gone by then.
func (b *SelectionBridge) Consume(ctx context.Context, sessionID string) (cart.Item, bool, error) {
	if sessionID == "" {
		return cart.Item{}, false, errors.New("session ID cannot be empty")
	}

	key := b.prefix + sessionID
	data, err := b.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.Item{}, false, nil
		}
		return cart.Item{}, false, fmt.Errorf("redis getdel selection: %w", err)
	}

	var item cart.Item
	if unmarshalErr := json.Unmarshal([]byte(data), &item); unmarshalErr != nil {
		b.logger.Warn("discarding corrupt selection payload",
			"session_id", sessionID,
			"error", unmarshalErr)
		return cart.Item{}, false, nil
	}

	return item, true, nil
}
