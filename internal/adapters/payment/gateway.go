// Package payment provides the simulated payment gateway. No real
// processor is contacted; the gateway models processing latency and a
// configurable always-decline test card so checkout paths can be
// exercised end to end.
package payment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// Gateway implements ports.PaymentGateway with simulated processing.
type Gateway struct {
	delay       time.Duration
	declineCard string
	logger      *slog.Logger
}

var _ ports.PaymentGateway = (*Gateway)(nil)

// NewGateway constructs a simulated gateway. delay models processor
// latency; declineCard is a card number that always declines.
func NewGateway(delay time.Duration, declineCard string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		delay:       delay,
		declineCard: declineCard,
		logger:      logger,
	}
}

// Charge simulates a card charge. The processing delay honors ctx, so a
// canceled request does not hold the caller.
func (g *Gateway) Charge(ctx context.Context, in ports.ChargeInput) (ports.ChargeResult, error) {
	if in.AmountCents <= 0 {
		return ports.ChargeResult{}, apperrors.Validation("Charge amount must be positive.")
	}
	card := normalizeCard(in.Card.Number)
	if card == "" {
		return ports.ChargeResult{}, apperrors.ValidationField("card_number", "Card number is required.")
	}

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return ports.ChargeResult{}, ctx.Err()
		}
	}

	if g.declineCard != "" && card == g.declineCard {
		g.logger.Info("simulated decline",
			"session_id", in.SessionID,
			"amount_cents", in.AmountCents)
		return ports.ChargeResult{}, apperrors.Payment("Your card was declined. Please try a different payment method.")
	}

	ref := "sim_" + uuid.NewString()
	g.logger.Info("simulated charge approved",
		"session_id", in.SessionID,
		"amount_cents", in.AmountCents,
		"reference", ref)
	return ports.ChargeResult{Reference: ref}, nil
}

func normalizeCard(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(number))
}
