package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SquizAI/JMEFIT-V3/internal/data"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/model"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
	"github.com/SquizAI/JMEFIT-V3/internal/ports"
)

// BookingServiceOptions groups dependencies for BookingService.
type BookingServiceOptions struct {
	Bookings ports.BookingRepo
	Time     data.TimeProvider
	Logger   *slog.Logger
}

// BookingService books training sessions into the fixed daily slot grid.
type BookingService struct {
	bookings ports.BookingRepo
	time     data.TimeProvider
	logger   *slog.Logger
}

// NewBookingService constructs a new BookingService.
func NewBookingService(opts BookingServiceOptions) *BookingService {
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		bookings: opts.Bookings,
		time:     tp,
		logger:   logger,
	}
}

// Book reserves the slot on date for the user. Validation covers the
// slot grid and past dates; the repo enforces one booking per user,
// date, and slot.
func (s *BookingService) Book(ctx context.Context, uid, date, slot string) (*model.Booking, error) {
	booking := &model.Booking{
		UID:       uid,
		Date:      date,
		Slot:      slot,
		CreatedAt: s.time.Now(),
	}
	if err := booking.ValidateAt(s.time.Now()); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("session booked",
		"uid", uid,
		"date", date,
		"slot", slot)
	return booking, nil
}

// List returns the user's bookings ordered by date and slot.
func (s *BookingService) List(ctx context.Context, uid string) ([]model.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// Slots returns the bookable time slots.
func (s *BookingService) Slots() []string {
	return append([]string(nil), model.SlotTimes...)
}
