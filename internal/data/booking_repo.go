package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/SquizAI/JMEFIT-V3/internal/data/pgxutil"
	"github.com/SquizAI/JMEFIT-V3/internal/domain/model"
	apperrors "github.com/SquizAI/JMEFIT-V3/internal/errors"
)

// BookingRepo provides database operations for training-session
// bookings. It implements ports.BookingRepo.
type BookingRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBookingRepo creates a new BookingRepo with real time provider.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewBookingRepoWithTimeProvider creates a BookingRepo with a custom time provider (useful for tests).
func NewBookingRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *BookingRepo {
	return &BookingRepo{DB: db, timeProvider: tp}
}

// Create inserts a booking. Booking the same slot on the same date twice
// surfaces as a conflict error via the unique constraint.
func (r *BookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if booking == nil {
		return apperrors.Validation("booking is required")
	}
	if err := booking.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, "Booking details are invalid.")
	}
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.CreatedAt = r.timeProvider.Now().UTC()

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO bookings (id, uid, date, slot, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, booking.ID, booking.UID, booking.Date, booking.Slot, booking.CreatedAt)
		return execErr
	})
	if err != nil {
		mapped := apperrors.MapDBError(fmt.Errorf("create booking: %w", err))
		if apperrors.IsCode(mapped, apperrors.ErrCodeConflict) {
			return apperrors.Conflict("That time slot is already booked.")
		}
		return mapped
	}
	return nil
}

// ListByUser returns the user's bookings, soonest first.
func (r *BookingRepo) ListByUser(ctx context.Context, uid string) ([]model.Booking, error) {
	var out []model.Booking
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, `
			SELECT id, uid, to_char(date, 'YYYY-MM-DD'), slot, created_at
			FROM bookings
			WHERE uid = $1
			ORDER BY date, slot
		`, uid)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		for rows.Next() {
			var b model.Booking
			if scanErr := rows.Scan(&b.ID, &b.UID, &b.Date, &b.Slot, &b.CreatedAt); scanErr != nil {
				return scanErr
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list bookings: %w", err))
	}
	return out, nil
}
