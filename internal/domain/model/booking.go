package model

import (
	"errors"
	"time"
)

// SlotTimes are the bookable session start times, in gym-local clock time.
var SlotTimes = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

// Booking reserves one training slot for a user.
type Booking struct {
	ID        string    `json:"id"` // uuid
	UID       string    `json:"uid"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Slot      string    `json:"slot"` // one of SlotTimes
	CreatedAt time.Time `json:"created_at"`
}

// ValidSlot reports whether the slot is one of the bookable times.
func ValidSlot(slot string) bool {
	for _, s := range SlotTimes {
		if s == slot {
			return true
		}
	}
	return false
}

// Validate checks booking invariants before persistence.
func (b *Booking) Validate() error {
	return b.ValidateAt(time.Now())
}

// ValidateAt checks booking invariants against the given current time.
func (b *Booking) ValidateAt(now time.Time) error {
	if b.UID == "" {
		return errors.New("booking uid is required")
	}
	if !ValidSlot(b.Slot) {
		return errors.New("booking slot is not an available time")
	}
	d, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		return errors.New("booking date must be YYYY-MM-DD")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return errors.New("booking date cannot be in the past")
	}
	return nil
}
