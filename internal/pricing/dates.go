package pricing

import (
	"errors"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
)

var (
	ErrCheckInPast      = errors.New("check-in date cannot be in the past")
	ErrCheckOutNotAfter = errors.New("check-out date must be after check-in date")
	ErrPartialDates     = errors.New("checkIn and checkOut must be provided together")
)

// ValidateDates checks a check-in/check-out pair against today.
//
// Dates are optional: when either side is missing the pair is accepted here.
// Use CompleteDates to reject a half-supplied pair.
func ValidateDates(checkIn, checkOut *model.Date, today model.Date) error {
	if checkIn == nil || checkOut == nil {
		return nil
	}
	in, out := model.NewDate(checkIn.Time), model.NewDate(checkOut.Time)
	if in.Before(model.NewDate(today.Time)) {
		return ErrCheckInPast
	}
	if !out.After(in) {
		return ErrCheckOutNotAfter
	}
	return nil
}

// CompleteDates returns ErrPartialDates when exactly one date is set.
func CompleteDates(checkIn, checkOut *model.Date) error {
	if (checkIn == nil) != (checkOut == nil) {
		return ErrPartialDates
	}
	return nil
}
