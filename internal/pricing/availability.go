package pricing

import (
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
)

var ErrNotEnoughRooms = errors.New("not enough rooms available")

// Overlaps reports whether b's stay touches [checkIn, checkOut].
// Boundaries are inclusive: a stay ending on the requested check-in overlaps.
// Bookings without dates never overlap.
func Overlaps(b *model.Booking, checkIn, checkOut model.Date) bool {
	if !b.HasDates() {
		return false
	}
	return !b.CheckIn.After(checkOut) && !b.CheckOut.Before(checkIn)
}

// BookedRooms sums the room quantities of the given bookings.
func BookedRooms(bookings []model.Booking) int {
	total := 0
	for i := range bookings {
		total += CountRooms(bookings[i].RoomTypes)
	}
	return total
}

// Remaining is the inventory left after the overlapping bookings.
func Remaining(inventory int, overlapping []model.Booking) int {
	return inventory - BookedRooms(overlapping)
}

// CheckAvailability fails with ErrNotEnoughRooms when requested exceeds
// what the overlapping bookings leave of inventory.
func CheckAvailability(inventory, requested int, overlapping []model.Booking) error {
	available := Remaining(inventory, overlapping)
	if requested > available {
		return fmt.Errorf("%w (available: %d, requested: %d)", ErrNotEnoughRooms, available, requested)
	}
	return nil
}
