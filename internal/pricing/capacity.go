package pricing

import (
	"errors"
	"fmt"
)

var ErrInsufficientCapacity = errors.New("not enough room capacity for all guests")

// Capacity sums maxGuests × quantity over roomTypes.
func Capacity(roomTypes map[string]int) (int, error) {
	if err := checkRoomTypes(roomTypes); err != nil {
		return 0, err
	}
	total := 0
	for name, qty := range roomTypes {
		room, _ := Lookup(name)
		total += room.MaxGuests * qty
	}
	return total, nil
}

// ValidateCapacity accepts the selection iff its combined capacity holds guests.
// The number of rooms is not bounded here; see CheckAvailability.
func ValidateCapacity(guests int, roomTypes map[string]int) error {
	capacity, err := Capacity(roomTypes)
	if err != nil {
		return err
	}
	if capacity < guests {
		return fmt.Errorf("%w (capacity: %d, guests: %d)", ErrInsufficientCapacity, capacity, guests)
	}
	return nil
}
