package pricing

import (
	"errors"
	"math"
	"time"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
)

var ErrInvalidNights = errors.New("invalid dates: check-out must be after check-in")

const day = 24 * time.Hour

// Nights counts the nights between check-in and check-out, rounded up.
// Without a complete pair of dates the stay is priced as a single night.
func Nights(checkIn, checkOut *model.Date) (int, error) {
	if checkIn == nil || checkOut == nil {
		return 1, nil
	}
	nights := int(math.Ceil(float64(checkOut.Sub(checkIn.Time)) / float64(day)))
	if nights <= 0 {
		return 0, ErrInvalidNights
	}
	return nights, nil
}

// Cost is Σ pricePerNight × quantity × nights over roomTypes.
func Cost(roomTypes map[string]int, checkIn, checkOut *model.Date) (int, error) {
	if err := checkRoomTypes(roomTypes); err != nil {
		return 0, err
	}
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return 0, err
	}
	total := 0
	for name, qty := range roomTypes {
		room, _ := Lookup(name)
		total += room.PricePerNight * qty * nights
	}
	return total, nil
}

// Quote holds the derived figures stored on a booking.
type Quote struct {
	TotalRooms    int
	TotalCapacity int
	Nights        int
	TotalCost     int
}

// QuoteBooking validates capacity and prices a room selection.
func QuoteBooking(guests int, roomTypes map[string]int, checkIn, checkOut *model.Date) (Quote, error) {
	if err := ValidateCapacity(guests, roomTypes); err != nil {
		return Quote{}, err
	}
	capacity, _ := Capacity(roomTypes)
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}
	cost, err := Cost(roomTypes, checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		TotalRooms:    CountRooms(roomTypes),
		TotalCapacity: capacity,
		Nights:        nights,
		TotalCost:     cost,
	}, nil
}
