// Package pricing holds the hotel's room table and the rules that validate
// and price a booking: dates, guest capacity, cost by nights and remaining
// inventory.
package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category is a room category name as it appears in roomTypes.
type Category string

const (
	Single Category = "single"
	Double Category = "double"
	Suite  Category = "suite"
)

// Inventory is the total number of rooms in the hotel.
const Inventory = 20

// Room describes one category of the room table.
type Room struct {
	Category      Category `json:"category"`
	Name          string   `json:"name"`
	MaxGuests     int      `json:"maxGuests"`
	PricePerNight int      `json:"pricePerNight"`
}

var (
	ErrUnknownCategory  = errors.New("invalid room type")
	ErrNegativeQuantity = errors.New("room quantity must not be negative")
	ErrTooManyRooms     = errors.New("too many rooms")
)

var rooms = map[Category]Room{
	Single: {Category: Single, Name: "Single Room", MaxGuests: 1, PricePerNight: 500},
	Double: {Category: Double, Name: "Double Room", MaxGuests: 2, PricePerNight: 1000},
	Suite:  {Category: Suite, Name: "Suite", MaxGuests: 3, PricePerNight: 1500},
}

// Lookup returns the room table entry for a category name.
func Lookup(name string) (Room, error) {
	room, ok := rooms[Category(name)]
	if !ok {
		return Room{}, fmt.Errorf("%w: %q (available types: %s)", ErrUnknownCategory, name, strings.Join(categoryNames(), ", "))
	}
	return room, nil
}

// Rooms returns the room table ordered by price.
func Rooms() []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PricePerNight < out[j].PricePerNight })
	return out
}

func categoryNames() []string {
	names := make([]string, 0, len(rooms))
	for _, r := range Rooms() {
		names = append(names, string(r.Category))
	}
	return names
}

// CountRooms sums the quantities of a roomTypes map.
func CountRooms(roomTypes map[string]int) int {
	total := 0
	for _, qty := range roomTypes {
		total += qty
	}
	return total
}

// ValidateRoomCount rejects selections larger than inventory, per category
// and in total. Quantities are compared one at a time so the running sum
// never exceeds 2×inventory, whatever the caller sent.
func ValidateRoomCount(roomTypes map[string]int, inventory int) error {
	if err := checkRoomTypes(roomTypes); err != nil {
		return err
	}
	total := 0
	for _, name := range sortedKeys(roomTypes) {
		qty := roomTypes[name]
		if qty > inventory {
			return fmt.Errorf("%w: cannot book more than %d rooms (%s: %d)", ErrTooManyRooms, inventory, name, qty)
		}
		total += qty
		if total > inventory {
			return fmt.Errorf("%w: cannot book more than %d rooms", ErrTooManyRooms, inventory)
		}
	}
	return nil
}

// checkRoomTypes rejects unknown categories and negative quantities.
func checkRoomTypes(roomTypes map[string]int) error {
	for _, name := range sortedKeys(roomTypes) {
		if _, err := Lookup(name); err != nil {
			return err
		}
		if roomTypes[name] < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeQuantity, name)
		}
	}
	return nil
}

// sortedKeys makes error reporting deterministic over map iteration.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
