// Package repository implements persistence for bookings.
// Three backends share the BookingRepository contract: in-memory,
// PostgreSQL via pgx and DynamoDB via aws-sdk-go-v2.
package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
)

// ErrNotFound is returned when a requested booking does not exist.
var ErrNotFound = errors.New("booking not found")

// ErrDuplicateID is returned when Create is called with an id already stored.
var ErrDuplicateID = errors.New("booking id already exists")

// BookingRepository is the storage boundary consumed by the service layer.
// Implementations own persisted state; nothing above them caches bookings.
type BookingRepository interface {
	// Create stores a new booking. The id is assigned by the caller.
	Create(ctx context.Context, b *model.Booking) error

	// GetByID returns a single booking or ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Booking, error)

	// List returns every booking, newest first.
	List(ctx context.Context) ([]model.Booking, error)

	// ListOverlapping scans for bookings whose stay satisfies
	// checkIn <= to AND checkOut >= from.
	ListOverlapping(ctx context.Context, from, to model.Date) ([]model.Booking, error)

	// Update overwrites the fields set in changes and returns the stored
	// booking, or ErrNotFound.
	Update(ctx context.Context, id string, changes model.BookingChanges) (*model.Booking, error)

	// Delete removes a booking and returns what was removed, or ErrNotFound.
	Delete(ctx context.Context, id string) (*model.Booking, error)
}

// sortNewestFirst orders bookings by creation time descending, id as tiebreak.
func sortNewestFirst(bookings []model.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].BookingID < bookings[j].BookingID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}
