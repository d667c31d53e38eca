// Package model defines the core domain types for the hotel booking system.
package model

import "time"

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Statuses lists every accepted booking status.
var Statuses = []Status{StatusConfirmed, StatusCancelled, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Booking represents a guest's reservation of one or more rooms.
type Booking struct {
	BookingID       string         `json:"bookingId"`
	GuestName       string         `json:"guestName"`
	Email           string         `json:"email"`
	Guests          int            `json:"guests"`
	RoomTypes       map[string]int `json:"roomTypes"`
	TotalRooms      int            `json:"totalRooms"`
	TotalCapacity   int            `json:"totalCapacity"`
	CheckIn         *Date          `json:"checkIn,omitempty"`
	CheckOut        *Date          `json:"checkOut,omitempty"`
	TotalCost       int            `json:"totalCost"`
	SpecialRequests string         `json:"specialRequests,omitempty"`
	Status          Status         `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// HasDates returns true when both check-in and check-out are set.
func (b *Booking) HasDates() bool {
	return b.CheckIn != nil && b.CheckOut != nil
}

// BookingChanges carries the fields an update overwrites.
// Nil fields are left untouched; UpdatedAt is always written.
type BookingChanges struct {
	GuestName       *string
	Email           *string
	Guests          *int
	RoomTypes       map[string]int
	TotalRooms      *int
	TotalCapacity   *int
	TotalCost       *int
	CheckIn         *Date
	CheckOut        *Date
	SpecialRequests *string
	Status          *Status
	UpdatedAt       time.Time
}

// Apply copies every set field of c onto b.
func (c *BookingChanges) Apply(b *Booking) {
	if c.GuestName != nil {
		b.GuestName = *c.GuestName
	}
	if c.Email != nil {
		b.Email = *c.Email
	}
	if c.Guests != nil {
		b.Guests = *c.Guests
	}
	if c.RoomTypes != nil {
		b.RoomTypes = CopyRoomTypes(c.RoomTypes)
	}
	if c.TotalRooms != nil {
		b.TotalRooms = *c.TotalRooms
	}
	if c.TotalCapacity != nil {
		b.TotalCapacity = *c.TotalCapacity
	}
	if c.TotalCost != nil {
		b.TotalCost = *c.TotalCost
	}
	if c.CheckIn != nil {
		d := *c.CheckIn
		b.CheckIn = &d
	}
	if c.CheckOut != nil {
		d := *c.CheckOut
		b.CheckOut = &d
	}
	if c.SpecialRequests != nil {
		b.SpecialRequests = *c.SpecialRequests
	}
	if c.Status != nil {
		b.Status = *c.Status
	}
	b.UpdatedAt = c.UpdatedAt
}

// CopyRoomTypes returns an independent copy of a room-type quantity map.
func CopyRoomTypes(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the booking.
func (b *Booking) Clone() *Booking {
	c := *b
	c.RoomTypes = CopyRoomTypes(b.RoomTypes)
	if b.CheckIn != nil {
		d := *b.CheckIn
		c.CheckIn = &d
	}
	if b.CheckOut != nil {
		d := *b.CheckOut
		c.CheckOut = &d
	}
	return &c
}

// CreateBookingRequest is the payload for creating a new booking.
type CreateBookingRequest struct {
	Guests          int            `json:"guests" validate:"required,gt=0"`
	RoomTypes       map[string]int `json:"roomTypes" validate:"required,min=1,dive,keys,required,endkeys,gte=0"`
	CheckIn         *Date          `json:"checkIn"`
	CheckOut        *Date          `json:"checkOut"`
	GuestName       string         `json:"guestName" validate:"required"`
	Email           string         `json:"email" validate:"required,email"`
	SpecialRequests string         `json:"specialRequests"`
}

// UpdateBookingRequest is the payload for a partial update.
// Only non-nil fields are applied.
type UpdateBookingRequest struct {
	GuestName       *string        `json:"guestName"`
	Email           *string        `json:"email"`
	Guests          *int           `json:"guests"`
	RoomTypes       map[string]int `json:"roomTypes"`
	CheckIn         *Date          `json:"checkIn"`
	CheckOut        *Date          `json:"checkOut"`
	SpecialRequests *string        `json:"specialRequests"`
	Status          *Status        `json:"status"`
}

// DataResponse wraps every successful payload.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BookingListResponse is returned by GET /bookings.
type BookingListResponse struct {
	Message  string    `json:"message"`
	Count    int       `json:"count"`
	Bookings []Booking `json:"bookings"`
}

// BookingMessageResponse pairs a booking with a human-readable message.
type BookingMessageResponse struct {
	Message string   `json:"message"`
	Booking *Booking `json:"booking"`
}
