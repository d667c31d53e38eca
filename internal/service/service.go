// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/idempotency"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/lock"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/pricing"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrNotEnoughRooms is returned when the requested rooms exceed what
// overlapping bookings leave of the inventory.
var ErrNotEnoughRooms = pricing.ErrNotEnoughRooms

// BookingService orchestrates booking operations.
type BookingService struct {
	bookings  repository.BookingRepository
	locker    lock.Locker
	keys      idempotency.Store
	validate  *validator.Validate
	inventory int
	now       func() time.Time
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithLocker guards the availability check and the write with l.
func WithLocker(l lock.Locker) Option {
	return func(s *BookingService) { s.locker = l }
}

// WithIdempotency enables Idempotency-Key replay through store.
func WithIdempotency(store idempotency.Store) Option {
	return func(s *BookingService) { s.keys = store }
}

// WithInventory overrides the total number of rooms.
func WithInventory(rooms int) Option {
	return func(s *BookingService) { s.inventory = rooms }
}

// WithClock overrides the time source used for "today" and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) { s.now = now }
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(bookings repository.BookingRepository, opts ...Option) *BookingService {
	s := &BookingService{
		bookings:  bookings,
		locker:    lock.Noop{},
		keys:      idempotency.Noop{},
		validate:  newValidator(),
		inventory: pricing.Inventory,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking validates the request, checks availability, prices the stay
// and stores the booking. A non-empty idempotencyKey that already produced a
// booking returns that booking.
func (s *BookingService) CreateBooking(ctx context.Context, req model.CreateBookingRequest, idempotencyKey string) (*model.Booking, error) {
	req.GuestName = strings.TrimSpace(req.GuestName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.SpecialRequests = strings.TrimSpace(req.SpecialRequests)

	if err := s.validate.Struct(req); err != nil {
		return nil, invalid(describe(err))
	}
	if err := pricing.ValidateRoomCount(req.RoomTypes, s.inventory); err != nil {
		return nil, invalidErr(err)
	}
	if err := pricing.CompleteDates(req.CheckIn, req.CheckOut); err != nil {
		return nil, invalidErr(err)
	}
	if err := pricing.ValidateDates(req.CheckIn, req.CheckOut, s.today()); err != nil {
		return nil, invalidErr(err)
	}

	unlock, err := s.locker.Lock(ctx, lock.InventoryKey)
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}
	defer unlock()

	if idempotencyKey != "" {
		if existing, ok, err := s.replay(ctx, idempotencyKey); err != nil || ok {
			return existing, err
		}
	}

	requested := pricing.CountRooms(req.RoomTypes)
	if req.CheckIn != nil && req.CheckOut != nil {
		if err := s.checkAvailability(ctx, *req.CheckIn, *req.CheckOut, requested, ""); err != nil {
			return nil, err
		}
	}

	quote, err := pricing.QuoteBooking(req.Guests, req.RoomTypes, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, invalidErr(err)
	}

	now := s.now().UTC()
	booking := &model.Booking{
		BookingID:       uuid.New().String(),
		GuestName:       req.GuestName,
		Email:           req.Email,
		Guests:          req.Guests,
		RoomTypes:       model.CopyRoomTypes(req.RoomTypes),
		TotalRooms:      quote.TotalRooms,
		TotalCapacity:   quote.TotalCapacity,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		TotalCost:       quote.TotalCost,
		SpecialRequests: req.SpecialRequests,
		Status:          model.StatusConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if idempotencyKey != "" {
		if err := s.keys.Remember(ctx, idempotencyKey, booking.BookingID); err != nil {
			log.Printf("booking %s created but idempotency key not stored: %v", booking.BookingID, err)
		}
	}

	return booking, nil
}

// ListBookings returns all bookings.
func (s *BookingService) ListBookings(ctx context.Context) ([]model.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// GetBooking returns a single booking by id.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("booking id is required")
	}
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

// UpdateBooking applies a partial update. Derived totals are recomputed when
// guests, rooms or dates change, and availability is re-checked when rooms or
// dates change on a dated booking.
func (s *BookingService) UpdateBooking(ctx context.Context, id string, req model.UpdateBookingRequest) (*model.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("booking id is required")
	}

	existing, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	changes, err := s.buildChanges(req)
	if err != nil {
		return nil, err
	}

	merged := existing.Clone()
	changes.Apply(merged)

	datesChanged := req.CheckIn != nil || req.CheckOut != nil
	roomsChanged := req.RoomTypes != nil

	if datesChanged {
		if err := pricing.CompleteDates(merged.CheckIn, merged.CheckOut); err != nil {
			return nil, invalidErr(err)
		}
		if err := pricing.ValidateDates(merged.CheckIn, merged.CheckOut, s.today()); err != nil {
			return nil, invalidErr(err)
		}
	}

	if datesChanged || roomsChanged || req.Guests != nil {
		quote, err := pricing.QuoteBooking(merged.Guests, merged.RoomTypes, merged.CheckIn, merged.CheckOut)
		if err != nil {
			return nil, invalidErr(err)
		}
		changes.TotalRooms = &quote.TotalRooms
		changes.TotalCapacity = &quote.TotalCapacity
		changes.TotalCost = &quote.TotalCost
	}

	if (datesChanged || roomsChanged) && merged.HasDates() {
		unlock, err := s.locker.Lock(ctx, lock.InventoryKey)
		if err != nil {
			return nil, fmt.Errorf("lock inventory: %w", err)
		}
		defer unlock()

		requested := pricing.CountRooms(merged.RoomTypes)
		if err := s.checkAvailability(ctx, *merged.CheckIn, *merged.CheckOut, requested, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.bookings.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return updated, nil
}

// DeleteBooking removes a booking and returns it.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) (*model.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, invalid("booking id is required")
	}
	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	return deleted, nil
}

// Inventory returns the hotel's total room count.
func (s *BookingService) Inventory() int {
	return s.inventory
}

func (s *BookingService) buildChanges(req model.UpdateBookingRequest) (model.BookingChanges, error) {
	changes := model.BookingChanges{
		RoomTypes: model.CopyRoomTypes(req.RoomTypes),
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
		UpdatedAt: s.now().UTC(),
	}

	if req.GuestName != nil {
		name := strings.TrimSpace(*req.GuestName)
		if name == "" {
			return changes, invalid("guestName cannot be empty")
		}
		changes.GuestName = &name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := s.validate.Var(email, "required,email"); err != nil {
			return changes, invalid("invalid email format")
		}
		changes.Email = &email
	}
	if req.Guests != nil {
		if *req.Guests <= 0 {
			return changes, invalid("guests must be greater than 0")
		}
		guests := *req.Guests
		changes.Guests = &guests
	}
	if req.RoomTypes != nil && len(req.RoomTypes) == 0 {
		return changes, invalid("roomTypes must contain at least one room type")
	}
	if req.RoomTypes != nil {
		if err := pricing.ValidateRoomCount(req.RoomTypes, s.inventory); err != nil {
			return changes, invalidErr(err)
		}
	}
	if req.SpecialRequests != nil {
		special := strings.TrimSpace(*req.SpecialRequests)
		changes.SpecialRequests = &special
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return changes, invalid(fmt.Sprintf("invalid status. Must be one of: %s", statusList()))
		}
		status := *req.Status
		changes.Status = &status
	}
	return changes, nil
}

// checkAvailability scans overlapping bookings, skipping excludeID, and
// rejects requests larger than the remaining inventory.
func (s *BookingService) checkAvailability(ctx context.Context, checkIn, checkOut model.Date, requested int, excludeID string) error {
	overlapping, err := s.bookings.ListOverlapping(ctx, checkIn, checkOut)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if excludeID != "" {
		kept := overlapping[:0]
		for _, b := range overlapping {
			if b.BookingID != excludeID {
				kept = append(kept, b)
			}
		}
		overlapping = kept
	}
	return pricing.CheckAvailability(s.inventory, requested, overlapping)
}

func (s *BookingService) replay(ctx context.Context, key string) (*model.Booking, bool, error) {
	id, found, err := s.keys.Lookup(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	booking, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		// The original booking was deleted since; treat the key as fresh.
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load replayed booking: %w", err)
	}
	return booking, true, nil
}

func (s *BookingService) today() model.Date {
	return model.NewDate(s.now().UTC())
}

func statusList() string {
	names := make([]string, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		names = append(names, string(st))
	}
	return strings.Join(names, ", ")
}
