// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/model"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/pricing"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/repository"
	"github.com/Shivanand-hulikatti/hotel-room-bookings/internal/service"
	"github.com/go-chi/chi/v5"
)

// IdempotencyHeader lets clients retry POST /bookings safely.
const IdempotencyHeader = "Idempotency-Key"

// BookingHandler holds all HTTP handlers for the booking API.
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, model.DataResponse{Data: v})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps service errors to a status code. Anything the
// service did not classify is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if verr, ok := service.IsValidationError(err); ok {
		writeError(w, http.StatusBadRequest, verr.Message)
		return
	}
	switch {
	case errors.Is(err, service.ErrNotEnoughRooms):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// CreateBooking handles POST /bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.CreateBooking(r.Context(), req, r.Header.Get(IdempotencyHeader))
	if err != nil {
		writeServiceError(w, r, err, "An error occurred while processing the booking.")
		return
	}

	writeData(w, http.StatusCreated, model.BookingMessageResponse{
		Message: "Booking created successfully",
		Booking: booking,
	})
}

// ListBookings handles GET /bookings
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ListBookings(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to retrieve bookings. Please try again.")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if bookings == nil {
		bookings = []model.Booking{}
	}

	writeData(w, http.StatusOK, model.BookingListResponse{
		Message:  "Bookings retrieved successfully",
		Count:    len(bookings),
		Bookings: bookings,
	})
}

// GetBooking handles GET /bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.svc.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to retrieve booking. Please try again.")
		return
	}

	writeData(w, http.StatusOK, model.BookingMessageResponse{
		Message: "Booking retrieved successfully",
		Booking: booking,
	})
}

// UpdateBooking handles PUT /bookings/{id}
// Only the fields present in the body are changed.
func (h *BookingHandler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	booking, err := h.svc.UpdateBooking(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update booking. Please try again.")
		return
	}

	writeData(w, http.StatusOK, model.BookingMessageResponse{
		Message: "Booking updated successfully",
		Booking: booking,
	})
}

// DeleteBooking handles DELETE /bookings/{id}
func (h *BookingHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.svc.DeleteBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to delete booking. Please try again.")
		return
	}

	writeData(w, http.StatusOK, model.BookingMessageResponse{
		Message: "Booking deleted successfully",
		Booking: booking,
	})
}

// RoomsResponse describes the hotel's room table.
type RoomsResponse struct {
	Inventory int            `json:"inventory"`
	Rooms     []pricing.Room `json:"rooms"`
}

// ListRooms handles GET /rooms
func (h *BookingHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, RoomsResponse{
		Inventory: h.svc.Inventory(),
		Rooms:     pricing.Rooms(),
	})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
