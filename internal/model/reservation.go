package model

import "time"

// ReservationStatus is the state of a reservation record.  Only
// confirmed reservations are produced by the seat flow; pending is kept
// for schema compatibility.
type ReservationStatus string

const (
    ReservationPending   ReservationStatus = "pending"
    ReservationConfirmed ReservationStatus = "confirmed"
)

// Reservation records a confirmed seat-to-user assignment.  A seat is
// referenced by at most one reservation, ever.  Re-provisioning an
// event does not remove reservations pointing at its previous seats.
//
// Fields:
//  ID        – primary key identifier (UUID).
//  UserID    – user who confirmed the seat.
//  EventID   – event of the seat.
//  SeatID    – reserved seat; unique across all reservations.
//  Status    – confirmed (or pending, unused).
//  CreatedAt – creation timestamp.
type Reservation struct {
    ID        string            `json:"id"`         // reservations.id
    UserID    string            `json:"user_id"`    // reservations.user_id
    EventID   string            `json:"event_id"`   // reservations.event_id
    SeatID    string            `json:"seat_id"`    // reservations.seat_id
    Status    ReservationStatus `json:"status"`     // reservations.status
    CreatedAt time.Time         `json:"created_at"` // reservations.created_at
}
