package model

import "time"

// SeatStatus is the lifecycle state of a seat.  Seats start out
// available, move to locked while a user holds them and end up
// reserved once the hold is confirmed.  Reserved is terminal.
type SeatStatus string

const (
    SeatAvailable SeatStatus = "available"
    SeatLocked    SeatStatus = "locked"
    SeatReserved  SeatStatus = "reserved"
)

// Seat describes a bookable seat of an event.  Seats are uniquely
// identified by their event, row label and seat number.  LockedBy and
// LockExpiresAt are set if and only if Status is SeatLocked.
//
// Fields:
//  ID            – primary key identifier (UUID).
//  EventID       – event owning the seat; never changes after creation.
//  Row           – row label (A, B, ... AA).
//  Number        – 1-based position within the row.
//  Price         – seat price, non-negative.
//  Status        – available, locked or reserved.
//  LockedBy      – user holding the lock (nil unless locked).
//  LockExpiresAt – instant the lock lapses (nil unless locked).
//  StageShape    – optional layout tag used by seat map renderers.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Seat struct {
    ID            string     `json:"id"`                        // seats.id
    EventID       string     `json:"event_id"`                  // seats.event_id
    Row           string     `json:"row"`                       // seats.row_label
    Number        uint32     `json:"number"`                    // seats.seat_number
    Price         float64    `json:"price"`                     // seats.price
    Status        SeatStatus `json:"status"`                    // seats.status
    LockedBy      *string    `json:"locked_by,omitempty"`       // seats.locked_by (nullable)
    LockExpiresAt *time.Time `json:"lock_expires_at,omitempty"` // seats.lock_expires_at (nullable)
    StageShape    *string    `json:"stage_shape,omitempty"`     // seats.stage_shape (nullable)
    CreatedAt     time.Time  `json:"created_at"`                // seats.created_at
    UpdatedAt     time.Time  `json:"updated_at"`                // seats.updated_at
}

// LockExpired reports whether the seat is locked and its lock has
// lapsed at now.
func (s *Seat) LockExpired(now time.Time) bool {
    return s.Status == SeatLocked && s.LockExpiresAt != nil && !s.LockExpiresAt.After(now)
}

// HeldBy reports whether userID holds a live lock on the seat at now.
func (s *Seat) HeldBy(userID string, now time.Time) bool {
    return s.Status == SeatLocked &&
        s.LockedBy != nil && *s.LockedBy == userID &&
        s.LockExpiresAt != nil && s.LockExpiresAt.After(now)
}

// Lock moves the seat to locked for userID until expiresAt.
func (s *Seat) Lock(userID string, expiresAt, now time.Time) {
    holder := userID
    exp := expiresAt
    s.Status = SeatLocked
    s.LockedBy = &holder
    s.LockExpiresAt = &exp
    s.UpdatedAt = now
}

// Unlock returns the seat to available and clears the lock metadata.
func (s *Seat) Unlock(now time.Time) {
    s.Status = SeatAvailable
    s.LockedBy = nil
    s.LockExpiresAt = nil
    s.UpdatedAt = now
}

// Reserve marks the seat as reserved.  The lock metadata is cleared so
// that the locked-iff-holder invariant keeps holding.
func (s *Seat) Reserve(now time.Time) {
    s.Status = SeatReserved
    s.LockedBy = nil
    s.LockExpiresAt = nil
    s.UpdatedAt = now
}
