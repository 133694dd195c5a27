package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// Ledger records confirmed seat-to-user assignments.  A seat appears in
// at most one reservation, ever; the store's unique index on seat_id is
// the backstop behind the lock manager's compare-and-set.
type Ledger struct {
	store LedgerStore
}

// NewLedger returns a Ledger backed by store.
func NewLedger(store LedgerStore) *Ledger {
	return &Ledger{store: store}
}

// Claim reserves seat for userID and records the reservation in one
// unit.  ok is false when the caller does not hold a live lock at now; a
// duplicate reservation surfaces as repository.ErrDuplicateReservation.
func (l *Ledger) Claim(ctx context.Context, seat *model.Seat, userID string, now time.Time) (*model.Reservation, bool, error) {
	res := model.Reservation{
		ID:        newID(),
		UserID:    userID,
		EventID:   seat.EventID,
		SeatID:    seat.ID,
		Status:    model.ReservationConfirmed,
		CreatedAt: now,
	}
	ok, err := l.store.ClaimSeat(ctx, res, now)
	if err != nil {
		return nil, false, fmt.Errorf("claim seat %s: %w", seat.ID, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &res, true, nil
}

// ListByUser returns the caller's reservations, newest first.
func (l *Ledger) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	return l.store.ListReservationsByUser(ctx, userID)
}

// ForSeat returns the reservation of a seat, or nil.
func (l *Ledger) ForSeat(ctx context.Context, seatID string) (*model.Reservation, error) {
	if err := validID("seat", seatID); err != nil {
		return nil, err
	}
	return l.store.GetReservationBySeat(ctx, seatID)
}
