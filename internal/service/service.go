// Package service implements the seat reservation protocol on top of the
// repository layer: the lock manager, the reservation ledger, seat
// provisioning, event management and the expiry sweeper.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/queue"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
)

// Roles carried by the identity provider's tokens.
const (
	RoleAdmin  = "admin"
	RoleOrg    = "org"
	RoleClient = "client"
)

// Caller identifies the authenticated user on whose behalf a service
// method runs.
type Caller struct {
	UserID string
	Role   string
}

// SeatStore is the seat half of the store used by the lock manager.  All
// writes are conditional and report whether they matched.
type SeatStore interface {
	ListSeats(ctx context.Context, eventID string) ([]model.Seat, error)
	GetSeat(ctx context.Context, id string) (*model.Seat, error)
	AcquireSeat(ctx context.Context, seatID, userID string, expiresAt, now time.Time) (bool, error)
	ReleaseSeat(ctx context.Context, seatID, userID string, now time.Time) (bool, error)
	SweepSeat(ctx context.Context, seatID string, now time.Time) (bool, error)
	SweepExpired(ctx context.Context, eventID string, now time.Time) ([]string, error)
}

// LedgerStore records and reads reservations.
type LedgerStore interface {
	ClaimSeat(ctx context.Context, res model.Reservation, now time.Time) (bool, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]model.Reservation, error)
	GetReservationBySeat(ctx context.Context, seatID string) (*model.Reservation, error)
}

// EventStore persists events.
type EventStore interface {
	CreateEvent(ctx context.Context, ev *model.Event) error
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListPublicEvents(ctx context.Context) ([]model.Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error)
}

// ProvisionStore replaces seat maps.
type ProvisionStore interface {
	ReplaceSeats(ctx context.Context, eventID string, seats []model.Seat, shape *string, now time.Time) (int, error)
	SetStageShape(ctx context.Context, eventID, shape string, now time.Time) error
}

// ActivityPublisher receives seat transitions after they are committed.
type ActivityPublisher interface {
	Publish(ctx context.Context, ev queue.SeatActivity) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.SeatActivity) error { return nil }

// validID rejects anything that is not a UUID.
func validID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed %s id %q", repository.ErrInvalidInput, kind, id)
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}
