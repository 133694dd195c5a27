package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/clock"
	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/obs"
	"github.com/iliyamo/event-seat-reservation/internal/queue"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
)

const (
	defaultLockTTL = 2 * time.Minute
	publishTimeout = 2 * time.Second
)

// LockManager drives the seat state machine:
//
//	available --acquire--> locked(holder, expiry) --confirm--> reserved
//	locked --release (holder) / sweep (expired)--> available
//
// Every transition is a single conditional write in the store, so
// concurrent callers race on the seat row and exactly one wins.  Expired
// locks are reclaimed lazily before seat reads and lock attempts.
type LockManager struct {
	seats    SeatStore
	events   EventStore
	ledger   *Ledger
	clock    clock.Clock
	ttl      time.Duration
	activity ActivityPublisher
	logger   *slog.Logger
}

type LockManagerOption func(*LockManager)

// WithLockTTL overrides the default lock TTL.
func WithLockTTL(d time.Duration) LockManagerOption {
	return func(m *LockManager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithActivityPublisher sends seat transitions to p.
func WithActivityPublisher(p ActivityPublisher) LockManagerOption {
	return func(m *LockManager) {
		if p != nil {
			m.activity = p
		}
	}
}

// WithLogger sets the logger used for transition logs.
func WithLogger(l *slog.Logger) LockManagerOption {
	return func(m *LockManager) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewLockManager(seats SeatStore, events EventStore, ledger *Ledger, clk clock.Clock, opts ...LockManagerOption) *LockManager {
	m := &LockManager{
		seats:    seats,
		events:   events,
		ledger:   ledger,
		clock:    clk,
		ttl:      defaultLockTTL,
		activity: nopPublisher{},
		logger:   obs.Logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the lock duration granted by Acquire.
func (m *LockManager) TTL() time.Duration { return m.ttl }

// ListSeats sweeps expired locks of the event and returns its seats in
// (row, number) order.
func (m *LockManager) ListSeats(ctx context.Context, eventID string) ([]model.Seat, error) {
	if err := validID("event", eventID); err != nil {
		return nil, err
	}
	if _, err := m.events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	if err := m.sweepEvent(ctx, eventID, m.clock.Now()); err != nil {
		return nil, err
	}
	return m.seats.ListSeats(ctx, eventID)
}

// Acquire locks an available seat for userID until now+TTL.  A seat that
// is locked (by anyone, including the caller) or reserved yields
// repository.ErrConflict.
func (m *LockManager) Acquire(ctx context.Context, seatID, userID string) (*model.Seat, error) {
	if err := validID("seat", seatID); err != nil {
		return nil, err
	}
	seat, err := m.seats.GetSeat(ctx, seatID)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	if err := m.sweepEvent(ctx, seat.EventID, now); err != nil {
		return nil, err
	}

	expiresAt := now.Add(m.ttl)
	ok, err := m.seats.AcquireSeat(ctx, seatID, userID, expiresAt, now)
	if err != nil {
		return nil, fmt.Errorf("acquire seat %s: %w", seatID, err)
	}
	if !ok {
		return nil, fmt.Errorf("seat %s is not available: %w", seatID, repository.ErrConflict)
	}

	seat.Lock(userID, expiresAt, now)
	m.logger.Info("seat locked", "seat_id", seatID, "event_id", seat.EventID, "user_id", userID, "expires_at", expiresAt)
	m.publish(ctx, queue.SeatActivity{
		Kind: queue.SeatLocked, SeatID: seat.ID, EventID: seat.EventID, UserID: userID,
		Row: seat.Row, Number: seat.Number, ExpiresAt: &expiresAt, At: now,
	})
	return seat, nil
}

// Release returns a seat locked by userID to available.  It fails with
// repository.ErrSeatNotHeld when the seat is not locked by the caller.
func (m *LockManager) Release(ctx context.Context, seatID, userID string) (*model.Seat, error) {
	if err := validID("seat", seatID); err != nil {
		return nil, err
	}
	now := m.clock.Now()
	ok, err := m.seats.ReleaseSeat(ctx, seatID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("release seat %s: %w", seatID, err)
	}
	seat, err := m.seats.GetSeat(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("seat %s: %w", seatID, repository.ErrSeatNotHeld)
	}

	m.logger.Info("seat released", "seat_id", seatID, "event_id", seat.EventID, "user_id", userID)
	m.publish(ctx, queue.SeatActivity{
		Kind: queue.SeatReleased, SeatID: seat.ID, EventID: seat.EventID, UserID: userID,
		Row: seat.Row, Number: seat.Number, At: now,
	})
	return seat, nil
}

// Confirm turns the caller's live lock into a reservation.  A lock that
// has expired is swept on the spot and reported as
// repository.ErrLockExpired; any other miss is repository.ErrConflict.
// When the reservation insert fails the seat stays locked.
func (m *LockManager) Confirm(ctx context.Context, seatID, userID string) (*model.Seat, *model.Reservation, error) {
	if err := validID("seat", seatID); err != nil {
		return nil, nil, err
	}
	seat, err := m.seats.GetSeat(ctx, seatID)
	if err != nil {
		return nil, nil, err
	}

	now := m.clock.Now()
	res, ok, err := m.ledger.Claim(ctx, seat, userID, now)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, m.confirmMiss(ctx, seatID, userID, now)
	}

	seat.Reserve(now)
	m.logger.Info("seat reserved", "seat_id", seatID, "event_id", seat.EventID, "user_id", userID, "reservation_id", res.ID)
	m.publish(ctx, queue.SeatActivity{
		Kind: queue.SeatReserved, SeatID: seat.ID, EventID: seat.EventID, UserID: userID,
		Row: seat.Row, Number: seat.Number, ReservationID: res.ID, At: now,
	})
	return seat, res, nil
}

// confirmMiss classifies a failed claim and sweeps the seat when the lock
// has lapsed so the next read sees it available.
func (m *LockManager) confirmMiss(ctx context.Context, seatID, userID string, now time.Time) error {
	current, err := m.seats.GetSeat(ctx, seatID)
	if err != nil {
		return err
	}
	if current.LockExpired(now) {
		swept, err := m.seats.SweepSeat(ctx, seatID, now)
		if err != nil {
			return fmt.Errorf("sweep seat %s: %w", seatID, err)
		}
		if swept {
			m.expired(ctx, current.EventID, []string{seatID}, now)
		}
		if current.LockedBy != nil && *current.LockedBy == userID {
			return fmt.Errorf("seat %s: %w", seatID, repository.ErrLockExpired)
		}
	}
	if current.Status == model.SeatReserved {
		return fmt.Errorf("seat %s is already reserved: %w", seatID, repository.ErrConflict)
	}
	return fmt.Errorf("seat %s is not locked by caller: %w", seatID, repository.ErrConflict)
}

// SweepAll reclaims expired locks across all events and returns how many
// seats were swept.  It backs the periodic sweeper.
func (m *LockManager) SweepAll(ctx context.Context) (int, error) {
	now := m.clock.Now()
	ids, err := m.seats.SweepExpired(ctx, "", now)
	if err != nil {
		return len(ids), fmt.Errorf("sweep expired locks: %w", err)
	}
	m.expired(ctx, "", ids, now)
	return len(ids), nil
}

func (m *LockManager) sweepEvent(ctx context.Context, eventID string, now time.Time) error {
	ids, err := m.seats.SweepExpired(ctx, eventID, now)
	if err != nil {
		return fmt.Errorf("sweep event %s: %w", eventID, err)
	}
	m.expired(ctx, eventID, ids, now)
	return nil
}

func (m *LockManager) expired(ctx context.Context, eventID string, seatIDs []string, now time.Time) {
	if len(seatIDs) == 0 {
		return
	}
	m.logger.Debug("expired locks swept", "event_id", eventID, "count", len(seatIDs))
	for _, id := range seatIDs {
		m.publish(ctx, queue.SeatActivity{Kind: queue.SeatExpired, SeatID: id, EventID: eventID, At: now})
	}
}

// publish is best effort: the transition is already committed, so a
// broker failure is logged and otherwise ignored.
func (m *LockManager) publish(ctx context.Context, ev queue.SeatActivity) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := m.activity.Publish(pctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		m.logger.Warn("seat activity not published", "kind", ev.Kind, "seat_id", ev.SeatID, "err", err)
	}
}
