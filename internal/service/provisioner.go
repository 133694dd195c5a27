package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/clock"
	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/obs"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
)

// MaxSeatsPerEvent bounds a single provisioning request.
const MaxSeatsPerEvent = 10000

// MaxSeatPrice is the largest price the seats.price DECIMAL(10,2) column holds.
const MaxSeatPrice = 99999999.99

// ProvisionInput describes a seat map: rows × seatsPerRow, optionally
// shaped, all seats at the same price.
type ProvisionInput struct {
	Rows        int
	SeatsPerRow int
	Price       float64
	Shape       string
}

// Provisioner (re)generates the seat inventory of an event.
type Provisioner struct {
	events EventStore
	store  ProvisionStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewProvisioner(events EventStore, store ProvisionStore, clk clock.Clock) *Provisioner {
	return &Provisioner{events: events, store: store, clock: clk, logger: obs.Logger}
}

// Provision replaces every seat of the event with the layout described by
// in and returns the number of seats inserted.  Reservations pointing at
// the replaced seats are not removed.
func (p *Provisioner) Provision(ctx context.Context, caller Caller, eventID string, in ProvisionInput) (int, error) {
	if caller.Role != RoleOrg {
		return 0, fmt.Errorf("provision seats: %w", repository.ErrForbidden)
	}
	if err := validID("event", eventID); err != nil {
		return 0, err
	}
	shape, err := validateLayout(in)
	if err != nil {
		return 0, err
	}
	if _, err := p.ownedEvent(ctx, caller, eventID); err != nil {
		return 0, err
	}

	now := p.clock.Now()
	var shapeTag *string
	if shape != "" {
		s := string(shape)
		shapeTag = &s
	}
	seats := BuildSeats(eventID, in.Rows, in.SeatsPerRow, in.Price, shape, now)
	for i := range seats {
		seats[i].StageShape = shapeTag
	}

	n, err := p.store.ReplaceSeats(ctx, eventID, seats, shapeTag, now)
	if err != nil {
		return 0, fmt.Errorf("replace seats of event %s: %w", eventID, err)
	}
	p.logger.Info("seats provisioned", "event_id", eventID, "count", n, "rows", in.Rows, "shape", string(shape))
	return n, nil
}

// UpdateStageShape changes the layout tag of the event and its seats.
// The seat set itself is not touched.
func (p *Provisioner) UpdateStageShape(ctx context.Context, caller Caller, eventID, raw string) (model.StageShape, error) {
	if caller.Role != RoleOrg {
		return "", fmt.Errorf("update stage shape: %w", repository.ErrForbidden)
	}
	if err := validID("event", eventID); err != nil {
		return "", err
	}
	shape, ok := model.ParseStageShape(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown stage shape %q", repository.ErrInvalidInput, raw)
	}
	if _, err := p.ownedEvent(ctx, caller, eventID); err != nil {
		return "", err
	}
	if err := p.store.SetStageShape(ctx, eventID, string(shape), p.clock.Now()); err != nil {
		return "", fmt.Errorf("set stage shape of event %s: %w", eventID, err)
	}
	p.logger.Info("stage shape updated", "event_id", eventID, "shape", string(shape))
	return shape, nil
}

func (p *Provisioner) ownedEvent(ctx context.Context, caller Caller, eventID string) (*model.Event, error) {
	ev, err := p.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.OrganizerID != caller.UserID {
		return nil, fmt.Errorf("event %s is organised by someone else: %w", eventID, repository.ErrForbidden)
	}
	return ev, nil
}

func validateLayout(in ProvisionInput) (model.StageShape, error) {
	if in.Rows < 1 {
		return "", fmt.Errorf("%w: rows must be at least 1", repository.ErrInvalidInput)
	}
	if in.SeatsPerRow < 1 {
		return "", fmt.Errorf("%w: seatsPerRow must be at least 1", repository.ErrInvalidInput)
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return "", fmt.Errorf("%w: price must be a non-negative number", repository.ErrInvalidInput)
	}
	if in.Price > MaxSeatPrice {
		return "", fmt.Errorf("%w: price must not exceed %.2f", repository.ErrInvalidInput, MaxSeatPrice)
	}
	var shape model.StageShape
	if in.Shape != "" {
		s, ok := model.ParseStageShape(in.Shape)
		if !ok {
			return "", fmt.Errorf("%w: unknown stage shape %q", repository.ErrInvalidInput, in.Shape)
		}
		shape = s
	}
	if in.Rows > MaxSeatsPerEvent || in.SeatsPerRow > MaxSeatsPerEvent || LayoutSize(in.Rows, in.SeatsPerRow, shape) > MaxSeatsPerEvent {
		return "", fmt.Errorf("%w: layout exceeds %d seats", repository.ErrInvalidInput, MaxSeatsPerEvent)
	}
	return shape, nil
}

// LayoutSize is the number of seats BuildSeats produces.
func LayoutSize(rows, seatsPerRow int, shape model.StageShape) int {
	total := 0
	for i := 0; i < rows; i++ {
		total += model.SeatsForRow(i, rows, seatsPerRow, shape)
	}
	return total
}

// BuildSeats lays out rows labelled A, B, ... with seats numbered from 1.
// The shape decides how many seats each row gets.
func BuildSeats(eventID string, rows, seatsPerRow int, price float64, shape model.StageShape, now time.Time) []model.Seat {
	seats := make([]model.Seat, 0, LayoutSize(rows, seatsPerRow, shape))
	for i := 0; i < rows; i++ {
		label := model.RowLabel(i)
		n := model.SeatsForRow(i, rows, seatsPerRow, shape)
		for j := 1; j <= n; j++ {
			seats = append(seats, model.Seat{
				ID:        newID(),
				EventID:   eventID,
				Row:       label,
				Number:    uint32(j),
				Price:     price,
				Status:    model.SeatAvailable,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
	}
	return seats
}
