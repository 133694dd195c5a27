package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/clock"
	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
)

// CreateEventInput is what an organiser supplies for a new event.
type CreateEventInput struct {
	Title      string
	Date       time.Time
	Location   string
	Type       string
	StageShape string
}

// EventService is the thin event collaborator the seat flow relies on for
// ownership checks.
type EventService struct {
	store EventStore
	clock clock.Clock
}

func NewEventService(store EventStore, clk clock.Clock) *EventService {
	return &EventService{store: store, clock: clk}
}

// Create registers a new event organised by the caller.
func (s *EventService) Create(ctx context.Context, caller Caller, in CreateEventInput) (*model.Event, error) {
	if caller.Role != RoleOrg {
		return nil, fmt.Errorf("create event: %w", repository.ErrForbidden)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", repository.ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", repository.ErrInvalidInput)
	}
	typ := model.EventPublic
	switch strings.ToLower(strings.TrimSpace(in.Type)) {
	case "", string(model.EventPublic):
	case string(model.EventPrivate):
		typ = model.EventPrivate
	default:
		return nil, fmt.Errorf("%w: type must be public or private", repository.ErrInvalidInput)
	}
	var shape *string
	if in.StageShape != "" {
		sh, ok := model.ParseStageShape(in.StageShape)
		if !ok {
			return nil, fmt.Errorf("%w: unknown stage shape %q", repository.ErrInvalidInput, in.StageShape)
		}
		v := string(sh)
		shape = &v
	}

	now := s.clock.Now()
	ev := &model.Event{
		ID:          newID(),
		OrganizerID: caller.UserID,
		Title:       title,
		Date:        in.Date.UTC(),
		Location:    strings.TrimSpace(in.Location),
		Type:        typ,
		StageShape:  shape,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if err := validID("event", id); err != nil {
		return nil, err
	}
	return s.store.GetEvent(ctx, id)
}

// ListPublic returns the public events ordered by date.
func (s *EventService) ListPublic(ctx context.Context) ([]model.Event, error) {
	return s.store.ListPublicEvents(ctx)
}

// ListMine returns the events organised by the caller.
func (s *EventService) ListMine(ctx context.Context, caller Caller) ([]model.Event, error) {
	if caller.Role != RoleOrg {
		return nil, fmt.Errorf("list organiser events: %w", repository.ErrForbidden)
	}
	return s.store.ListEventsByOrganizer(ctx, caller.UserID)
}
