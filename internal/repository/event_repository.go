package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// EventRepo manages persistence for events.  The seat flow only needs an
// event's organiser and its advertised seat count; the remaining columns
// back the listing endpoints.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, organizer_id, title, event_date, location, available_seats, event_type, stage_shape, created_at, updated_at`

func scanEvent(sc rowScanner) (model.Event, error) {
	var (
		ev    model.Event
		typ   string
		shape sql.NullString
	)
	err := sc.Scan(&ev.ID, &ev.OrganizerID, &ev.Title, &ev.Date, &ev.Location,
		&ev.AvailableSeats, &typ, &shape, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return ev, err
	}
	ev.Type = model.EventType(typ)
	if shape.Valid {
		v := shape.String
		ev.StageShape = &v
	}
	return ev, nil
}

// CreateEvent inserts a new event.  The caller assigns the id and
// timestamps.
func (r *EventRepo) CreateEvent(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events (id, organizer_id, title, event_date, location, available_seats, event_type, stage_shape, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var shape any
	if ev.StageShape != nil {
		shape = *ev.StageShape
	}
	_, err := r.db.ExecContext(ctx, q, ev.ID, ev.OrganizerID, ev.Title, ev.Date.UTC(), ev.Location,
		ev.AvailableSeats, string(ev.Type), shape, ev.CreatedAt.UTC(), ev.UpdatedAt.UTC())
	if err != nil && isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// GetEvent retrieves a single event by id.
func (r *EventRepo) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// ListPublicEvents returns public events ordered by date.
func (r *EventRepo) ListPublicEvents(ctx context.Context) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE event_type = 'public' ORDER BY event_date, id`
	return r.list(ctx, q)
}

// ListEventsByOrganizer returns the events of one organiser, newest first.
func (r *EventRepo) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = ? ORDER BY created_at DESC, id`
	return r.list(ctx, q, organizerID)
}

func (r *EventRepo) list(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
