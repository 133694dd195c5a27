package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// MemoryStore keeps events, seats and reservations in process memory.
// Every conditional write runs under a single mutex, which gives the same
// compare-and-set guarantees as the row-level conditional UPDATEs used by
// the MySQL repositories.  It backs STORE_BACKEND=memory and the tests.
type MemoryStore struct {
	mu           sync.RWMutex
	events       map[string]model.Event
	seats        map[string]*model.Seat
	reservations map[string]model.Reservation // keyed by seat id
	order        []string                     // seat ids of reservations in insertion order
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:       make(map[string]model.Event),
		seats:        make(map[string]*model.Seat),
		reservations: make(map[string]model.Reservation),
	}
}

// ---- Events ----

func (m *MemoryStore) CreateEvent(_ context.Context, ev *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[ev.ID]; ok {
		return ErrConflict
	}
	m.events[ev.ID] = cloneEvent(*ev)
	return nil
}

func (m *MemoryStore) GetEvent(_ context.Context, id string) (*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	out := cloneEvent(ev)
	return &out, nil
}

func (m *MemoryStore) ListPublicEvents(_ context.Context) ([]model.Event, error) {
	return m.filterEvents(func(ev model.Event) bool { return ev.Type == model.EventPublic }, func(a, b model.Event) bool {
		return a.Date.Before(b.Date)
	}), nil
}

func (m *MemoryStore) ListEventsByOrganizer(_ context.Context, organizerID string) ([]model.Event, error) {
	return m.filterEvents(func(ev model.Event) bool { return ev.OrganizerID == organizerID }, func(a, b model.Event) bool {
		return a.CreatedAt.After(b.CreatedAt)
	}), nil
}

func (m *MemoryStore) filterEvents(keep func(model.Event) bool, less func(a, b model.Event) bool) []model.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Event, 0)
	for _, ev := range m.events {
		if keep(ev) {
			out = append(out, cloneEvent(ev))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// ---- Seats ----

func (m *MemoryStore) ListSeats(_ context.Context, eventID string) ([]model.Seat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Seat, 0)
	for _, s := range m.seats {
		if s.EventID == eventID {
			out = append(out, cloneSeat(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return model.SeatLess(&out[i], &out[j]) })
	return out, nil
}

func (m *MemoryStore) GetSeat(_ context.Context, id string) (*model.Seat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.seats[id]
	if !ok {
		return nil, ErrSeatNotFound
	}
	out := cloneSeat(s)
	return &out, nil
}

func (m *MemoryStore) AcquireSeat(_ context.Context, seatID, userID string, expiresAt, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[seatID]
	if !ok || s.Status != model.SeatAvailable {
		return false, nil
	}
	s.Lock(userID, expiresAt, now)
	return true, nil
}

func (m *MemoryStore) ReleaseSeat(_ context.Context, seatID, userID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[seatID]
	if !ok || s.Status != model.SeatLocked || s.LockedBy == nil || *s.LockedBy != userID {
		return false, nil
	}
	s.Unlock(now)
	return true, nil
}

func (m *MemoryStore) SweepSeat(_ context.Context, seatID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[seatID]
	if !ok || !s.LockExpired(now) {
		return false, nil
	}
	s.Unlock(now)
	return true, nil
}

// SweepExpired reverts every expired lock of eventID, or of all events
// when eventID is empty, and returns the ids of the swept seats.
func (m *MemoryStore) SweepExpired(_ context.Context, eventID string, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	swept := make([]string, 0)
	for id, s := range m.seats {
		if eventID != "" && s.EventID != eventID {
			continue
		}
		if s.LockExpired(now) {
			s.Unlock(now)
			swept = append(swept, id)
		}
	}
	sort.Strings(swept)
	return swept, nil
}

// ClaimSeat reserves the seat for res.UserID and records res, as one
// unit.  It reports false without changes when the caller does not hold
// a live lock on the seat.
func (m *MemoryStore) ClaimSeat(_ context.Context, res model.Reservation, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[res.SeatID]
	if !ok || !s.HeldBy(res.UserID, now) {
		return false, nil
	}
	if _, dup := m.reservations[res.SeatID]; dup {
		return false, ErrDuplicateReservation
	}
	s.Reserve(now)
	m.reservations[res.SeatID] = res
	m.order = append(m.order, res.SeatID)
	return true, nil
}

// ReplaceSeats drops every seat of the event, inserts seats and updates
// the event's advertised seat count (and stage shape when shape is not
// nil).  Reservations of the dropped seats are kept.
func (m *MemoryStore) ReplaceSeats(_ context.Context, eventID string, seats []model.Seat, shape *string, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok {
		return 0, ErrEventNotFound
	}
	for id, s := range m.seats {
		if s.EventID == eventID {
			delete(m.seats, id)
		}
	}
	for i := range seats {
		s := cloneSeat(&seats[i])
		m.seats[s.ID] = &s
	}
	ev.AvailableSeats = len(seats)
	if shape != nil {
		v := *shape
		ev.StageShape = &v
	}
	ev.UpdatedAt = now
	m.events[eventID] = ev
	return len(seats), nil
}

// SetStageShape updates the layout tag of the event and all its seats.
func (m *MemoryStore) SetStageShape(_ context.Context, eventID, shape string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[eventID]
	if !ok {
		return ErrEventNotFound
	}
	ev.StageShape = &shape
	ev.UpdatedAt = now
	m.events[eventID] = ev
	for _, s := range m.seats {
		if s.EventID == eventID {
			v := shape
			s.StageShape = &v
			s.UpdatedAt = now
		}
	}
	return nil
}

// ---- Reservations ----

func (m *MemoryStore) ListReservationsByUser(_ context.Context, userID string) ([]model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Reservation, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		if r := m.reservations[m.order[i]]; r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetReservationBySeat(_ context.Context, seatID string) (*model.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reservations[seatID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func cloneSeat(s *model.Seat) model.Seat {
	out := *s
	if s.LockedBy != nil {
		v := *s.LockedBy
		out.LockedBy = &v
	}
	if s.LockExpiresAt != nil {
		v := *s.LockExpiresAt
		out.LockExpiresAt = &v
	}
	if s.StageShape != nil {
		v := *s.StageShape
		out.StageShape = &v
	}
	return out
}

func cloneEvent(ev model.Event) model.Event {
	if ev.StageShape != nil {
		v := *ev.StageShape
		ev.StageShape = &v
	}
	return ev
}
