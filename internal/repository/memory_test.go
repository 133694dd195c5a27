package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

var t0 = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func seedEvent(t *testing.T, m *MemoryStore, id string, seats ...model.Seat) {
	t.Helper()
	ctx := context.Background()
	if err := m.CreateEvent(ctx, &model.Event{ID: id, OrganizerID: "org-1", Title: "Show", Type: model.EventPublic, CreatedAt: t0}); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := m.ReplaceSeats(ctx, id, seats, nil, t0); err != nil {
		t.Fatalf("replace seats: %v", err)
	}
}

func seat(id, eventID, row string, n uint32) model.Seat {
	return model.Seat{ID: id, EventID: eventID, Row: row, Number: n, Price: 10, Status: model.SeatAvailable, CreatedAt: t0, UpdatedAt: t0}
}

func TestMemoryStore_AcquireIsExclusive(t *testing.T) {
	t.Parallel()

	m := NewMemoryStore()
	seedEvent(t, m, "e1", seat("s1", "e1", "A", 1))

	const workers = 32
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := m.AcquireSeat(context.Background(), "s1", string(rune('a'+i)), t0.Add(time.Minute), t0)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestMemoryStore_ReleaseRequiresHolder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	seedEvent(t, m, "e1", seat("s1", "e1", "A", 1))

	if ok, _ := m.AcquireSeat(ctx, "s1", "u1", t0.Add(time.Minute), t0); !ok {
		t.Fatalf("expected acquire to succeed")
	}
	if ok, _ := m.ReleaseSeat(ctx, "s1", "u2", t0); ok {
		t.Fatalf("u2 must not release u1's lock")
	}
	// an expired but unswept lock can still be released by its holder
	if ok, _ := m.ReleaseSeat(ctx, "s1", "u1", t0.Add(time.Hour)); !ok {
		t.Fatalf("holder should release")
	}
	s, _ := m.GetSeat(ctx, "s1")
	if s.Status != model.SeatAvailable || s.LockedBy != nil || s.LockExpiresAt != nil {
		t.Fatalf("expected clean available seat, got %+v", s)
	}
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	seedEvent(t, m, "e1", seat("s1", "e1", "A", 1), seat("s2", "e1", "A", 2))
	seedEvent(t, m, "e2", seat("s3", "e2", "A", 1))

	m.AcquireSeat(ctx, "s1", "u1", t0.Add(time.Minute), t0)
	m.AcquireSeat(ctx, "s2", "u1", t0.Add(time.Hour), t0)
	m.AcquireSeat(ctx, "s3", "u1", t0.Add(time.Minute), t0)

	swept, err := m.SweepExpired(ctx, "e1", t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(swept) != 1 || swept[0] != "s1" {
		t.Fatalf("expected [s1], got %v", swept)
	}
	if s, _ := m.GetSeat(ctx, "s3"); s.Status != model.SeatLocked {
		t.Fatalf("other events must not be swept")
	}

	swept, _ = m.SweepExpired(ctx, "", t0.Add(2*time.Hour))
	if len(swept) != 2 {
		t.Fatalf("expected s2 and s3 swept, got %v", swept)
	}
}

func TestMemoryStore_ClaimSeat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	seedEvent(t, m, "e1", seat("s1", "e1", "A", 1))
	res := model.Reservation{ID: "r1", UserID: "u1", EventID: "e1", SeatID: "s1", Status: model.ReservationConfirmed, CreatedAt: t0}

	if ok, _ := m.ClaimSeat(ctx, res, t0); ok {
		t.Fatalf("claim without a lock must fail")
	}
	m.AcquireSeat(ctx, "s1", "u1", t0.Add(time.Minute), t0)
	if ok, _ := m.ClaimSeat(ctx, res, t0.Add(time.Minute)); ok {
		t.Fatalf("claim at the deadline must fail")
	}
	ok, err := m.ClaimSeat(ctx, res, t0.Add(30*time.Second))
	if err != nil || !ok {
		t.Fatalf("expected claim to succeed, got %v %v", ok, err)
	}
	s, _ := m.GetSeat(ctx, "s1")
	if s.Status != model.SeatReserved || s.LockedBy != nil {
		t.Fatalf("expected reserved seat without lock, got %+v", s)
	}
	got, _ := m.GetReservationBySeat(ctx, "s1")
	if got == nil || got.ID != "r1" {
		t.Fatalf("expected reservation r1, got %+v", got)
	}
}

func TestMemoryStore_ClaimSeatDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	seedEvent(t, m, "e1", seat("s1", "e1", "A", 1))
	m.reservations["s1"] = model.Reservation{ID: "old", SeatID: "s1", UserID: "u0"}
	m.AcquireSeat(ctx, "s1", "u1", t0.Add(time.Minute), t0)

	_, err := m.ClaimSeat(ctx, model.Reservation{ID: "r1", UserID: "u1", EventID: "e1", SeatID: "s1"}, t0)
	if !errors.Is(err, ErrDuplicateReservation) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected duplicate reservation conflict, got %v", err)
	}
	if s, _ := m.GetSeat(ctx, "s1"); s.Status != model.SeatLocked {
		t.Fatalf("failed claim must leave the seat locked, got %s", s.Status)
	}
}

func TestMemoryStore_ReplaceSeatsKeepsReservations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	seedEvent(t, m, "e1", seat("s1", "e1", "A", 1))
	m.AcquireSeat(ctx, "s1", "u1", t0.Add(time.Minute), t0)
	m.ClaimSeat(ctx, model.Reservation{ID: "r1", UserID: "u1", EventID: "e1", SeatID: "s1", CreatedAt: t0}, t0)

	shape := "thrust"
	n, err := m.ReplaceSeats(ctx, "e1", []model.Seat{seat("s9", "e1", "B", 1), seat("s8", "e1", "A", 2)}, &shape, t0)
	if err != nil || n != 2 {
		t.Fatalf("replace: %d %v", n, err)
	}
	if _, err := m.GetSeat(ctx, "s1"); !errors.Is(err, ErrSeatNotFound) {
		t.Fatalf("old seat should be gone, got %v", err)
	}
	list, _ := m.ListSeats(ctx, "e1")
	if len(list) != 2 || list[0].ID != "s8" || list[1].ID != "s9" {
		t.Fatalf("expected [s8 s9] in row order, got %+v", list)
	}
	ev, _ := m.GetEvent(ctx, "e1")
	if ev.AvailableSeats != 2 || ev.StageShape == nil || *ev.StageShape != "thrust" {
		t.Fatalf("unexpected event after replace: %+v", ev)
	}
	res, _ := m.ListReservationsByUser(ctx, "u1")
	if len(res) != 1 {
		t.Fatalf("reservation must survive re-provisioning, got %v", res)
	}
	if _, err := m.ReplaceSeats(ctx, "missing", nil, nil, t0); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemoryStore()
	seedEvent(t, m, "e1", seat("s1", "e1", "A", 1))
	s, _ := m.GetSeat(ctx, "s1")
	s.Status = model.SeatReserved
	if again, _ := m.GetSeat(ctx, "s1"); again.Status != model.SeatAvailable {
		t.Fatalf("mutating a returned seat must not leak into the store")
	}
}
