package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
)

func TestProvisioner_Provision(t *testing.T) {
	t.Parallel()

	org := Caller{UserID: orgID, Role: RoleOrg}

	tests := []struct {
		name    string
		caller  Caller
		eventID string
		in      ProvisionInput
		want    int
		wantErr error
	}{
		{name: "rectangle", caller: org, eventID: eventID, in: ProvisionInput{Rows: 3, SeatsPerRow: 4, Price: 25}, want: 12},
		{name: "thrust", caller: org, eventID: eventID, in: ProvisionInput{Rows: 3, SeatsPerRow: 10, Price: 5, Shape: "thrust"}, want: 21},
		{name: "diamond", caller: org, eventID: eventID, in: ProvisionInput{Rows: 3, SeatsPerRow: 10, Shape: "Diamond"}, want: 16},
		{name: "free seats", caller: org, eventID: eventID, in: ProvisionInput{Rows: 1, SeatsPerRow: 1, Price: 0}, want: 1},
		{name: "zero rows", caller: org, eventID: eventID, in: ProvisionInput{Rows: 0, SeatsPerRow: 4}, wantErr: repository.ErrInvalidInput},
		{name: "zero seats", caller: org, eventID: eventID, in: ProvisionInput{Rows: 2, SeatsPerRow: 0}, wantErr: repository.ErrInvalidInput},
		{name: "negative price", caller: org, eventID: eventID, in: ProvisionInput{Rows: 2, SeatsPerRow: 2, Price: -1}, wantErr: repository.ErrInvalidInput},
		{name: "nan price", caller: org, eventID: eventID, in: ProvisionInput{Rows: 2, SeatsPerRow: 2, Price: math.NaN()}, wantErr: repository.ErrInvalidInput},
		{name: "max price", caller: org, eventID: eventID, in: ProvisionInput{Rows: 1, SeatsPerRow: 1, Price: MaxSeatPrice}, want: 1},
		{name: "price above column range", caller: org, eventID: eventID, in: ProvisionInput{Rows: 1, SeatsPerRow: 1, Price: 1e8}, wantErr: repository.ErrInvalidInput},
		{name: "unknown shape", caller: org, eventID: eventID, in: ProvisionInput{Rows: 2, SeatsPerRow: 2, Shape: "hexagon"}, wantErr: repository.ErrInvalidInput},
		{name: "too many seats", caller: org, eventID: eventID, in: ProvisionInput{Rows: 101, SeatsPerRow: 100}, wantErr: repository.ErrInvalidInput},
		{name: "malformed event id", caller: org, eventID: "abc", in: ProvisionInput{Rows: 1, SeatsPerRow: 1}, wantErr: repository.ErrInvalidInput},
		{name: "unknown event", caller: org, eventID: "7b0c9a52-0f0e-4b8e-9f55-000000000000", in: ProvisionInput{Rows: 1, SeatsPerRow: 1}, wantErr: repository.ErrEventNotFound},
		{name: "client role", caller: Caller{UserID: orgID, Role: RoleClient}, eventID: eventID, in: ProvisionInput{Rows: 1, SeatsPerRow: 1}, wantErr: repository.ErrForbidden},
		{name: "other organiser", caller: Caller{UserID: "org-2", Role: RoleOrg}, eventID: eventID, in: ProvisionInput{Rows: 1, SeatsPerRow: 1}, wantErr: repository.ErrForbidden},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			n, err := f.prov.Provision(context.Background(), tt.caller, tt.eventID, tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				// the original two seats must survive a rejected request
				if seats, _ := f.store.ListSeats(context.Background(), eventID); len(seats) != 2 {
					t.Fatalf("rejected provisioning changed the seat map: %d seats", len(seats))
				}
				return
			}
			if err != nil {
				t.Fatalf("provision: %v", err)
			}
			if n != tt.want {
				t.Fatalf("expected %d seats, got %d", tt.want, n)
			}
			seats, _ := f.store.ListSeats(context.Background(), eventID)
			if len(seats) != tt.want {
				t.Fatalf("store holds %d seats, want %d", len(seats), tt.want)
			}
			ev, _ := f.store.GetEvent(context.Background(), eventID)
			if ev.AvailableSeats != tt.want {
				t.Fatalf("event advertises %d seats, want %d", ev.AvailableSeats, tt.want)
			}
			for _, s := range seats {
				if s.Status != model.SeatAvailable || s.Price != tt.in.Price || s.Number < 1 {
					t.Fatalf("unexpected seat %+v", s)
				}
			}
		})
	}
}

func TestProvisioner_ReprovisionOrphansReservations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	a1 := f.seatID(t, "A", 1)
	if _, err := f.lm.Acquire(ctx, a1, userA); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, _, err := f.lm.Confirm(ctx, a1, userA); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	n, err := f.prov.Provision(ctx, Caller{UserID: orgID, Role: RoleOrg}, eventID, ProvisionInput{Rows: 2, SeatsPerRow: 3, Price: 15})
	if err != nil || n != 6 {
		t.Fatalf("reprovision: %d %v", n, err)
	}
	seats, _ := f.store.ListSeats(ctx, eventID)
	for _, s := range seats {
		if s.ID == a1 {
			t.Fatalf("old seat survived reprovisioning")
		}
		if s.Status != model.SeatAvailable {
			t.Fatalf("new seats must be available, got %+v", s)
		}
	}
	if seats[0].Row != "A" || seats[5].Row != "B" || seats[5].Number != 3 {
		t.Fatalf("unexpected order: first %s%d last %s%d", seats[0].Row, seats[0].Number, seats[5].Row, seats[5].Number)
	}
	res, _ := f.lm.ledger.ListByUser(ctx, userA)
	if len(res) != 1 || res[0].SeatID != a1 {
		t.Fatalf("reservation should be orphaned, not deleted: %+v", res)
	}
}

func TestProvisioner_RowLabelsPastZ(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	n, err := f.prov.Provision(context.Background(), Caller{UserID: orgID, Role: RoleOrg}, eventID, ProvisionInput{Rows: 28, SeatsPerRow: 1})
	if err != nil || n != 28 {
		t.Fatalf("provision: %d %v", n, err)
	}
	seats, _ := f.store.ListSeats(context.Background(), eventID)
	if seats[25].Row != "Z" || seats[26].Row != "AA" || seats[27].Row != "AB" {
		t.Fatalf("unexpected labels: %s %s %s", seats[25].Row, seats[26].Row, seats[27].Row)
	}
}

func TestProvisioner_UpdateStageShape(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	org := Caller{UserID: orgID, Role: RoleOrg}

	shape, err := f.prov.UpdateStageShape(ctx, org, eventID, "semicircle")
	if err != nil || shape != model.ShapeSemicircle {
		t.Fatalf("update: %q %v", shape, err)
	}
	seats, _ := f.store.ListSeats(ctx, eventID)
	if len(seats) != 2 {
		t.Fatalf("shape update must not touch the seat set")
	}
	for _, s := range seats {
		if s.StageShape == nil || *s.StageShape != "semicircle" {
			t.Fatalf("seat shape not updated: %+v", s)
		}
	}
	if _, err := f.prov.UpdateStageShape(ctx, org, eventID, ""); !errors.Is(err, repository.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.prov.UpdateStageShape(ctx, Caller{UserID: "org-2", Role: RoleOrg}, eventID, "thrust"); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestBuildSeatsMatchesLayoutSize(t *testing.T) {
	t.Parallel()

	for _, shape := range []model.StageShape{"", model.ShapeThrust, model.ShapeSemicircle, model.ShapeDiamond, model.ShapeAmphitheater} {
		seats := BuildSeats(eventID, 7, 9, 1, shape, start)
		if len(seats) != LayoutSize(7, 9, shape) {
			t.Fatalf("%q: built %d seats, layout says %d", shape, len(seats), LayoutSize(7, 9, shape))
		}
		seen := map[string]bool{}
		for _, s := range seats {
			key := s.Row + "/" + string(rune('0'+s.Number))
			if seen[key] || seen[s.ID] {
				t.Fatalf("%q: duplicate seat %s", shape, key)
			}
			seen[key], seen[s.ID] = true, true
		}
	}
}
