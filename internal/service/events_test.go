package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/clock"
	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
)

func TestEventService_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewEventService(store, clock.NewFixed(start))
	org := Caller{UserID: orgID, Role: RoleOrg}
	date := start.Add(72 * time.Hour)

	ev, err := svc.Create(ctx, org, CreateEventInput{Title: "  Concert ", Date: date, Type: "private", StageShape: "thrust"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.ID == "" || ev.Title != "Concert" || ev.Type != model.EventPrivate || ev.OrganizerID != orgID || *ev.StageShape != "thrust" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	got, err := svc.Get(ctx, ev.ID)
	if err != nil || got.ID != ev.ID {
		t.Fatalf("get: %+v %v", got, err)
	}

	if _, err := svc.Create(ctx, Caller{UserID: "u", Role: RoleClient}, CreateEventInput{Title: "x", Date: date}); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	for _, in := range []CreateEventInput{
		{Date: date},
		{Title: "x"},
		{Title: "x", Date: date, Type: "secret"},
		{Title: "x", Date: date, StageShape: "cube"},
	} {
		if _, err := svc.Create(ctx, org, in); !errors.Is(err, repository.ErrInvalidInput) {
			t.Fatalf("%+v: expected invalid input, got %v", in, err)
		}
	}
}

func TestEventService_Listings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := repository.NewMemoryStore()
	clk := clock.NewManual(start)
	svc := NewEventService(store, clk)
	org := Caller{UserID: orgID, Role: RoleOrg}

	late, _ := svc.Create(ctx, org, CreateEventInput{Title: "late", Date: start.Add(48 * time.Hour)})
	clk.Advance(time.Second)
	early, _ := svc.Create(ctx, org, CreateEventInput{Title: "early", Date: start.Add(24 * time.Hour)})
	clk.Advance(time.Second)
	svc.Create(ctx, org, CreateEventInput{Title: "hidden", Date: start.Add(time.Hour), Type: "private"})
	svc.Create(ctx, Caller{UserID: "org-2", Role: RoleOrg}, CreateEventInput{Title: "other", Date: start.Add(96 * time.Hour)})

	public, err := svc.ListPublic(ctx)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(public) != 3 || public[0].ID != early.ID || public[1].ID != late.ID {
		t.Fatalf("unexpected public listing: %+v", public)
	}

	mine, err := svc.ListMine(ctx, org)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 3 || mine[0].Title != "hidden" {
		t.Fatalf("expected newest first, got %+v", mine)
	}
	if _, err := svc.ListMine(ctx, Caller{UserID: "u", Role: RoleClient}); !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
