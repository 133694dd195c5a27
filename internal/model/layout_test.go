package model

import (
	"testing"
	"time"
)

func TestRowLabel(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		-1:  "",
		0:   "A",
		1:   "B",
		25:  "Z",
		26:  "AA",
		27:  "AB",
		51:  "AZ",
		52:  "BA",
		701: "ZZ",
		702: "AAA",
	}
	for in, want := range cases {
		if got := RowLabel(in); got != want {
			t.Fatalf("RowLabel(%d) = %q, want %q", in, got, want)
		}
		if in < 0 {
			continue
		}
		idx, ok := RowIndex(want)
		if !ok || idx != in {
			t.Fatalf("RowIndex(%q) = %d,%v, want %d", want, idx, ok, in)
		}
	}
	if _, ok := RowIndex("A1"); ok {
		t.Fatalf("expected A1 to be rejected")
	}
}

func TestSeatsForRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		shape StageShape
		rows  int
		base  int
		want  []int
	}{
		{name: "rectangle", shape: ShapeRectangle, rows: 3, base: 10, want: []int{10, 10, 10}},
		{name: "no shape", shape: "", rows: 2, base: 7, want: []int{7, 7}},
		{name: "thrust", shape: ShapeThrust, rows: 3, base: 10, want: []int{4, 7, 10}},
		{name: "semicircle", shape: ShapeSemicircle, rows: 3, base: 10, want: []int{5, 8, 10}},
		{name: "diamond", shape: ShapeDiamond, rows: 3, base: 10, want: []int{3, 10, 3}},
		{name: "amphitheater", shape: ShapeAmphitheater, rows: 3, base: 10, want: []int{10, 8, 5}},
		{name: "minimum two seats", shape: ShapeThrust, rows: 2, base: 2, want: []int{2, 2}},
		{name: "single row", shape: ShapeSemicircle, rows: 1, base: 6, want: []int{3}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for i, want := range tt.want {
				if got := SeatsForRow(i, tt.rows, tt.base, tt.shape); got != want {
					t.Fatalf("row %d: expected %d seats, got %d", i, want, got)
				}
			}
		})
	}
}

func TestParseStageShape(t *testing.T) {
	t.Parallel()

	if s, ok := ParseStageShape(" Thrust "); !ok || s != ShapeThrust {
		t.Fatalf("expected thrust, got %q %v", s, ok)
	}
	if _, ok := ParseStageShape("hexagon"); ok {
		t.Fatalf("expected hexagon to be rejected")
	}
}

func TestSeatLockTransitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Seat{ID: "s1", Status: SeatAvailable}

	s.Lock("u1", now.Add(2*time.Minute), now)
	if !s.HeldBy("u1", now) {
		t.Fatalf("expected u1 to hold the seat")
	}
	if s.HeldBy("u2", now) {
		t.Fatalf("u2 must not hold the seat")
	}
	if s.LockExpired(now.Add(time.Minute)) {
		t.Fatalf("lock should still be live")
	}
	if !s.LockExpired(now.Add(2 * time.Minute)) {
		t.Fatalf("lock should be expired at its deadline")
	}

	s.Reserve(now)
	if s.Status != SeatReserved || s.LockedBy != nil || s.LockExpiresAt != nil {
		t.Fatalf("reserve must clear lock metadata, got %+v", s)
	}
}

func TestSeatLess(t *testing.T) {
	t.Parallel()

	b2 := &Seat{Row: "B", Number: 2}
	b10 := &Seat{Row: "B", Number: 10}
	aa1 := &Seat{Row: "AA", Number: 1}
	if !SeatLess(b2, b10) {
		t.Fatalf("B2 should sort before B10")
	}
	if !SeatLess(b10, aa1) {
		t.Fatalf("B10 should sort before AA1")
	}
}
