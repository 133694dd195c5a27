package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/event-seat-reservation/internal/model"
)

// ReservationRepo reads the reservation ledger.  Rows are only ever
// written by SeatRepo.ClaimSeat, in the same transaction that flips the
// seat to reserved, so this type exposes lookups only.  All timestamp
// fields are stored in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, user_id, event_id, seat_id, status, created_at`

func scanReservation(sc rowScanner) (model.Reservation, error) {
    var (
        res    model.Reservation
        status string
    )
    if err := sc.Scan(&res.ID, &res.UserID, &res.EventID, &res.SeatID, &status, &res.CreatedAt); err != nil {
        return res, err
    }
    res.Status = model.ReservationStatus(status)
    res.CreatedAt = res.CreatedAt.UTC()
    return res, nil
}

// ListReservationsByUser returns the reservations of a user, newest first.
func (r *ReservationRepo) ListReservationsByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? ORDER BY created_at DESC, id`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetReservationBySeat returns the reservation recorded for a seat, or
// nil when the seat has none.
func (r *ReservationRepo) GetReservationBySeat(ctx context.Context, seatID string) (*model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE seat_id = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, seatID))
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, nil
        }
        return nil, err
    }
    return &res, nil
}
