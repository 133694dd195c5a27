package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors.Is for sql.ErrNoRows
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// seatInsertChunk bounds the rows of one bulk INSERT so a large seat map
// stays well below the placeholder limit of the MySQL protocol.
const seatInsertChunk = 500

const seatColumns = `id, event_id, row_label, seat_number, price, status, locked_by, lock_expires_at, stage_shape, created_at, updated_at`

// seatOrder sorts A..Z before AA..ZZ, then by seat number.
const seatOrder = `ORDER BY CHAR_LENGTH(row_label), row_label, seat_number`

// SeatRepo provides methods to work with seats in the database.  Every
// state transition is a single conditional UPDATE keyed by the seat id and
// the expected current state, so concurrent writers race on the row and
// exactly one of them observes RowsAffected == 1.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// DB exposes the underlying handle (used by the health check).
func (r *SeatRepo) DB() *sql.DB { return r.db }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeat(sc rowScanner) (model.Seat, error) {
	var (
		s        model.Seat
		status   string
		lockedBy sql.NullString
		expires  sql.NullTime
		shape    sql.NullString
	)
	err := sc.Scan(&s.ID, &s.EventID, &s.Row, &s.Number, &s.Price, &status,
		&lockedBy, &expires, &shape, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.Status = model.SeatStatus(status)
	if lockedBy.Valid {
		v := lockedBy.String
		s.LockedBy = &v
	}
	if expires.Valid {
		v := expires.Time.UTC()
		s.LockExpiresAt = &v
	}
	if shape.Valid {
		v := shape.String
		s.StageShape = &v
	}
	return s, nil
}

// ListSeats retrieves all seats of an event in row then number order.
func (r *SeatRepo) ListSeats(ctx context.Context, eventID string) ([]model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats WHERE event_id = ? ` + seatOrder
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Seat, 0)
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetSeat retrieves a seat by its id.
func (r *SeatRepo) GetSeat(ctx context.Context, id string) (*model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
	s, err := scanSeat(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// AcquireSeat locks an available seat for userID until expiresAt.  It
// reports false when the seat is missing or not available.
func (r *SeatRepo) AcquireSeat(ctx context.Context, seatID, userID string, expiresAt, now time.Time) (bool, error) {
	const q = `UPDATE seats
	           SET status = 'locked', locked_by = ?, lock_expires_at = ?, updated_at = ?
	           WHERE id = ? AND status = 'available'`
	return execOne(ctx, r.db, q, userID, expiresAt.UTC(), now.UTC(), seatID)
}

// ReleaseSeat returns a seat locked by userID to available.  The expiry is
// not checked: a holder may release an expired lock that no sweep has
// reverted yet.
func (r *SeatRepo) ReleaseSeat(ctx context.Context, seatID, userID string, now time.Time) (bool, error) {
	const q = `UPDATE seats
	           SET status = 'available', locked_by = NULL, lock_expires_at = NULL, updated_at = ?
	           WHERE id = ? AND status = 'locked' AND locked_by = ?`
	return execOne(ctx, r.db, q, now.UTC(), seatID, userID)
}

// SweepSeat reverts the lock of a single seat when it has expired.
func (r *SeatRepo) SweepSeat(ctx context.Context, seatID string, now time.Time) (bool, error) {
	const q = `UPDATE seats
	           SET status = 'available', locked_by = NULL, lock_expires_at = NULL, updated_at = ?
	           WHERE id = ? AND status = 'locked' AND lock_expires_at <= ?`
	return execOne(ctx, r.db, q, now.UTC(), seatID, now.UTC())
}

// SweepExpired reverts every expired lock of eventID, or of all events
// when eventID is empty, and returns the ids of the swept seats.  Each
// candidate is reverted with its own conditional UPDATE so a seat that
// was confirmed or released between the SELECT and the UPDATE is left
// alone and not reported.
func (r *SeatRepo) SweepExpired(ctx context.Context, eventID string, now time.Time) ([]string, error) {
	q := `SELECT id FROM seats WHERE status = 'locked' AND lock_expires_at <= ?`
	args := []any{now.UTC()}
	if eventID != "" {
		q += ` AND event_id = ?`
		args = append(args, eventID)
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	var candidates []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		candidates = append(candidates, id)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	swept := make([]string, 0, len(candidates))
	for _, id := range candidates {
		ok, err := r.SweepSeat(ctx, id, now)
		if err != nil {
			return swept, err
		}
		if ok {
			swept = append(swept, id)
		}
	}
	return swept, nil
}

// ClaimSeat reserves the seat for res.UserID and inserts the reservation
// row inside one transaction.  It reports false, with nothing written,
// when the caller does not hold a live lock.  A second reservation for
// the same seat rolls the transaction back and yields
// ErrDuplicateReservation.
func (r *SeatRepo) ClaimSeat(ctx context.Context, res model.Reservation, now time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const claim = `UPDATE seats
	               SET status = 'reserved', locked_by = NULL, lock_expires_at = NULL, updated_at = ?
	               WHERE id = ? AND status = 'locked' AND locked_by = ? AND lock_expires_at > ?`
	ok, err := execOne(ctx, tx, claim, now.UTC(), res.SeatID, res.UserID, now.UTC())
	if err != nil || !ok {
		return false, err
	}

	const ins = `INSERT INTO reservations (id, user_id, event_id, seat_id, status, created_at)
	             VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, res.ID, res.UserID, res.EventID, res.SeatID, string(res.Status), res.CreatedAt.UTC()); err != nil {
		if isDuplicateKey(err) {
			return false, ErrDuplicateReservation
		}
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// ReplaceSeats deletes the event's seats, bulk-inserts the new map and
// stores the advertised seat count on the event, all in one transaction.
// When shape is not nil it is stored on the event as well.  Reservations
// referencing the deleted seats are left untouched.
func (r *SeatRepo) ReplaceSeats(ctx context.Context, eventID string, seats []model.Seat, shape *string, now time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const upd = `UPDATE events SET available_seats = ?, stage_shape = COALESCE(?, stage_shape), updated_at = ? WHERE id = ?`
	var shapeArg any
	if shape != nil {
		shapeArg = *shape
	}
	res, err := tx.ExecContext(ctx, upd, len(seats), shapeArg, now.UTC(), eventID)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for a matched row whose values did not change,
		// so tell "missing" apart from "unchanged" with a lookup.
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrEventNotFound
			}
			return 0, err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE event_id = ?`, eventID); err != nil {
		return 0, err
	}
	for start := 0; start < len(seats); start += seatInsertChunk {
		end := min(start+seatInsertChunk, len(seats))
		if err := insertSeatsTx(ctx, tx, seats[start:end]); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(seats), nil
}

// insertSeatsTx inserts multiple seats in a single statement.
func insertSeatsTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO seats (id, event_id, row_label, seat_number, price, status, stage_shape, created_at, updated_at) VALUES `)
	args := make([]any, 0, len(seats)*9)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		var shape any
		if s.StageShape != nil {
			shape = *s.StageShape
		}
		args = append(args, s.ID, s.EventID, s.Row, s.Number, s.Price, string(s.Status), shape, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}

// SetStageShape updates the layout tag of the event and of all its seats.
func (r *SeatRepo) SetStageShape(ctx context.Context, eventID, shape string, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE events SET stage_shape = ?, updated_at = ? WHERE id = ?`, shape, now.UTC(), eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE seats SET stage_shape = ?, updated_at = ? WHERE event_id = ?`, shape, now.UTC(), eventID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// execOne runs a conditional write and reports whether it touched a row.
func execOne(ctx context.Context, db execer, q string, args ...any) (bool, error) {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// isDuplicateKey reports whether err is a MySQL duplicate entry (1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
