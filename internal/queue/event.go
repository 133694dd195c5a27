// Package queue carries seat activity over RabbitMQ: the publisher used by
// the lock manager and the consumer that appends the activity log.
package queue

import "time"

// ActivityQueue is the durable queue seat activity is published to.
const ActivityQueue = "seat.activity"

// ActivityKind names a seat transition.
type ActivityKind string

const (
    SeatLocked   ActivityKind = "seat.locked"
    SeatReleased ActivityKind = "seat.released"
    SeatReserved ActivityKind = "seat.reserved"
    SeatExpired  ActivityKind = "seat.expired"
)

// SeatActivity is published after a seat changes state.  It carries enough
// information for downstream consumers (activity feeds, audit logs) to
// render the change without querying the primary database.
type SeatActivity struct {
    Kind          ActivityKind `json:"kind"`
    SeatID        string       `json:"seat_id"`
    EventID       string       `json:"event_id"`
    UserID        string       `json:"user_id,omitempty"`
    Row           string       `json:"row,omitempty"`
    Number        uint32       `json:"number,omitempty"`
    ReservationID string       `json:"reservation_id,omitempty"`
    ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
    At            time.Time    `json:"at"`
}
