package repository

import "database/sql"

// MySQLStore bundles the MySQL repositories so a single value satisfies
// every store interface the services depend on.
type MySQLStore struct {
	*SeatRepo
	*EventRepo
	*ReservationRepo
}

// NewMySQLStore wires the repositories onto one database handle.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		SeatRepo:        NewSeatRepo(db),
		EventRepo:       NewEventRepo(db),
		ReservationRepo: NewReservationRepo(db),
	}
}
