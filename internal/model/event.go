package model

import "time"

// EventType controls whether an event shows up in the public listing.
type EventType string

const (
    EventPublic  EventType = "public"
    EventPrivate EventType = "private"
)

// Event is the minimal view of an event needed by the seat flow: who
// organises it (the sole authorization check for provisioning) and the
// advertised seat count maintained by provisioning.
//
// Fields:
//  ID             – primary key identifier (UUID).
//  OrganizerID    – user ID of the organising account.
//  Title          – display title.
//  Date           – when the event takes place.
//  Location       – venue description.
//  AvailableSeats – seat count inserted by the last provisioning.
//  Type           – public or private.
//  StageShape     – optional layout tag.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Event struct {
    ID             string    `json:"id"`                    // events.id
    OrganizerID    string    `json:"organizer_id"`          // events.organizer_id
    Title          string    `json:"title"`                 // events.title
    Date           time.Time `json:"date"`                  // events.event_date
    Location       string    `json:"location"`              // events.location
    AvailableSeats int       `json:"available_seats"`       // events.available_seats
    Type           EventType `json:"type"`                  // events.event_type
    StageShape     *string   `json:"stage_shape,omitempty"` // events.stage_shape (nullable)
    CreatedAt      time.Time `json:"created_at"`            // events.created_at
    UpdatedAt      time.Time `json:"updated_at"`            // events.updated_at
}
