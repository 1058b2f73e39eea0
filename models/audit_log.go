package models

import "time"

// AuditLog records a sensitive staff action (payment verification,
// result announcement, live toggles, offline profile creation).
type AuditLog struct {
	ID        int       `json:"id" db:"id"`
	ActorID   int       `json:"actor_id" db:"actor_id"`
	Action    string    `json:"action" db:"action"`
	Entity    string    `json:"entity" db:"entity"`
	EntityID  int       `json:"entity_id" db:"entity_id"`
	Details   *string   `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EventAssignment links a coordinator profile to an event it manages.
// (event_id, coordinator_id) is unique at the store level.
type EventAssignment struct {
	ID            int       `json:"id" db:"id"`
	EventID       int       `json:"event_id" db:"event_id"`
	CoordinatorID int       `json:"coordinator_id" db:"coordinator_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Event       *Event   `json:"event,omitempty" db:"-"`
	Coordinator *Profile `json:"coordinator,omitempty" db:"-"`
}
