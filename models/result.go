package models

import "time"

// EventResult is one announced position for an event. It snapshots the
// winning registration's team composition at announcement time, so
// later team edits cannot rewrite history.
type EventResult struct {
	ID             int          `json:"id" db:"id"`
	EventID        int          `json:"event_id" db:"event_id"`
	Position       int          `json:"position" db:"position"` // 1..3
	RegistrationID int          `json:"registration_id" db:"registration_id"`
	ProfileID      int          `json:"profile_id" db:"profile_id"`
	TeamMembers    []TeamMember `json:"team_members" db:"team_members"`
	AnnouncedAt    time.Time    `json:"announced_at" db:"announced_at"`

	Profile *Profile `json:"profile,omitempty" db:"-"`
}
