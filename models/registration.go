package models

import "time"

// RegistrationStatus mirrors the registration_status ENUM in the database.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationRejected  RegistrationStatus = "rejected"
)

// TeamMember is the denormalized member summary embedded in the leader
// registration's team_members column.
type TeamMember struct {
	ProfileID  int    `json:"profile_id"`
	FullName   string `json:"full_name"`
	RollNumber string `json:"roll_number"`
	Department string `json:"department"`
	Gender     string `json:"gender"`
}

// Registration links a profile to an event. For team events the leader
// row carries the full TeamMembers slice; each member additionally gets
// its own row with an empty slice, acting as a join/index entry.
// (event_id, profile_id) is unique at the store level.
type Registration struct {
	ID            int                `json:"id" db:"id"`
	EventID       int                `json:"event_id" db:"event_id"`
	ProfileID     int                `json:"profile_id" db:"profile_id"`
	Status        RegistrationStatus `json:"status" db:"status"`
	PaymentMode   PaymentMode        `json:"payment_mode" db:"payment_mode"`
	TeamMembers   []TeamMember       `json:"team_members" db:"team_members"`
	TeamNumber    *int               `json:"team_number,omitempty" db:"team_number"`
	TransactionID *string            `json:"transaction_id,omitempty" db:"transaction_id"`
	ScreenshotKey *string            `json:"-" db:"screenshot_key"`
	ScreenshotURL *string            `json:"screenshot_url,omitempty" db:"-"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`

	Profile *Profile `json:"profile,omitempty" db:"-"`
	Event   *Event   `json:"event,omitempty" db:"-"`
}

// IsTeamLeader reports whether this row is the leader row of a team
// registration. Member rows and individual registrations carry an
// empty TeamMembers slice.
func (r *Registration) IsTeamLeader() bool {
	return len(r.TeamMembers) > 0
}

// TeamSize is the size used by export and display logic:
// the leader plus every embedded member.
func (r *Registration) TeamSize() int {
	return len(r.TeamMembers) + 1
}

// MemberProfileIDs returns the profile ids embedded in TeamMembers.
func (r *Registration) MemberProfileIDs() []int {
	ids := make([]int, 0, len(r.TeamMembers))
	for _, m := range r.TeamMembers {
		ids = append(ids, m.ProfileID)
	}
	return ids
}
