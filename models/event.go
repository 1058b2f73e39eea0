package models

import "time"

// EventStatus mirrors the event_status ENUM in the database.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusLive      EventStatus = "live"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCanceled  EventStatus = "canceled"
)

// PaymentMode mirrors the payment_mode ENUM in the database.
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeOnline PaymentMode = "online"
	PaymentModeHybrid PaymentMode = "hybrid"
)

// GenderPolicy restricts who may register for an event.
type GenderPolicy string

const (
	GenderAny    GenderPolicy = "any"
	GenderMale   GenderPolicy = "male"
	GenderFemale GenderPolicy = "female"
)

// Event is a single fest event. Team events have MaxTeamSize > 1;
// individual events have MinTeamSize = MaxTeamSize = 1.
type Event struct {
	ID            int          `json:"id" db:"id"`
	Name          string       `json:"name" db:"name"`
	Description   *string      `json:"description,omitempty" db:"description"`
	Category      string       `json:"category" db:"category"`
	Day           int          `json:"day" db:"day"`
	EventDate     time.Time    `json:"event_date" db:"event_date"`
	EventTime     string       `json:"event_time" db:"event_time"`
	Venue         string       `json:"venue" db:"venue"`
	Fee           int          `json:"fee" db:"fee"`
	MinTeamSize   int          `json:"min_team_size" db:"min_team_size"`
	MaxTeamSize   int          `json:"max_team_size" db:"max_team_size"`
	PaymentMode   PaymentMode  `json:"payment_mode" db:"payment_mode"`
	AllowedGender GenderPolicy `json:"allowed_gender" db:"allowed_gender"`
	Status        EventStatus  `json:"status" db:"status"`
	IsLive        bool         `json:"is_live" db:"is_live"`
	CreatedBy     int          `json:"created_by" db:"created_by"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`

	// Winner references, written once by result announcement.
	FirstPlaceRegID    *int       `json:"first_place_reg_id,omitempty" db:"first_place_reg_id"`
	SecondPlaceRegID   *int       `json:"second_place_reg_id,omitempty" db:"second_place_reg_id"`
	ThirdPlaceRegID    *int       `json:"third_place_reg_id,omitempty" db:"third_place_reg_id"`
	ResultsAnnounced   bool       `json:"results_announced" db:"results_announced"`
	ResultsAnnouncedAt *time.Time `json:"results_announced_at,omitempty" db:"results_announced_at"`

	CoverKey *string `json:"-" db:"cover_key"`
	CoverURL *string `json:"cover_url,omitempty" db:"-"`
	QRKey    *string `json:"-" db:"qr_key"`
	QRURL    *string `json:"qr_url,omitempty" db:"-"`

	Registrations []Registration `json:"registrations,omitempty" db:"-"`
}

// IsTeamEvent reports whether the event accepts team registrations.
func (e *Event) IsTeamEvent() bool {
	return e.MaxTeamSize > 1
}
