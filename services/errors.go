package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	// Generic not-found
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed        = errors.New("validation failed")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrInvalidPhone            = errors.New("phone number must be 10 digits")
	ErrInvalidRollNumber       = errors.New("roll number format is invalid")
	ErrGenderNotPermitted      = errors.New("gender not permitted for this event")
	ErrEventNotTeamEvent       = errors.New("event does not accept team registrations")
	ErrEventNotIndividual      = errors.New("event does not accept individual registrations")
	ErrTeamSizeOutOfRange      = errors.New("team size outside event bounds")
	ErrTeamBelowMinimum        = errors.New("removing member would shrink team below event minimum")
	ErrMemberNotInTeam         = errors.New("profile is not a member of this team")
	ErrMemberAlreadyInTeam     = errors.New("profile already belongs to a team for this event")
	ErrDuplicateTeamMember     = errors.New("duplicate profile in member list")
	ErrNotTeamLeader           = errors.New("registration is not a team leader row")
	ErrPaymentEvidenceMissing  = errors.New("transaction id and screenshot are required to verify this payment")
	ErrRegistrationNotPending  = errors.New("registration is not pending")
	ErrRegistrationRejected    = errors.New("registration has been rejected and cannot change")
	ErrRegistrationNotOpen     = errors.New("event registration is not open")
	ErrEventDateMismatch       = errors.New("event is not scheduled for today")
	ErrResultsAlreadyAnnounced = errors.New("results already announced for this event")
	ErrWinnerNotConfirmed      = errors.New("winner registration is not confirmed")
	ErrDuplicateWinner         = errors.New("the same registration cannot take multiple positions")
	ErrFirstPlaceRequired      = errors.New("a first place winner is required")

	// Conflicts
	ErrProfileEmailConflict   = errors.New("email address is already in use")
	ErrProfileRollNumConflict = errors.New("roll number is already registered")
	ErrEventNameConflict      = errors.New("event name is already in use")
	ErrRegistrationConflict   = errors.New("profile is already registered for this event")
	ErrAssignmentConflict     = errors.New("coordinator is already assigned to this event")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
	ErrNotAssignedToEvent   = errors.New("coordinator is not assigned to this event")

	// Entity-specific not-found
	ErrProfileNotFound      = errors.New("profile not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrResultNotFound       = errors.New("event result not found")
	ErrAssignmentNotFound   = errors.New("event assignment not found")

	// Event field validation
	ErrEventNameRequired        = errors.New("event name is required")
	ErrEventInvalidTeamBounds   = errors.New("event team size bounds are invalid")
	ErrEventInvalidDay          = errors.New("event day must be positive")
	ErrEventInvalidPaymentMode  = errors.New("invalid payment mode")
	ErrEventInvalidGenderPolicy = errors.New("invalid gender policy")
)
