package models

type DashboardStats struct {
	ProfilesTotal          int `json:"profiles_total"`
	OfflineProfiles        int `json:"offline_profiles"`
	EventsTotal            int `json:"events_total"`
	LiveEvents             int `json:"live_events"`
	RegistrationsTotal     int `json:"registrations_total"`
	PendingRegistrations   int `json:"pending_registrations"`
	ConfirmedRegistrations int `json:"confirmed_registrations"`
}
