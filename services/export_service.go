package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
)

type ExportService interface {
	WriteConfirmedCSV(ctx context.Context, eventID int, w io.Writer) error
}

type exportService struct {
	registrationRepo repositories.RegistrationRepository
	eventRepo        repositories.EventRepository
	profileRepo      repositories.ProfileRepository
}

func NewExportService(
	registrationRepo repositories.RegistrationRepository,
	eventRepo repositories.EventRepository,
	profileRepo repositories.ProfileRepository,
) ExportService {
	return &exportService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		profileRepo:      profileRepo,
	}
}

var exportHeader = []string{"Team No", "Name", "Roll Number", "Department", "Gender", "Payment Mode", "Transaction ID", "Registered At"}

// WriteConfirmedCSV streams the confirmed registrations of an event.
// For team events each leader row (team number populated) is followed
// by one row per member with the team-number column left blank.
// Member index rows are skipped; their data comes from the leader's
// embedded array.
func (s *exportService) WriteConfirmedCSV(ctx context.Context, eventID int, w io.Writer) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event: %w", err)
	}

	confirmed := models.RegistrationConfirmed
	regs, err := s.registrationRepo.ListByEvent(ctx, eventID, repositories.ListRegistrationsFilter{
		Status:      &confirmed,
		WithProfile: true,
	})
	if err != nil {
		return fmt.Errorf("failed to list confirmed registrations: %w", err)
	}

	memberIDs := make(map[int]bool)
	if event.IsTeamEvent() {
		for _, reg := range regs {
			for _, m := range reg.TeamMembers {
				memberIDs[m.ProfileID] = true
			}
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, reg := range regs {
		// Skip member index rows; they are emitted under their leader.
		if memberIDs[reg.ProfileID] && !reg.IsTeamLeader() {
			continue
		}

		teamNo := ""
		if reg.TeamNumber != nil {
			teamNo = strconv.Itoa(*reg.TeamNumber)
		}

		row := []string{
			teamNo,
			reg.Profile.FullName,
			reg.Profile.RollNumber,
			reg.Profile.Department,
			reg.Profile.Gender,
			string(reg.PaymentMode),
			derefString(reg.TransactionID),
			reg.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}

		for _, m := range reg.TeamMembers {
			memberRow := []string{
				"", // team number only on the leader row
				m.FullName,
				m.RollNumber,
				m.Department,
				m.Gender,
				string(reg.PaymentMode),
				"",
				"",
			}
			if err := cw.Write(memberRow); err != nil {
				return fmt.Errorf("failed to write csv member row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
