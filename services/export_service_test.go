package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/bonhomie/fest-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWriteConfirmedCSV_TeamEventGroupsMembersUnderLeader(t *testing.T) {
	regRepo := new(mockRegistrationRepository)
	eventRepo := new(mockEventRepository)
	profileRepo := new(mockProfileRepository)
	svc := NewExportService(regRepo, eventRepo, profileRepo)

	event := teamEvent(2, 4)
	eventRepo.On("GetByID", mock.Anything, 2).Return(event, nil)

	teamNo := 1
	registeredAt := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	leader := &models.Registration{
		ID:          1,
		EventID:     2,
		ProfileID:   10,
		Status:      models.RegistrationConfirmed,
		PaymentMode: models.PaymentModeOnline,
		TeamNumber:  &teamNo,
		TeamMembers: []models.TeamMember{
			{ProfileID: 11, FullName: "Member One", RollNumber: "CS/2022/111", Department: "CS", Gender: "female"},
			{ProfileID: 12, FullName: "Member Two", RollNumber: "CS/2022/112", Department: "CS", Gender: "male"},
		},
		TransactionID: strPtr("TXN99"),
		CreatedAt:     registeredAt,
		Profile: &models.Profile{
			FullName:   "Team Leader",
			RollNumber: "CS/2022/110",
			Department: "CS",
			Gender:     "female",
		},
	}
	// Member index rows come back from the same query; they must not
	// produce their own lines.
	memberRow := &models.Registration{
		ID:        2,
		EventID:   2,
		ProfileID: 11,
		Status:    models.RegistrationConfirmed,
		Profile:   &models.Profile{FullName: "Member One"},
	}
	regRepo.On("ListByEvent", mock.Anything, 2, mock.AnythingOfType("repositories.ListRegistrationsFilter")).
		Return([]*models.Registration{leader, memberRow}, nil)

	var buf bytes.Buffer
	err := svc.WriteConfirmedCSV(context.Background(), 2, &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + leader + two members

	assert.Equal(t, exportHeader, records[0])

	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Team Leader", records[1][1])
	assert.Equal(t, "TXN99", records[1][6])
	assert.Equal(t, "2026-02-14 10:30:00", records[1][7])

	assert.Empty(t, records[2][0])
	assert.Equal(t, "Member One", records[2][1])
	assert.Empty(t, records[3][0])
	assert.Equal(t, "Member Two", records[3][1])
}

func TestWriteConfirmedCSV_IndividualEvent(t *testing.T) {
	regRepo := new(mockRegistrationRepository)
	eventRepo := new(mockEventRepository)
	profileRepo := new(mockProfileRepository)
	svc := NewExportService(regRepo, eventRepo, profileRepo)

	eventRepo.On("GetByID", mock.Anything, 1).Return(individualEvent(), nil)

	reg := &models.Registration{
		ID:          1,
		EventID:     1,
		ProfileID:   10,
		Status:      models.RegistrationConfirmed,
		PaymentMode: models.PaymentModeCash,
		Profile:     &models.Profile{FullName: "Asha", RollNumber: "EC/2023/007", Department: "EC", Gender: "female"},
	}
	regRepo.On("ListByEvent", mock.Anything, 1, mock.AnythingOfType("repositories.ListRegistrationsFilter")).
		Return([]*models.Registration{reg}, nil)

	var buf bytes.Buffer
	err := svc.WriteConfirmedCSV(context.Background(), 1, &buf)
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Empty(t, records[1][0]) // no team number on individual rows
	assert.Equal(t, "Asha", records[1][1])
	assert.Equal(t, "cash", records[1][5])
}
