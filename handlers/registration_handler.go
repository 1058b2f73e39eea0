package handlers

import (
	"errors"
	"net/http"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/services"
)

type RegistrationHandler struct {
	registrationService services.RegistrationService
}

func NewRegistrationHandler(registrationService services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// RegisterIndividual godoc
// @Summary Register a profile for an individual event
// @Tags registrations
// @Accept json
// @Produce json
// @Param body body services.RegisterIndividualInput true "Registration payload"
// @Success 201 {object} map[string]interface{} "Registration created"
// @Failure 400 {object} map[string]string "Validation or business-rule error"
// @Failure 409 {object} map[string]string "Profile already registered"
// @Security BearerAuth
// @Router /registrations/individual [post]
func (h *RegistrationHandler) RegisterIndividual(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterIndividualInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.RegisterIndividual(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"registration": reg}, nil)
}

// RegisterTeam godoc
// @Summary Register a team for a team event
// @Tags registrations
// @Accept json
// @Produce json
// @Param body body services.RegisterTeamInput true "Team registration payload"
// @Success 201 {object} map[string]interface{} "Leader registration created"
// @Failure 400 {object} map[string]string "Validation or business-rule error"
// @Failure 409 {object} map[string]string "A member already belongs to a team"
// @Security BearerAuth
// @Router /registrations/team [post]
func (h *RegistrationHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.RegisterTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"registration": reg}, nil)
}

func (h *RegistrationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil)
}

func (h *RegistrationHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.RegistrationStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		s := models.RegistrationStatus(statusStr)
		switch s {
		case models.RegistrationPending, models.RegistrationConfirmed, models.RegistrationRejected:
			status = &s
		default:
			badRequestResponse(w, r, errors.New("invalid status filter"))
			return
		}
	}

	regs, err := h.registrationService.ListByEvent(r.Context(), eventID, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"registrations": regs}, nil)
}

func (h *RegistrationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ProfileID int `json:"profile_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.AddMember(r.Context(), id, input.ProfileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil)
}

// RemoveMember drops a member from the team. When that would shrink the
// team below the event minimum the request must carry
// ?delete_team=true, which removes the whole team instead.
func (h *RegistrationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	memberID, err := getIDFromURL(r, "profileID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	deleteTeam := r.URL.Query().Get("delete_team") == "true"

	reg, err := h.registrationService.RemoveMember(r.Context(), id, memberID, deleteTeam)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if reg == nil {
		writeJSON(w, http.StatusOK, jsonResponse{"message": "team deleted"}, nil)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil)
}

func (h *RegistrationHandler) ReplaceMember(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		OldProfileID int `json:"old_profile_id"`
		NewProfileID int `json:"new_profile_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	reg, err := h.registrationService.ReplaceMember(r.Context(), id, input.OldProfileID, input.NewProfileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil)
}

func (h *RegistrationHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.registrationService.DeleteTeam(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RegistrationHandler) UploadScreenshot(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		badRequestResponse(w, r, errors.New("screenshot file is required"))
		return
	}
	defer file.Close()

	transactionID := r.FormValue("transaction_id")

	reg, err := h.registrationService.UploadScreenshot(r.Context(), id, transactionID, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil)
}
