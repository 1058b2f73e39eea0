package handlers

import (
	"net/http"

	"github.com/bonhomie/fest-system/middleware"
	"github.com/bonhomie/fest-system/services"
)

type ResultHandler struct {
	resultService services.ResultService
	eventService  services.EventService
}

func NewResultHandler(resultService services.ResultService, eventService services.EventService) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		eventService:  eventService,
	}
}

// Announce godoc
// @Summary Announce an event's results
// @Tags results
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param body body services.AnnounceInput true "Winner registration ids (first required)"
// @Success 201 {object} map[string]interface{} "Results recorded"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Results already announced"
// @Security BearerAuth
// @Router /events/{eventID}/results [post]
func (h *ResultHandler) Announce(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	role, err := middleware.GetRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	if err := h.eventService.CanManage(r.Context(), eventID, actorID, role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input services.AnnounceInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.EventID = eventID

	results, err := h.resultService.Announce(r.Context(), input, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"results": results}, nil)
}

func (h *ResultHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.resultService.ListByEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil)
}
