package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/bonhomie/fest-system/middleware"
	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/bonhomie/fest-system/services"
)

const maxUploadSize = 10 << 20 // 10MB

type EventHandler struct {
	eventService services.EventService
}

func NewEventHandler(eventService services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	creatorID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.EventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.Create(r.Context(), input, creatorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil)
}

func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListEventsFilter{
		LiveOnly: r.URL.Query().Get("live") == "true",
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = &category
	}
	if dayStr := r.URL.Query().Get("day"); dayStr != "" {
		if day, err := strconv.Atoi(dayStr); err == nil && day > 0 {
			filter.Day = &day
		}
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.EventStatus(statusStr)
		filter.Status = &status
	}

	events, err := h.eventService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil)
}

// canManage resolves the caller's identity and checks management rights
// for the event. It writes the error response itself on failure.
func (h *EventHandler) canManage(w http.ResponseWriter, r *http.Request, eventID int) (int, bool) {
	profileID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return 0, false
	}
	role, err := middleware.GetRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return 0, false
	}
	if err := h.eventService.CanManage(r.Context(), eventID, profileID, role); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return 0, false
	}
	return profileID, true
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, ok := h.canManage(w, r, id)
	if !ok {
		return
	}

	var input services.EventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.Update(r.Context(), id, input, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	if err := h.eventService.Delete(r.Context(), id, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) GoLive(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, ok := h.canManage(w, r, id)
	if !ok {
		return
	}

	override := r.URL.Query().Get("override") == "true"
	event, err := h.eventService.GoLive(r.Context(), id, override, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil)
}

func (h *EventHandler) EndLive(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, ok := h.canManage(w, r, id)
	if !ok {
		return
	}

	event, err := h.eventService.EndLive(r.Context(), id, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil)
}

func (h *EventHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, h.eventService.UploadCover)
}

func (h *EventHandler) UploadQR(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, h.eventService.UploadQR)
}

func (h *EventHandler) uploadImage(w http.ResponseWriter, r *http.Request, upload func(ctx context.Context, id int, contentType string, file io.Reader) (*models.Event, error)) {
	id, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, ok := h.canManage(w, r, id); !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		badRequestResponse(w, r, errors.New("failed to parse multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, errors.New("image file is required"))
		return
	}
	defer file.Close()

	event, err := upload(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil)
}

func (h *EventHandler) AssignCoordinator(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		CoordinatorID int `json:"coordinator_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignment, err := h.eventService.AssignCoordinator(r.Context(), eventID, input.CoordinatorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"assignment": assignment}, nil)
}

func (h *EventHandler) UnassignCoordinator(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	coordinatorID, err := getIDFromURL(r, "profileID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.eventService.UnassignCoordinator(r.Context(), eventID, coordinatorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EventHandler) ListCoordinators(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignments, err := h.eventService.ListCoordinators(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"assignments": assignments}, nil)
}

// ListMyAssignedEvents returns the events assigned to the calling
// coordinator.
func (h *EventHandler) ListMyAssignedEvents(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	events, err := h.eventService.ListAssignedEvents(r.Context(), profileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil)
}

func (h *EventHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.eventService.AuditTrail(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"audit": entries}, nil)
}
