package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bonhomie/fest-system/middleware"
	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/bonhomie/fest-system/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
	resultService  services.ResultService
}

func NewProfileHandler(profileService services.ProfileService, resultService services.ResultService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		resultService:  resultService,
	}
}

func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	profile, err := h.profileService.GetByID(r.Context(), profileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil)
}

func (h *ProfileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "profileID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.profileService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil)
}

// ResolveRollNumber looks a roll number up for staff at the registration
// desk. A 404 tells the frontend to offer offline profile creation.
func (h *ProfileHandler) ResolveRollNumber(w http.ResponseWriter, r *http.Request) {
	rollNumber := r.URL.Query().Get("roll_number")
	if rollNumber == "" {
		badRequestResponse(w, r, errors.New("roll_number query parameter is required"))
		return
	}

	profile, err := h.profileService.ResolveByRollNumber(r.Context(), rollNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil)
}

func (h *ProfileHandler) CreateOffline(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var input services.OfflineProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.profileService.CreateOfflineProfile(r.Context(), input, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonResponse{"profile": profile}, nil)
}

func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	profile, err := h.profileService.GetByID(r.Context(), profileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var input struct {
		FullName   *string `json:"full_name"`
		Department *string `json:"department"`
		Phone      *string `json:"phone"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.FullName != nil {
		profile.FullName = *input.FullName
	}
	if input.Department != nil {
		profile.Department = *input.Department
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}

	if err := h.profileService.Update(r.Context(), profile); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil)
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListProfilesFilter{
		Search: r.URL.Query().Get("search"),
	}
	if dept := r.URL.Query().Get("department"); dept != "" {
		filter.Department = &dept
	}
	if roleStr := r.URL.Query().Get("role"); roleStr != "" {
		role := models.ProfileRole(roleStr)
		filter.Role = &role
	}
	if offlineStr := r.URL.Query().Get("offline"); offlineStr != "" {
		offline := offlineStr == "true"
		filter.AdminCreated = &offline
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	profiles, err := h.profileService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"profiles": profiles}, nil)
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "profileID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	if id == actorID {
		badRequestResponse(w, r, errors.New("cannot delete your own profile"))
		return
	}

	if err := h.profileService.Delete(r.Context(), id, actorID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMyResults returns the caller's win history.
func (h *ProfileHandler) ListMyResults(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	results, err := h.resultService.ListByProfile(r.Context(), profileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil)
}
