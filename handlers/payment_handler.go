package handlers

import (
	"net/http"

	"github.com/bonhomie/fest-system/middleware"
	"github.com/bonhomie/fest-system/services"
)

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Verify godoc
// @Summary Verify a pending registration's payment
// @Tags payments
// @Produce json
// @Param registrationID path int true "Registration ID"
// @Success 200 {object} map[string]interface{} "Registration confirmed"
// @Failure 400 {object} map[string]string "Evidence missing or registration not pending"
// @Failure 404 {object} map[string]string "Registration not found"
// @Security BearerAuth
// @Router /registrations/{registrationID}/verify [post]
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	reg, err := h.paymentService.Verify(r.Context(), id, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil)
}

func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actorID, err := middleware.GetProfileIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	reg, err := h.paymentService.Reject(r.Context(), id, actorID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"registration": reg}, nil)
}
