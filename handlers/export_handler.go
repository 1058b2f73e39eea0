package handlers

import (
	"fmt"
	"net/http"

	"github.com/bonhomie/fest-system/services"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportConfirmedCSV streams the confirmed registration sheet for an
// event as a CSV download.
func (h *ExportHandler) ExportConfirmedCSV(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=event_%d_confirmed.csv", eventID))

	if err := h.exportService.WriteConfirmedCSV(r.Context(), eventID, w); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
}
