package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"droneMedicalDelivery/internal/meds"
	"droneMedicalDelivery/models"
)

type createMedicationRequest struct {
	Name         string  `json:"name"`
	Code         string  `json:"code"`
	Weight       float64 `json:"weight"`
	Type         string  `json:"type,omitempty"`
	Description  string  `json:"description,omitempty"`
	ImageURL     string  `json:"image_url,omitempty"`
	Manufacturer string  `json:"manufacturer,omitempty"`
}

func (a *API) createMedication(w http.ResponseWriter, r *http.Request) {
	var req createMedicationRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeBadRequest(w, "Invalid request body")
		return
	}
	med, err := a.meds.Create(r.Context(), meds.CreateInput{
		Name:         req.Name,
		Code:         req.Code,
		Weight:       req.Weight,
		Type:         models.MedicationType(req.Type),
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Manufacturer: req.Manufacturer,
	}, actorFrom(r))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, med)
}

// listMedications returns the active catalog, or a search when ?q= is set.
func (a *API) listMedications(w http.ResponseWriter, r *http.Request) {
	out, err := a.meds.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"medications": out, "count": len(out)})
}

func (a *API) getMedication(w http.ResponseWriter, r *http.Request) {
	med, err := a.meds.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, med)
}

func (a *API) deactivateMedication(w http.ResponseWriter, r *http.Request) {
	if err := a.meds.Deactivate(r.Context(), chi.URLParam(r, "id"), actorFrom(r)); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusNoContent, nil)
}
