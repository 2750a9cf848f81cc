package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emergencyai/dispatch-api/config"
	"github.com/emergencyai/dispatch-api/models"
	"github.com/emergencyai/dispatch-api/storage"
)

// Hospital exported for testing purposes. Hospitals are fixed
// infrastructure, there is no create or delete surface.
type Hospital struct {
	DB     storage.Store
	Events *EventHub
}

// HospitalHandler returns all hospitals plus a count
func (h Hospital) HospitalHandler(w http.ResponseWriter, r *http.Request) {
	dbResp, err := h.DB.List(r.Context(), storage.HospitalsCollection)
	if err != nil {
		config.ErrorStatus("Failed to retrieve hospitals", http.StatusInternalServerError, w, err)
		return
	}
	config.WriteJSON(w, http.StatusOK, models.ListResponse{
		Success: true,
		Message: "Hospitals retrieved successfully",
		Data:    dbResp,
		Count:   len(dbResp),
	})
}

// AvailableHospitalsHandler returns only hospitals whose status is Available
func (h Hospital) AvailableHospitalsHandler(w http.ResponseWriter, r *http.Request) {
	dbResp, err := h.DB.List(r.Context(), storage.HospitalsCollection)
	if err != nil {
		config.ErrorStatus("Failed to retrieve available hospitals", http.StatusInternalServerError, w, err)
		return
	}
	available := []storage.Record{}
	for _, rec := range dbResp {
		if status, _ := rec["status"].(string); status == models.HospitalAvailable {
			available = append(available, rec)
		}
	}
	config.WriteJSON(w, http.StatusOK, models.ListResponse{
		Success: true,
		Data:    available,
		Count:   len(available),
	})
}

// HospitalByIDHandler returns a hospital by ID
func (h Hospital) HospitalByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "hospital_id")
	if err != nil {
		config.ErrorStatus("Hospital not found", http.StatusNotFound, w, nil)
		return
	}

	zap.S().Debugf("hospital_id: %v", id)

	dbResp, err := h.DB.Get(r.Context(), storage.HospitalsCollection, id)
	if errors.Is(err, storage.ErrNotFound) {
		config.ErrorStatus("Hospital not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		config.ErrorStatus("Failed to retrieve hospital", http.StatusInternalServerError, w, err)
		return
	}
	config.WriteJSON(w, http.StatusOK, models.Response{Success: true, Data: dbResp})
}

// UpdateHospitalByIDHandler shallow-merges the supplied fields over the
// hospital, bed-capacity fields pass through opaquely
func (h Hospital) UpdateHospitalByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "hospital_id")
	if err != nil {
		config.ErrorStatus("Hospital not found", http.StatusNotFound, w, nil)
		return
	}

	var requestBody storage.Record
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if requestBody == nil {
		requestBody = storage.Record{}
	}
	for _, f := range protectedFields {
		delete(requestBody, f)
	}

	updated, err := h.DB.Update(r.Context(), storage.HospitalsCollection, id, func(current storage.Record) (storage.Record, error) {
		merged := storage.Record{}
		for k, v := range current {
			merged[k] = v
		}
		for k, v := range requestBody {
			merged[k] = v
		}
		merged["updatedAt"] = time.Now().UTC().Format(time.RFC3339)
		return merged, nil
	})
	if errors.Is(err, storage.ErrNotFound) {
		config.ErrorStatus("Hospital not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		config.ErrorStatus("Failed to update hospital", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("updated hospital", "id", id)
	h.Events.Publish("hospital.updated", updated)

	config.WriteJSON(w, http.StatusOK, models.Response{
		Success: true,
		Message: "Hospital updated successfully",
		Data:    updated,
	})
}
