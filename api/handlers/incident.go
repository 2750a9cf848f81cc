package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/emergencyai/dispatch-api/config"
	"github.com/emergencyai/dispatch-api/models"
	"github.com/emergencyai/dispatch-api/storage"
)

// protectedFields cannot be set by callers, the store and router own them
var protectedFields = []string{"id", "caseId", "version", "timestamp", "updatedAt"}

// Incident exported for testing purposes
type Incident struct {
	DB     storage.Store
	Events *EventHub
}

// IncidentHandler returns all incidents plus a count
func (i Incident) IncidentHandler(w http.ResponseWriter, r *http.Request) {
	dbResp, err := i.DB.List(r.Context(), storage.IncidentsCollection)
	if err != nil {
		config.ErrorStatus("Failed to retrieve incidents", http.StatusInternalServerError, w, err)
		return
	}
	config.WriteJSON(w, http.StatusOK, models.ListResponse{
		Success: true,
		Message: "Incidents retrieved successfully",
		Data:    dbResp,
		Count:   len(dbResp),
	})
}

// IncidentByIDHandler returns an incident by ID
func (i Incident) IncidentByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "incident_id")
	if err != nil {
		config.ErrorStatus("Incident not found", http.StatusNotFound, w, nil)
		return
	}

	zap.S().Debugf("incident_id: %v", id)

	dbResp, err := i.DB.Get(r.Context(), storage.IncidentsCollection, id)
	if errors.Is(err, storage.ErrNotFound) {
		config.ErrorStatus("Incident not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		config.ErrorStatus("Failed to retrieve incident", http.StatusInternalServerError, w, err)
		return
	}
	config.WriteJSON(w, http.StatusOK, models.Response{Success: true, Data: dbResp})
}

// CreateIncidentHandler creates a new incident. The identifier, case code
// and Pending status are assigned here regardless of caller input.
func (i Incident) CreateIncidentHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody storage.Record
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if requestBody == nil {
		// a JSON null body decodes into a nil map without error
		requestBody = storage.Record{}
	}
	for _, f := range protectedFields {
		delete(requestBody, f)
	}
	requestBody["status"] = models.StatusPending
	requestBody["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	newIncident, err := i.DB.Create(r.Context(), storage.IncidentsCollection, func(id int) storage.Record {
		requestBody["caseId"] = models.CaseID(id)
		return requestBody
	})
	if err != nil {
		config.ErrorStatus("Failed to create incident", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("created new incident", "id", newIncident["id"])
	i.Events.Publish("incident.created", newIncident)

	config.WriteJSON(w, http.StatusCreated, models.Response{
		Success: true,
		Message: "Incident created successfully",
		Data:    newIncident,
	})
}

// UpdateIncidentByIDHandler shallow-merges the supplied fields over the
// incident. Status changes must follow the dispatch lifecycle.
func (i Incident) UpdateIncidentByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "incident_id")
	if err != nil {
		config.ErrorStatus("Incident not found", http.StatusNotFound, w, nil)
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

	var errBadTransition = errors.New("transition rejected")

	updated, err := i.DB.Update(r.Context(), storage.IncidentsCollection, id, func(current storage.Record) (storage.Record, error) {
		if raw, ok := requestBody["status"]; ok {
			next, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: status must be a string", errBadTransition)
			}
			from, _ := current["status"].(string)
			if !models.CanTransition(from, next) {
				return nil, fmt.Errorf("%w: cannot move incident from %q to %q", errBadTransition, from, next)
			}
			requestBody["status"] = models.NormalizeStatus(next)
		}
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
		config.ErrorStatus("Incident not found", http.StatusNotFound, w, nil)
		return
	}
	if errors.Is(err, errBadTransition) {
		config.ErrorStatus("Invalid status transition", http.StatusBadRequest, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("Failed to update incident", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("updated incident", "id", id)
	i.Events.Publish("incident.updated", updated)

	config.WriteJSON(w, http.StatusOK, models.Response{
		Success: true,
		Message: "Incident updated successfully",
		Data:    updated,
	})
}

// DeleteIncidentByIDHandler deletes an incident by ID
func (i Incident) DeleteIncidentByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "incident_id")
	if err != nil {
		config.ErrorStatus("Incident not found", http.StatusNotFound, w, nil)
		return
	}

	err = i.DB.Delete(r.Context(), storage.IncidentsCollection, id)
	if errors.Is(err, storage.ErrNotFound) {
		config.ErrorStatus("Incident not found", http.StatusNotFound, w, nil)
		return
	}
	if err != nil {
		config.ErrorStatus("Failed to delete incident", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("deleted incident", "id", id)
	i.Events.Publish("incident.deleted", storage.Record{"id": id})

	config.WriteJSON(w, http.StatusOK, models.Response{
		Success: true,
		Message: "Incident deleted successfully",
	})
}

func pathID(r *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(r)[name])
}
