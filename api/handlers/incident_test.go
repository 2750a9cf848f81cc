package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergencyai/dispatch-api/api/handlers"
	"github.com/emergencyai/dispatch-api/storage"
)

func seedStore(t *testing.T, collections map[string]string) *storage.FileStore {
	t.Helper()
	dir := t.TempDir()
	for name, body := range collections {
		err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644)
		require.NoError(t, err)
	}
	return storage.NewFileStore(dir)
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope
}

const incidentSeed = `[
  {"id": 101, "caseId": "EMG-2025-101", "type": "Cardiac Arrest", "status": "Dispatched", "version": 1},
  {"id": 102, "caseId": "EMG-2025-102", "type": "Fall Injury", "status": "Pending", "version": 1}
]`

func TestIncident_IncidentHandler(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	req := httptest.NewRequest("GET", "/api/incidents", nil)
	rr := httptest.NewRecorder()
	i.IncidentHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	assert.Equal(t, true, envelope["success"])
	assert.Equal(t, "Incidents retrieved successfully", envelope["message"])
	assert.Equal(t, float64(2), envelope["count"])
	assert.Len(t, envelope["data"], 2)
}

func TestIncident_IncidentByIDHandler(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	req := httptest.NewRequest("GET", "/api/incidents/101", nil)
	req = mux.SetURLVars(req, map[string]string{"incident_id": "101"})
	rr := httptest.NewRecorder()
	i.IncidentByIDHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeEnvelope(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, "Cardiac Arrest", data["type"])
}

func TestIncident_IncidentByIDHandlerNotFound(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	req := httptest.NewRequest("GET", "/api/incidents/999", nil)
	req = mux.SetURLVars(req, map[string]string{"incident_id": "999"})
	rr := httptest.NewRecorder()
	i.IncidentByIDHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Incident not found")
}

func TestIncident_CreateIncidentHandler(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	body := `{"type": "Traffic Accident", "location": "Hwy 401", "severity": "High", "status": "Resolved", "id": 999}`
	req := httptest.NewRequest("POST", "/api/incidents", strings.NewReader(body))
	rr := httptest.NewRecorder()
	i.CreateIncidentHandler(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	envelope := decodeEnvelope(t, rr)
	assert.Equal(t, "Incident created successfully", envelope["message"])

	data := envelope["data"].(map[string]interface{})
	// the identifier, case code and status are assigned server-side
	assert.Equal(t, float64(103), data["id"])
	assert.Equal(t, "EMG-2025-103", data["caseId"])
	assert.Equal(t, "Pending", data["status"])
	assert.Equal(t, "Traffic Accident", data["type"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestIncident_CreateIncidentHandlerNullBody(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	// "null" decodes into a nil map without a decode error
	req := httptest.NewRequest("POST", "/api/incidents", strings.NewReader(`null`))
	rr := httptest.NewRecorder()
	i.CreateIncidentHandler(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	data := decodeEnvelope(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, float64(103), data["id"])
	assert.Equal(t, "EMG-2025-103", data["caseId"])
	assert.Equal(t, "Pending", data["status"])
}

func TestIncident_IncidentByIDHandlerNonNumericID(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	req := httptest.NewRequest("GET", "/api/incidents/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"incident_id": "abc"})
	rr := httptest.NewRecorder()
	i.IncidentByIDHandler(rr, req)

	// a non-numeric id can never name a record
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Incident not found")
}

func TestIncident_UpdateIncidentByIDHandler(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	body := `{"status": "On Route", "assignedAmbulance": "AMB-204"}`
	req := httptest.NewRequest("PATCH", "/api/incidents/101", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"incident_id": "101"})
	rr := httptest.NewRecorder()
	i.UpdateIncidentByIDHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	assert.Equal(t, "Incident updated successfully", envelope["message"])

	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "On Route", data["status"])
	assert.Equal(t, "AMB-204", data["assignedAmbulance"])
	// untouched fields survive the merge
	assert.Equal(t, "Cardiac Arrest", data["type"])
	assert.NotEmpty(t, data["updatedAt"])
	assert.Equal(t, float64(2), data["version"])
}

func TestIncident_UpdateIncidentByIDHandlerEnRouteAlias(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	req := httptest.NewRequest("PATCH", "/api/incidents/101", strings.NewReader(`{"status": "En Route"}`))
	req = mux.SetURLVars(req, map[string]string{"incident_id": "101"})
	rr := httptest.NewRecorder()
	i.UpdateIncidentByIDHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeEnvelope(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, "On Route", data["status"])
}

func TestIncident_UpdateIncidentByIDHandlerBadTransition(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	// 102 is Pending, jumping straight to Resolved is not allowed
	req := httptest.NewRequest("PATCH", "/api/incidents/102", strings.NewReader(`{"status": "Resolved"}`))
	req = mux.SetURLVars(req, map[string]string{"incident_id": "102"})
	rr := httptest.NewRecorder()
	i.UpdateIncidentByIDHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid status transition")
}

func TestIncident_UpdateIncidentByIDHandlerNullBody(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	req := httptest.NewRequest("PATCH", "/api/incidents/101", strings.NewReader(`null`))
	req = mux.SetURLVars(req, map[string]string{"incident_id": "101"})
	rr := httptest.NewRecorder()
	i.UpdateIncidentByIDHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	data := decodeEnvelope(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, "Dispatched", data["status"])
	assert.NotEmpty(t, data["updatedAt"])
}

func TestIncident_UpdateIncidentByIDHandlerNotFound(t *testing.T) {
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed})}

	req := httptest.NewRequest("PATCH", "/api/incidents/999", strings.NewReader(`{"severity": "Low"}`))
	req = mux.SetURLVars(req, map[string]string{"incident_id": "999"})
	rr := httptest.NewRecorder()
	i.UpdateIncidentByIDHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Incident not found")
}

func TestIncident_DeleteIncidentByIDHandler(t *testing.T) {
	db := seedStore(t, map[string]string{"incidents": incidentSeed})
	i := handlers.Incident{DB: db}

	req := httptest.NewRequest("DELETE", "/api/incidents/101", nil)
	req = mux.SetURLVars(req, map[string]string{"incident_id": "101"})
	rr := httptest.NewRecorder()
	i.DeleteIncidentByIDHandler(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Incident deleted successfully")

	_, err := db.Get(req.Context(), storage.IncidentsCollection, 101)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIncident_CreatePublishesEvent(t *testing.T) {
	events := handlers.NewEventHub()
	i := handlers.Incident{DB: seedStore(t, map[string]string{"incidents": incidentSeed}), Events: events}

	req := httptest.NewRequest("POST", "/api/incidents", strings.NewReader(`{"type": "Fire"}`))
	rr := httptest.NewRecorder()
	i.CreateIncidentHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}
