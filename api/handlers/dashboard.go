package handlers

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/emergencyai/dispatch-api/config"
	"github.com/emergencyai/dispatch-api/models"
	"github.com/emergencyai/dispatch-api/storage"
)

// Dashboard serves the static snapshot and the stats pulse
type Dashboard struct {
	DB       storage.Store
	Snapshot func(name string) (json.RawMessage, error)
	// Mock keeps the pulse counters randomly generated inside fixed
	// ranges, unrelated to the live collections
	Mock bool
}

// DashboardHandler returns the static snapshot file verbatim. The snapshot
// and the live collections can diverge, that decoupling is deliberate.
func (d Dashboard) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := d.Snapshot("dashboard")
	if err != nil {
		config.ErrorStatus("Failed to retrieve dashboard data", http.StatusInternalServerError, w, err)
		return
	}
	config.WriteJSON(w, http.StatusOK, models.RawResponse{
		Success: true,
		Message: "Dashboard data retrieved successfully",
		Data:    snapshot,
	})
}

// StatsHandler returns the stats pulse, regenerated on every request
func (d Dashboard) StatsHandler(w http.ResponseWriter, r *http.Request) {
	var stats models.DashboardStats
	var err error
	if d.Mock {
		stats = mockStats()
	} else {
		stats, err = d.liveStats(r)
	}
	if err != nil {
		config.ErrorStatus("Failed to retrieve stats", http.StatusInternalServerError, w, err)
		return
	}
	stats.Timestamp = time.Now().UTC().Format(time.RFC3339)
	config.WriteJSON(w, http.StatusOK, models.Response{Success: true, Data: stats})
}

func mockStats() models.DashboardStats {
	return models.DashboardStats{
		ActiveAmbulances:   rand.Intn(5) + 12, // 12-16
		PendingIncidents:   rand.Intn(5) + 1,  // 1-5
		AvailableHospitals: rand.Intn(3) + 5,  // 5-7
		AvgResponseTime:    fmt.Sprintf("%dm %ds", rand.Intn(3)+6, rand.Intn(60)),
	}
}

// liveStats derives the counters from the record store. No response
// timings are recorded anywhere, so the average falls back to the value
// carried by the static snapshot.
func (d Dashboard) liveStats(r *http.Request) (models.DashboardStats, error) {
	incidents, err := d.DB.List(r.Context(), storage.IncidentsCollection)
	if err != nil {
		return models.DashboardStats{}, err
	}
	hospitals, err := d.DB.List(r.Context(), storage.HospitalsCollection)
	if err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{AvgResponseTime: d.snapshotAvgResponseTime()}
	units := map[string]struct{}{}
	for _, rec := range incidents {
		status, _ := rec["status"].(string)
		if status == models.StatusPending {
			stats.PendingIncidents++
		}
		unit, _ := rec["assignedAmbulance"].(string)
		if unit != "" && status != models.StatusResolved {
			units[unit] = struct{}{}
		}
	}
	stats.ActiveAmbulances = len(units)
	for _, rec := range hospitals {
		if status, _ := rec["status"].(string); status == models.HospitalAvailable {
			stats.AvailableHospitals++
		}
	}
	return stats, nil
}

func (d Dashboard) snapshotAvgResponseTime() string {
	raw, err := d.Snapshot("dashboard")
	if err != nil {
		return "N/A"
	}
	var doc struct {
		Stats struct {
			AvgResponseTime string `json:"avgResponseTime"`
		} `json:"stats"`
	}
	if json.Unmarshal(raw, &doc) != nil || doc.Stats.AvgResponseTime == "" {
		return "N/A"
	}
	return doc.Stats.AvgResponseTime
}
