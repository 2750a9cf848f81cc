package models

// DashboardStats is the pulse payload served by GET /api/dashboard/stats.
// In mock mode the counters are generated inside fixed ranges on every
// request and bear no relation to the live collections.
type DashboardStats struct {
	ActiveAmbulances   int    `json:"activeAmbulances"`
	PendingIncidents   int    `json:"pendingIncidents"`
	AvailableHospitals int    `json:"availableHospitals"`
	AvgResponseTime    string `json:"avgResponseTime"`
	Timestamp          string `json:"timestamp"`
}
