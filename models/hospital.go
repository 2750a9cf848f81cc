package models

// HospitalAvailable is the status value the available-hospitals filter matches
const HospitalAvailable = "Available"

// Hospital holds the structure for a record in the hospitals collection.
// Bed-capacity fields beyond the ones below are treated as opaque by the
// core and survive updates untouched.
type Hospital struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	TotalBeds     int    `json:"totalBeds,omitempty"`
	AvailableBeds int    `json:"availableBeds,omitempty"`
	ICUBeds       int    `json:"icuBeds,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	Version       int    `json:"version,omitempty"`
}
