package models

import "fmt"

// Incident statuses follow the dispatch lifecycle. "En Route" is accepted
// from callers as an alias of "On Route", which is what the data files use.
const (
	StatusPending    = "Pending"
	StatusDispatched = "Dispatched"
	StatusOnRoute    = "On Route"
	StatusMoving     = "Moving"
	StatusAtScene    = "At Scene"
	StatusResolved   = "Resolved"
)

// Incident holds the structure for a record in the incidents collection
type Incident struct {
	ID                int    `json:"id"`
	CaseID            string `json:"caseId"`
	Type              string `json:"type,omitempty"`
	Location          string `json:"location,omitempty"`
	Severity          string `json:"severity,omitempty"`
	Status            string `json:"status"`
	AssignedAmbulance string `json:"assignedAmbulance,omitempty"`
	ETA               string `json:"eta,omitempty"`
	Timestamp         string `json:"timestamp"`
	UpdatedAt         string `json:"updatedAt,omitempty"`
	Version           int    `json:"version,omitempty"`
}

// CaseID derives the human case code for an incident identifier
func CaseID(id int) string {
	return fmt.Sprintf("EMG-2025-%d", id)
}

var statusTransitions = map[string][]string{
	StatusPending:    {StatusDispatched},
	StatusDispatched: {StatusOnRoute},
	StatusOnRoute:    {StatusMoving, StatusAtScene},
	StatusMoving:     {StatusAtScene},
	StatusAtScene:    {StatusResolved},
	StatusResolved:   {},
}

// NormalizeStatus maps accepted aliases onto the stored status vocabulary
func NormalizeStatus(s string) string {
	if s == "En Route" {
		return StatusOnRoute
	}
	return s
}

// ValidStatus reports whether s names a known incident status
func ValidStatus(s string) bool {
	_, ok := statusTransitions[NormalizeStatus(s)]
	return ok
}

// CanTransition reports whether an incident may move from one status to
// another. Self-transitions are allowed so that a merge re-stating the
// current status is not rejected. Records carrying a legacy status outside
// the table may move to any valid status.
func CanTransition(from, to string) bool {
	from = NormalizeStatus(from)
	to = NormalizeStatus(to)
	if !ValidStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	next, ok := statusTransitions[from]
	if !ok {
		return true
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
