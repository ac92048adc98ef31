package models

// TimeSlot is a computed candidate start time; never persisted.
type TimeSlot struct {
	Time             string `json:"time"` // HH:mm
	Start            int    `json:"-"`    // minutes from midnight
	Available        bool   `json:"available"`
	ConflictCount    int    `json:"conflicts"`
	RequiresApproval bool   `json:"requiresApproval,omitempty"` // end time spills past closing
}

// TechnicianCandidate is a ranked matcher result.
type TechnicianCandidate struct {
	Technician Technician `json:"technician"`
	RankPoints float64    `json:"rankPoints"`
	Preferred  bool       `json:"preferred"`
}
