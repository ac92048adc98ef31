package models

// TechnicianStatus is the live availability state of a technician.
type TechnicianStatus string

const (
	TechnicianAvailable TechnicianStatus = "available"
	TechnicianBusy      TechnicianStatus = "busy"
	TechnicianOffline   TechnicianStatus = "offline"
)

// Skill is one entry in a technician's roster.
type Skill struct {
	Category    ServiceCategory `bson:"category" json:"category"`
	Proficiency int             `bson:"proficiency" json:"proficiency"` // 1-5
	Certified   bool            `bson:"certified" json:"certified"`
}

// Technician is a service-center employee who can be assigned appointments.
// WorkloadPercent is mutated only inside booking/workflow critical sections.
type Technician struct {
	ID              string            `bson:"id" json:"id"`
	CenterID        string            `bson:"center_id" json:"centerId"`
	Name            string            `bson:"name" json:"name"`
	Specializations []ServiceCategory `bson:"specializations" json:"specializations"`
	Skills          []Skill           `bson:"skills" json:"skills"`
	YearsExperience int               `bson:"years_experience" json:"yearsExperience"`
	Recommended     bool              `bson:"recommended" json:"recommended"`
	Status          TechnicianStatus  `bson:"status" json:"status"`
	WorkloadPercent int               `bson:"workload_percent" json:"workloadPercent"` // 0-100
}

// MaxProficiency returns the technician's best proficiency among the given
// categories, or 0 when none match.
func (t *Technician) MaxProficiency(categories []ServiceCategory) int {
	best := 0
	for _, s := range t.Skills {
		for _, c := range categories {
			if s.Category == c && s.Proficiency > best {
				best = s.Proficiency
			}
		}
	}
	return best
}

// HasEligibleSkill reports whether the technician holds at least one skill in
// the given categories at the minimum proficiency.
func (t *Technician) HasEligibleSkill(categories []ServiceCategory, minProficiency int) bool {
	for _, s := range t.Skills {
		if s.Proficiency < minProficiency {
			continue
		}
		for _, c := range categories {
			if s.Category == c {
				return true
			}
		}
	}
	return false
}
