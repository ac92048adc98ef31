package models

// ServiceCategory classifies catalog services and technician skills.
type ServiceCategory string

const (
	CategoryMaintenance ServiceCategory = "maintenance"
	CategoryBattery     ServiceCategory = "battery"
	CategoryMotor       ServiceCategory = "motor"
	CategoryCharging    ServiceCategory = "charging"
	CategoryElectronics ServiceCategory = "electronics"
	CategoryDiagnostic  ServiceCategory = "diagnostic"
	CategoryGeneral     ServiceCategory = "general"
)

// ServiceCategories lists every valid category.
var ServiceCategories = []ServiceCategory{
	CategoryMaintenance, CategoryBattery, CategoryMotor, CategoryCharging,
	CategoryElectronics, CategoryDiagnostic, CategoryGeneral,
}

// IsValidCategory reports whether c is a known service category.
func IsValidCategory(c ServiceCategory) bool {
	for _, known := range ServiceCategories {
		if c == known {
			return true
		}
	}
	return false
}

// SkillLevel is the minimum technician level a service calls for.
type SkillLevel string

const (
	SkillBasic        SkillLevel = "basic"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

// Service is an immutable catalog entry. Staff maintain the catalog; the
// scheduling engine only reads it.
type Service struct {
	ID               string          `bson:"id" json:"id"`
	Name             string          `bson:"name" json:"name"`
	Category         ServiceCategory `bson:"category" json:"category"`
	EstimatedMinutes int             `bson:"estimated_minutes" json:"estimatedMinutes"`
	RequiredSkill    SkillLevel      `bson:"required_skill" json:"requiredSkill"`
	BasePrice        float64         `bson:"base_price" json:"basePrice"`
}
