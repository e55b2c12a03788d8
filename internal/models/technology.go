// internal/models/technology.go
package models

type Category string

const (
	CategoryWaterManagement Category = "Water Management"
	CategoryEnergy          Category = "Energy"
	CategoryCropInnovation  Category = "Crop Innovation"
	CategoryDigitalTools    Category = "Digital Tools"
	CategoryPostHarvest     Category = "Post-Harvest"
	CategorySoilHealth      Category = "Soil Health"
)

var Categories = []Category{
	CategoryWaterManagement,
	CategoryEnergy,
	CategoryCropInnovation,
	CategoryDigitalTools,
	CategoryPostHarvest,
	CategorySoilHealth,
}

type Cost string

const (
	CostLow    Cost = "Low"
	CostMedium Cost = "Medium"
	CostHigh   Cost = "High"
)

var Costs = []Cost{CostLow, CostMedium, CostHigh}

type MaturityLevel string

const (
	MaturityEmerging MaturityLevel = "Emerging"
	MaturityProven   MaturityLevel = "Proven"
	MaturityMature   MaturityLevel = "Mature"
)

var MaturityLevels = []MaturityLevel{MaturityEmerging, MaturityProven, MaturityMature}

// Technology is one catalog entry. Records are owned by the catalog store;
// matching and catalog code only read them.
type Technology struct {
	ID              int           `json:"id" validate:"gt=0"`
	Name            string        `json:"name" validate:"required"`
	Description     string        `json:"description" validate:"required"`
	FullDescription string        `json:"fullDescription"`
	Category        Category      `json:"category" validate:"category"`
	Cost            Cost          `json:"cost" validate:"cost"`
	CostRange       string        `json:"costRange"`
	Icon            string        `json:"icon,omitempty"`
	MaturityLevel   MaturityLevel `json:"maturityLevel" validate:"maturity"`
	AdoptionRate    string        `json:"adoptionRate" validate:"adoption_rate"`
	Regions         []string      `json:"regions" validate:"min=1,dive,required"`
	Benefits        []string      `json:"benefits"`
	Challenges      []string      `json:"challenges"`
	SuitableFor     []string      `json:"suitableFor"`
	EvidenceLinks   []string      `json:"evidenceLinks" validate:"dive,url"`
	CreatedAt       string        `json:"createdAt,omitempty"`
	UpdatedAt       string        `json:"updatedAt,omitempty"`
}

// HasRegion reports whether region is one of the record's regions.
// Matching is exact and case-sensitive.
func (t *Technology) HasRegion(region string) bool {
	for _, r := range t.Regions {
		if r == region {
			return true
		}
	}
	return false
}

var Regions = []string{
	"Sub-Saharan Africa",
	"East Africa",
	"West Africa",
	"South Asia",
	"Southeast Asia",
	"Latin America",
	"Middle East",
	"North America",
	"Europe",
}
