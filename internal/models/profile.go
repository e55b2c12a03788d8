// internal/models/profile.go
package models

type Budget = Cost

type Priority string

const (
	PriorityCost           Priority = "cost"
	PriorityEfficiency     Priority = "efficiency"
	PrioritySustainability Priority = "sustainability"
)

var Priorities = []Priority{PriorityCost, PriorityEfficiency, PrioritySustainability}

type FarmSize string

const (
	FarmSizeSmall  FarmSize = "Small"
	FarmSizeMedium FarmSize = "Medium"
	FarmSizeLarge  FarmSize = "Large"
)

// UserProfile drives the recommendations flow. Empty fields are not scored.
// FarmSize is collected by the form but has no scoring weight.
type UserProfile struct {
	Region   string   `json:"region,omitempty"`
	Budget   Budget   `json:"budget,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	FarmSize FarmSize `json:"farmSize,omitempty"`
}

type IncomeLevel string

const (
	IncomeLow         IncomeLevel = "Low-income"
	IncomeLowerMiddle IncomeLevel = "Lower-middle-income"
	IncomeUpperMiddle IncomeLevel = "Upper-middle-income"
	IncomeHigh        IncomeLevel = "High-income"
)

var IncomeLevels = []IncomeLevel{IncomeLow, IncomeLowerMiddle, IncomeUpperMiddle, IncomeHigh}

type Environment string

const (
	EnvironmentWaterScarce   Environment = "Water-scarce"
	EnvironmentFlooding      Environment = "Flooding"
	EnvironmentPoorSoil      Environment = "Poor-soil"
	EnvironmentExtremeHeat   Environment = "Extreme-heat"
	EnvironmentLimitedEnergy Environment = "Limited-energy"
	EnvironmentPostHarvest   Environment = "Post-harvest"
)

var Environments = []Environment{
	EnvironmentWaterScarce,
	EnvironmentFlooding,
	EnvironmentPoorSoil,
	EnvironmentExtremeHeat,
	EnvironmentLimitedEnergy,
	EnvironmentPostHarvest,
}

// UserContext drives the context matcher flow. Environment is accepted but
// does not filter or score.
type UserContext struct {
	Region      string      `json:"region,omitempty"`
	IncomeLevel IncomeLevel `json:"incomeLevel,omitempty"`
	Environment Environment `json:"environment,omitempty"`
}

// IsEmpty reports whether no context field is set.
func (c UserContext) IsEmpty() bool {
	return c.Region == "" && c.IncomeLevel == "" && c.Environment == ""
}
