package model

// PlanRecord describes a private insurance plan. Read-only reference data,
// fetched fresh per adjudication.
type PlanRecord struct {
	PlanID          string  `json:"plan_id" yaml:"plan_id"`
	Provider        string  `json:"provider" yaml:"provider"`
	PlanName        string  `json:"plan_name" yaml:"plan_name"`
	CoverageRate    float64 `json:"coverage_rate" yaml:"coverage_rate"` // fraction in [0,1]
	AnnualMax       float64 `json:"annual_max" yaml:"annual_max"`
	Deductible      float64 `json:"deductible" yaml:"deductible"`
	CoversBrandName bool    `json:"covers_brand_name" yaml:"covers_brand_name"`
	CoversGeneric   bool    `json:"covers_generic" yaml:"covers_generic"`
}

// ProgramRecord describes a public aid program. Same lifecycle as PlanRecord.
type ProgramRecord struct {
	ProgramID    string   `json:"program_id" yaml:"program_id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Region       string   `json:"region" yaml:"region"`
	CoverageRate float64  `json:"coverage_rate" yaml:"coverage_rate"`
	Eligibility  []string `json:"eligibility" yaml:"eligibility"`
	MaxCopay     float64  `json:"max_copay" yaml:"max_copay"`
}

// DrugRecord is one formulary entry, keyed by DIN.
type DrugRecord struct {
	DIN          string  `json:"din" yaml:"din"`
	DrugName     string  `json:"drug_name" yaml:"drug_name"`
	BrandName    string  `json:"brand_name" yaml:"brand_name"`
	Category     string  `json:"category" yaml:"category"`
	Covered      bool    `json:"covered" yaml:"covered"`
	CoverageRate float64 `json:"coverage_rate" yaml:"coverage_rate"`
	TypicalPrice float64 `json:"typical_price" yaml:"typical_price"`
	LimitedUse   bool    `json:"limited_use" yaml:"limited_use"`
}
