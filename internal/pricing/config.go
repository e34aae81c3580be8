package pricing

import (
	"math"
	"sort"
)

// DiscountMode selects the volume discount curve.
type DiscountMode string

const (
	// ModeInterpolated interpolates linearly between tier thresholds.
	ModeInterpolated DiscountMode = "interpolated"
	// ModeTiered applies the discount of the highest threshold reached.
	ModeTiered DiscountMode = "tiered"
	// ModeEaseOut follows a quadratic ease-out curve up to the top tier.
	ModeEaseOut DiscountMode = "easeOut"
)

// Hardware holds per-unit hardware cost inputs.
type Hardware struct {
	UnitCost              float64 `json:"unitCost" yaml:"unitCost"`
	ReplacementCycleYears float64 `json:"replacementCycleYears" yaml:"replacementCycleYears"`
}

// Labor holds labor rates and per-unit hours.
type Labor struct {
	HourlyRate          float64 `json:"hourlyRate" yaml:"hourlyRate"`
	BuildHours          float64 `json:"buildHours" yaml:"buildHours"`
	SupportHoursPerYear float64 `json:"supportHoursPerYear" yaml:"supportHoursPerYear"`
	CoordinationHours   float64 `json:"coordinationHours" yaml:"coordinationHours"`
	FTESalary           float64 `json:"fteSalary" yaml:"fteSalary"`
	FTEHoursPerYear     float64 `json:"fteHoursPerYear" yaml:"fteHoursPerYear"`
}

// TimeDecay reduces support hours as a unit ages. A zero DecayRate disables it.
type TimeDecay struct {
	DecayRate float64 `json:"decayRate" yaml:"decayRate"`
	Floor     float64 `json:"floor" yaml:"floor"`
}

// ScaleEfficiency reduces support hours logarithmically as the installed base grows.
type ScaleEfficiency struct {
	ReferenceUnits float64 `json:"referenceUnits" yaml:"referenceUnits"`
	Slope          float64 `json:"slope" yaml:"slope"`
	Floor          float64 `json:"floor" yaml:"floor"`
}

// Overhead is the fixed annual cost that does not scale with volume.
type Overhead struct {
	FTECount        float64 `json:"fteCount" yaml:"fteCount"`
	AdditionalFixed float64 `json:"additionalFixed" yaml:"additionalFixed"`
}

// Terms holds list prices, margin targets and price shaping rules.
type Terms struct {
	Year1ListPrice         float64 `json:"year1ListPrice" yaml:"year1ListPrice"`
	Year2ListPrice         float64 `json:"year2ListPrice,omitempty" yaml:"year2ListPrice,omitempty"`
	Year1ShiftFactor       float64 `json:"year1ShiftFactor" yaml:"year1ShiftFactor"`
	TargetMargin           float64 `json:"targetMargin" yaml:"targetMargin"`
	Year1OverheadFactor    float64 `json:"year1OverheadFactor" yaml:"year1OverheadFactor"`
	OverheadCredit         bool    `json:"overheadCredit" yaml:"overheadCredit"`
	OverheadCreditCapYears int     `json:"overheadCreditCapYears" yaml:"overheadCreditCapYears"`
	BaselineContractYears  int     `json:"baselineContractYears" yaml:"baselineContractYears"`
	MinGapPerYear          float64 `json:"minGapPerYear" yaml:"minGapPerYear"`
	RoundingIncrement      float64 `json:"roundingIncrement" yaml:"roundingIncrement"`
	Year1ContractDiscount  bool    `json:"year1ContractDiscount" yaml:"year1ContractDiscount"`
}

// Tier is one volume discount threshold.
type Tier struct {
	MinUnits float64 `json:"minUnits" yaml:"minUnits"`
	Discount float64 `json:"discount" yaml:"discount"`
}

// Discounts configures the volume discount curve and its basis.
type Discounts struct {
	Mode             DiscountMode `json:"mode" yaml:"mode"`
	Tiers            []Tier       `json:"tiers" yaml:"tiers"`
	Year1Scale       float64      `json:"year1Scale" yaml:"year1Scale"`
	CommitmentWeight float64      `json:"commitmentWeight" yaml:"commitmentWeight"`
	MaxTotal         float64      `json:"maxTotal" yaml:"maxTotal"`
}

// Fleet holds the default existing installed base.
type Fleet struct {
	ExistingUnits float64 `json:"existingUnits" yaml:"existingUnits"`
}

// Licensing adds flat per-unit license fees on top of hardware and support.
type Licensing struct {
	Year1Price    float64 `json:"year1Price" yaml:"year1Price"`
	Year1Discount float64 `json:"year1Discount" yaml:"year1Discount"`
	Year2Price    float64 `json:"year2Price" yaml:"year2Price"`
	Year2Discount float64 `json:"year2Discount" yaml:"year2Discount"`
}

// Config is the complete set of pricing parameters.
type Config struct {
	Hardware          Hardware        `json:"hardware" yaml:"hardware"`
	Labor             Labor           `json:"labor" yaml:"labor"`
	Efficiency        TimeDecay       `json:"efficiency" yaml:"efficiency"`
	ScaleEfficiency   ScaleEfficiency `json:"scaleEfficiency" yaml:"scaleEfficiency"`
	Overhead          Overhead        `json:"overhead" yaml:"overhead"`
	Pricing           Terms           `json:"pricing" yaml:"pricing"`
	Discounts         Discounts       `json:"discounts" yaml:"discounts"`
	ContractDiscounts map[int]float64 `json:"contractDiscounts" yaml:"contractDiscounts"`
	Fleet             Fleet           `json:"fleet" yaml:"fleet"`
	Licensing         Licensing       `json:"licensing" yaml:"licensing"`
}

// Validate reports the first configuration problem found, if any.
func (c Config) Validate() error {
	numbers := []struct {
		field string
		value float64
	}{
		{"hardware.unitCost", c.Hardware.UnitCost},
		{"hardware.replacementCycleYears", c.Hardware.ReplacementCycleYears},
		{"labor.hourlyRate", c.Labor.HourlyRate},
		{"labor.buildHours", c.Labor.BuildHours},
		{"labor.supportHoursPerYear", c.Labor.SupportHoursPerYear},
		{"labor.coordinationHours", c.Labor.CoordinationHours},
		{"labor.fteSalary", c.Labor.FTESalary},
		{"labor.fteHoursPerYear", c.Labor.FTEHoursPerYear},
		{"efficiency.decayRate", c.Efficiency.DecayRate},
		{"efficiency.floor", c.Efficiency.Floor},
		{"scaleEfficiency.referenceUnits", c.ScaleEfficiency.ReferenceUnits},
		{"scaleEfficiency.slope", c.ScaleEfficiency.Slope},
		{"scaleEfficiency.floor", c.ScaleEfficiency.Floor},
		{"overhead.fteCount", c.Overhead.FTECount},
		{"overhead.additionalFixed", c.Overhead.AdditionalFixed},
		{"pricing.year1ListPrice", c.Pricing.Year1ListPrice},
		{"pricing.year2ListPrice", c.Pricing.Year2ListPrice},
		{"pricing.year1ShiftFactor", c.Pricing.Year1ShiftFactor},
		{"pricing.targetMargin", c.Pricing.TargetMargin},
		{"pricing.year1OverheadFactor", c.Pricing.Year1OverheadFactor},
		{"pricing.minGapPerYear", c.Pricing.MinGapPerYear},
		{"pricing.roundingIncrement", c.Pricing.RoundingIncrement},
		{"discounts.year1Scale", c.Discounts.Year1Scale},
		{"discounts.commitmentWeight", c.Discounts.CommitmentWeight},
		{"discounts.maxTotal", c.Discounts.MaxTotal},
		{"fleet.existingUnits", c.Fleet.ExistingUnits},
		{"licensing.year1Price", c.Licensing.Year1Price},
		{"licensing.year1Discount", c.Licensing.Year1Discount},
		{"licensing.year2Price", c.Licensing.Year2Price},
		{"licensing.year2Discount", c.Licensing.Year2Discount},
	}
	for _, n := range numbers {
		if !finite(n.value) {
			return configError(n.field, "must be a finite number")
		}
		if n.value < 0 && n.field != "pricing.targetMargin" {
			return configError(n.field, "must not be negative")
		}
	}

	if c.Hardware.ReplacementCycleYears <= 0 {
		return configError("hardware.replacementCycleYears", "must be greater than 0")
	}
	if c.Pricing.TargetMargin <= -1 {
		return configError("pricing.targetMargin", "must be greater than -1")
	}

	fractions := []struct {
		field string
		value float64
	}{
		{"efficiency.decayRate", c.Efficiency.DecayRate},
		{"efficiency.floor", c.Efficiency.Floor},
		{"scaleEfficiency.floor", c.ScaleEfficiency.Floor},
		{"pricing.year1ShiftFactor", c.Pricing.Year1ShiftFactor},
		{"discounts.year1Scale", c.Discounts.Year1Scale},
		{"discounts.commitmentWeight", c.Discounts.CommitmentWeight},
		{"discounts.maxTotal", c.Discounts.MaxTotal},
		{"licensing.year1Discount", c.Licensing.Year1Discount},
		{"licensing.year2Discount", c.Licensing.Year2Discount},
	}
	for _, f := range fractions {
		if f.value > 1 {
			return configError(f.field, "must be between 0 and 1")
		}
	}

	if c.ScaleEfficiency.Slope > 0 && c.ScaleEfficiency.ReferenceUnits <= 0 {
		return configError("scaleEfficiency.referenceUnits", "must be greater than 0 when slope is set")
	}

	switch c.Discounts.Mode {
	case "", ModeInterpolated, ModeTiered, ModeEaseOut:
	default:
		return configError("discounts.mode", "%q is not one of interpolated, tiered, easeOut", c.Discounts.Mode)
	}
	if len(c.Discounts.Tiers) == 0 {
		return configError("discounts.tiers", "must contain at least one tier")
	}
	for _, t := range c.Discounts.Tiers {
		if !finite(t.MinUnits) || !finite(t.Discount) {
			return configError("discounts.tiers", "must contain finite numbers")
		}
		if t.MinUnits < 0 {
			return configError("discounts.tiers", "minUnits must not be negative")
		}
	}

	if len(c.ContractDiscounts) == 0 {
		return configError("contractDiscounts", "must configure at least one contract length")
	}
	for years, d := range c.ContractDiscounts {
		if years < 1 {
			return configError("contractDiscounts", "contract length %d must be at least 1 year", years)
		}
		if !finite(d) {
			return configError("contractDiscounts", "discount for %d years must be a finite number", years)
		}
	}

	if c.Pricing.OverheadCreditCapYears < 0 {
		return configError("pricing.overheadCreditCapYears", "must not be negative")
	}
	baseline := c.Pricing.BaselineContractYears
	d, ok := c.ContractDiscounts[baseline]
	if !ok {
		return configError("pricing.baselineContractYears", "%d is not a configured contract length", baseline)
	}
	if c.Pricing.Year2ListPrice == 0 && clamp01(d) >= 1 {
		return configError("contractDiscounts", "discount for the baseline term %d must be below 1", baseline)
	}

	return nil
}

func (c Config) clone() Config {
	out := c
	out.Discounts.Tiers = append([]Tier(nil), c.Discounts.Tiers...)
	out.ContractDiscounts = make(map[int]float64, len(c.ContractDiscounts))
	for k, v := range c.ContractDiscounts {
		out.ContractDiscounts[k] = v
	}
	return out
}

func sortedTerms(discounts map[int]float64) []int {
	terms := make([]int, 0, len(discounts))
	for years := range discounts {
		terms = append(terms, years)
	}
	sort.Ints(terms)
	return terms
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
