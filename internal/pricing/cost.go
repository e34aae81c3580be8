package pricing

import "math"

// HardwareReserve is the annual hardware replacement reserve per unit.
func (e *Engine) HardwareReserve() float64 {
	return e.cfg.Hardware.UnitCost / e.cfg.Hardware.ReplacementCycleYears
}

// AvgInstalledBaseForYear models the installed base growing linearly through
// the year while orders are still ramping.
func (e *Engine) AvgInstalledBaseForYear(year int, s Scenario) float64 {
	existing := e.fleet(s)
	annual := s.MonthlyRate * 12
	y := float64(year)

	base := existing + annual*math.Min(y, s.CommitYears)
	if y <= s.CommitYears {
		base -= annual / 2
	}
	return math.Max(existing, base)
}

func (e *Engine) timeDecayFactor(year int) float64 {
	d := e.cfg.Efficiency
	if d.DecayRate == 0 {
		return 1
	}
	return math.Max(d.Floor, math.Pow(d.DecayRate, float64(year-1)))
}

func (e *Engine) scaleFactor(installedBase float64) float64 {
	sc := e.cfg.ScaleEfficiency
	if sc.Slope <= 0 || sc.ReferenceUnits <= 0 || installedBase <= sc.ReferenceUnits {
		return 1
	}
	f := 1 / (1 + sc.Slope*math.Log10(installedBase/sc.ReferenceUnits))
	return math.Max(sc.Floor, math.Min(1, f))
}

// SupportHoursForYear is the per-unit support effort in the given contract year.
func (e *Engine) SupportHoursForYear(year int, s Scenario) float64 {
	base := e.AvgInstalledBaseForYear(year, s)
	return e.cfg.Labor.SupportHoursPerYear * e.timeDecayFactor(year) * e.scaleFactor(base)
}

// SupportFTEsForYear is the support headcount implied by the installed base.
func (e *Engine) SupportFTEsForYear(year int, s Scenario) float64 {
	if e.cfg.Labor.FTEHoursPerYear <= 0 {
		return 0
	}
	return e.AvgInstalledBaseForYear(year, s) * e.SupportHoursForYear(year, s) / e.cfg.Labor.FTEHoursPerYear
}

// Year1Cost is hardware plus build, first-year support and coordination labor.
func (e *Engine) Year1Cost(s Scenario) float64 {
	l := e.cfg.Labor
	hours := l.BuildHours + e.SupportHoursForYear(1, s) + l.CoordinationHours
	return e.cfg.Hardware.UnitCost + hours*l.HourlyRate
}

// Year2CostForYear is support labor plus the hardware reserve for one later year.
func (e *Engine) Year2CostForYear(year int, s Scenario) float64 {
	return e.SupportHoursForYear(year, s)*e.cfg.Labor.HourlyRate + e.HardwareReserve()
}

// Year2CostBlended averages the Year 2+ cost across the contract term.
func (e *Engine) Year2CostBlended(contractYears int, s Scenario) float64 {
	return blend(contractYears, func(year int) float64 {
		return e.Year2CostForYear(year, s)
	})
}

// AnnualOverhead is the fixed yearly overhead independent of volume.
func (e *Engine) AnnualOverhead() float64 {
	return e.cfg.Labor.FTESalary*e.cfg.Overhead.FTECount + e.cfg.Overhead.AdditionalFixed
}

// OverheadPerUnitForYear spreads the annual overhead across the installed base.
func (e *Engine) OverheadPerUnitForYear(year int, s Scenario) float64 {
	base := e.AvgInstalledBaseForYear(year, s)
	if base <= 0 {
		return 0
	}
	return e.AnnualOverhead() / base
}

// Year1OverheadContribution is the share of Year 1 overhead charged to a unit.
func (e *Engine) Year1OverheadContribution(s Scenario) float64 {
	return e.OverheadPerUnitForYear(1, s) * e.cfg.Pricing.Year1OverheadFactor
}

// OverheadBlended averages Year 2+ overhead per unit and, when enabled, credits
// part of the Year 1 surplus against it.
func (e *Engine) OverheadBlended(contractYears int, s Scenario) float64 {
	mean := blend(contractYears, func(year int) float64 {
		return e.OverheadPerUnitForYear(year, s)
	})
	return nonNegative(mean - e.OverheadCredit(contractYears, s))
}

// OverheadCredit is the per-year share of the Year 1 surplus applied to Year 2+
// overhead. Zero when the credit is disabled or there is no Year 2.
func (e *Engine) OverheadCredit(contractYears int, s Scenario) float64 {
	p := e.cfg.Pricing
	if !p.OverheadCredit || contractYears <= 1 {
		return 0
	}

	revenue := e.year1Revenue(s.WithContractYears(contractYears))
	surplus := nonNegative(revenue - e.Year1Cost(s) - e.Year1OverheadContribution(s))

	years := contractYears - 1
	if p.OverheadCreditCapYears > 0 && p.OverheadCreditCapYears < years {
		years = p.OverheadCreditCapYears
	}
	return surplus / float64(years)
}
