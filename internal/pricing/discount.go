package pricing

import (
	"math"
	"sort"
)

// TotalCommitment is the number of units ordered over the commitment period.
func (e *Engine) TotalCommitment(s Scenario) float64 {
	return s.MonthlyRate * 12 * s.CommitYears
}

// DiscountBasisUnits blends the annual run rate with the total commitment.
func (e *Engine) DiscountBasisUnits(s Scenario) float64 {
	annual := s.MonthlyRate * 12
	w := e.cfg.Discounts.CommitmentWeight
	return annual*(1-w) + annual*s.CommitYears*w
}

// normalizeTiers dedupes thresholds, adds the implicit zero point, sorts the
// tiers and makes the discount non-decreasing.
func normalizeTiers(in []Tier) []Tier {
	byUnits := map[float64]float64{0: 0}
	for _, t := range in {
		d := clamp01(t.Discount)
		if cur, ok := byUnits[t.MinUnits]; !ok || d > cur {
			byUnits[t.MinUnits] = d
		}
	}

	tiers := make([]Tier, 0, len(byUnits))
	for units, d := range byUnits {
		tiers = append(tiers, Tier{MinUnits: units, Discount: d})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinUnits < tiers[j].MinUnits })

	for i := 1; i < len(tiers); i++ {
		tiers[i].Discount = math.Max(tiers[i].Discount, tiers[i-1].Discount)
	}
	return tiers
}

// VolumeDiscount maps a unit count onto the configured discount curve.
func (e *Engine) VolumeDiscount(units float64) float64 {
	switch e.cfg.Discounts.Mode {
	case ModeTiered:
		return clamp01(e.steppedDiscount(units))
	case ModeEaseOut:
		return clamp01(e.easeOutDiscount(units))
	default:
		return clamp01(e.interpolatedDiscount(units))
	}
}

func (e *Engine) interpolatedDiscount(units float64) float64 {
	tiers := e.tiers
	if units <= tiers[0].MinUnits {
		return tiers[0].Discount
	}
	for i := 1; i < len(tiers); i++ {
		lower, upper := tiers[i-1], tiers[i]
		if units > upper.MinUnits {
			continue
		}
		span := upper.MinUnits - lower.MinUnits
		if span <= 0 {
			return upper.Discount
		}
		return lower.Discount + (upper.Discount-lower.Discount)*(units-lower.MinUnits)/span
	}
	return tiers[len(tiers)-1].Discount
}

func (e *Engine) steppedDiscount(units float64) float64 {
	d := 0.0
	for _, t := range e.tiers {
		if units < t.MinUnits {
			break
		}
		d = t.Discount
	}
	return d
}

func (e *Engine) easeOutDiscount(units float64) float64 {
	top := e.tiers[len(e.tiers)-1]
	if top.MinUnits <= 0 {
		return top.Discount
	}
	t := clamp01(units / top.MinUnits)
	return top.Discount * (1 - (1-t)*(1-t))
}

// ContractDiscount looks up the flat discount for a contract length. Unknown
// lengths yield 0; Quote rejects them before they get here.
func (e *Engine) ContractDiscount(contractYears int) float64 {
	return clamp01(e.cfg.ContractDiscounts[contractYears])
}

func (e *Engine) capDiscount(total float64) float64 {
	if limit := e.cfg.Discounts.MaxTotal; limit > 0 {
		total = math.Min(total, limit)
	}
	return clamp01(total)
}

// Discounts computes the discount half of the breakdown for s.
func (e *Engine) Discounts(s Scenario) DiscountBreakdown {
	units := e.DiscountBasisUnits(s)
	volume := e.VolumeDiscount(units)
	volumeY1 := clamp01(volume * e.cfg.Discounts.Year1Scale)
	contract := e.ContractDiscount(s.ContractYears)

	totalY1 := volumeY1
	if e.cfg.Pricing.Year1ContractDiscount {
		totalY1 += contract
	}

	return DiscountBreakdown{
		Volume:        volume,
		VolumeY1:      volumeY1,
		Contract:      contract,
		TotalY1:       e.capDiscount(totalY1),
		TotalY2:       e.capDiscount(volume + contract),
		TotalUnits:    e.TotalCommitment(s),
		DiscountUnits: units,
	}
}
