package pricing

import "math"

// Year1BasePrice is the Year 1 list price after the Year 1 discount, rounded up.
func (e *Engine) Year1BasePrice(s Scenario) float64 {
	d := e.Discounts(s)
	return e.roundUp(e.cfg.Pricing.Year1ListPrice * (1 - d.TotalY1))
}

// Year1Shift returns the part of the Year 1 base price deferred into Year 2+
// and its per-year share. Both are zero for single-year contracts.
func (e *Engine) Year1Shift(s Scenario) (amount, perYear float64) {
	factor := e.cfg.Pricing.Year1ShiftFactor
	if s.ContractYears <= 1 || factor <= 0 {
		return 0, 0
	}
	amount = e.Year1BasePrice(s) * factor
	return amount, amount / float64(s.ContractYears-1)
}

// year1Revenue is Year 1 hardware and support revenue, excluding license fees.
func (e *Engine) year1Revenue(s Scenario) float64 {
	shift, _ := e.Year1Shift(s)
	return e.Year1BasePrice(s) - shift
}

func (e *Engine) year1License() float64 {
	l := e.cfg.Licensing
	return l.Year1Price * (1 - l.Year1Discount)
}

func (e *Engine) year2License() float64 {
	l := e.cfg.Licensing
	return l.Year2Price * (1 - l.Year2Discount)
}

// Year1Price is the final Year 1 per-unit price.
func (e *Engine) Year1Price(s Scenario) float64 {
	return e.roundUp(e.year1Revenue(s) + e.year1License())
}

// Year2ListPrice is the undiscounted Year 2+ price. Unless a fixed list price is
// configured it is cost-plus at the baseline term, grossed up by that term's
// contract discount so the steepest tier still earns the target margin.
func (e *Engine) Year2ListPrice(s Scenario) float64 {
	p := e.cfg.Pricing
	if p.Year2ListPrice > 0 {
		return p.Year2ListPrice
	}

	baseline := p.BaselineContractYears
	minNet := (e.Year2CostBlended(baseline, s) + e.OverheadBlended(baseline, s)) * (1 + p.TargetMargin)
	// Validate guarantees the baseline discount is below 1.
	return minNet / (1 - e.ContractDiscount(baseline))
}

// Year2PriceRaw is the Year 2+ price before minimum-gap enforcement.
func (e *Engine) Year2PriceRaw(s Scenario) float64 {
	d := e.Discounts(s)
	_, shiftPerYear := e.Year1Shift(s)
	net := e.roundUp(e.Year2ListPrice(s) * (1 - d.TotalY2))
	return e.roundUp(net + e.year2License() + shiftPerYear)
}

// Year2Price is the final Year 2+ per-unit annual price.
func (e *Engine) Year2Price(s Scenario) float64 {
	if e.cfg.Pricing.MinGapPerYear <= 0 || s.ContractYears <= 1 {
		return e.Year2PriceRaw(s)
	}
	if price, ok := e.GapAdjustedPrices(s)[s.ContractYears]; ok {
		return price
	}
	return e.Year2PriceRaw(s)
}

// GapAdjustedPrices returns Year 2+ prices for every configured term longer
// than one year, each at least MinGapPerYear above the next longer term.
func (e *Engine) GapAdjustedPrices(s Scenario) map[int]float64 {
	gap := e.cfg.Pricing.MinGapPerYear
	prices := make(map[int]float64, len(e.terms))

	next, haveNext := 0.0, false
	for i := len(e.terms) - 1; i >= 0; i-- {
		years := e.terms[i]
		if years <= 1 {
			break
		}
		price := e.Year2PriceRaw(s.WithContractYears(years))
		if haveNext && gap > 0 {
			price = math.Max(price, e.roundUp(next+gap))
		}
		prices[years] = price
		next, haveNext = price, true
	}
	return prices
}

// ContractPrice is the total per-unit price over the whole contract.
func (e *Engine) ContractPrice(s Scenario) float64 {
	laterYears := math.Max(0, float64(s.ContractYears-1))
	return e.Year1Price(s) + e.Year2Price(s)*laterYears
}
