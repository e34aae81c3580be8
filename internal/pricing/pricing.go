// Package pricing computes per-unit contract prices, discounts and margins for
// hardware-plus-support contracts.
package pricing

import "math"

// Scenario holds the inputs of a single pricing query.
type Scenario struct {
	MonthlyRate   float64 `json:"monthlyRate"`
	CommitYears   float64 `json:"commitYears"`
	ContractYears int     `json:"contractYears"`
	// ExistingFleetUnits defaults to the configured fleet size when nil.
	ExistingFleetUnits *float64 `json:"existingFleetUnits,omitempty"`
}

// WithContractYears returns a copy of s priced for another contract length.
func (s Scenario) WithContractYears(years int) Scenario {
	s.ContractYears = years
	return s
}

// DiscountBreakdown lists every discount and list figure behind a quote.
type DiscountBreakdown struct {
	Volume        float64 `json:"volume"`
	VolumeY1      float64 `json:"volumeY1"`
	Contract      float64 `json:"contract"`
	TotalY1       float64 `json:"totalY1"`
	TotalY2       float64 `json:"totalY2"`
	TotalUnits    float64 `json:"totalUnits"`
	DiscountUnits float64 `json:"discountUnits"`
	OverheadY1    float64 `json:"overheadY1"`
	OverheadY2    float64 `json:"overheadY2"`
	ListY1        float64 `json:"listY1"`
	ListY2        float64 `json:"listY2"`
}

// Quote is the full engine output for one scenario.
type Quote struct {
	Scenario                Scenario          `json:"scenario"`
	Year1Price              float64           `json:"year1Price"`
	Year2Price              float64           `json:"year2Price"`
	ContractPrice           float64           `json:"contractPrice"`
	DiscountBreakdown       DiscountBreakdown `json:"discountBreakdown"`
	Year1Margin             float64           `json:"year1Margin"`
	Year2Margin             float64           `json:"year2Margin"`
	Year2MarginWithOverhead float64           `json:"year2MarginWithOverhead"`
	ContractMargin          float64           `json:"contractMargin"`
	MarginFloor             float64           `json:"marginFloor"`
	BelowTarget             bool              `json:"belowTarget"`
	Warnings                []string          `json:"warnings,omitempty"`
}

// Engine prices scenarios against one immutable configuration. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	cfg   Config
	tiers []Tier
	terms []int
}

// New validates cfg and returns an engine bound to a private copy of it.
func New(cfg Config) (*Engine, error) {
	if cfg.Discounts.Mode == "" {
		cfg.Discounts.Mode = ModeInterpolated
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clone()
	return &Engine{
		cfg:   cfg,
		tiers: normalizeTiers(cfg.Discounts.Tiers),
		terms: sortedTerms(cfg.ContractDiscounts),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg.clone()
}

// Terms returns the configured contract lengths in ascending order.
func (e *Engine) Terms() []int {
	return append([]int(nil), e.terms...)
}

// ValidateScenario rejects inputs the engine cannot price.
func (e *Engine) ValidateScenario(s Scenario) error {
	if !finite(s.MonthlyRate) || s.MonthlyRate <= 0 {
		return scenarioError("monthlyRate", "must be a positive number")
	}
	if !finite(s.CommitYears) || s.CommitYears <= 0 {
		return scenarioError("commitYears", "must be a positive number")
	}
	if _, ok := e.cfg.ContractDiscounts[s.ContractYears]; !ok {
		return scenarioError("contractYears", "%d is not a configured contract length", s.ContractYears)
	}
	if s.ExistingFleetUnits != nil && (!finite(*s.ExistingFleetUnits) || *s.ExistingFleetUnits < 0) {
		return scenarioError("existingFleetUnits", "must be zero or a positive number")
	}
	return nil
}

// Quote prices s. No partial result is returned on error.
func (e *Engine) Quote(s Scenario) (Quote, error) {
	if err := e.ValidateScenario(s); err != nil {
		return Quote{}, err
	}

	breakdown := e.Discounts(s)
	breakdown.OverheadY1 = e.Year1OverheadContribution(s)
	breakdown.OverheadY2 = e.OverheadBlended(s.ContractYears, s)
	breakdown.ListY1 = e.cfg.Pricing.Year1ListPrice
	breakdown.ListY2 = e.Year2ListPrice(s)

	q := Quote{
		Scenario:          s,
		Year1Price:        e.Year1Price(s),
		Year2Price:        e.Year2Price(s),
		ContractPrice:     e.ContractPrice(s),
		DiscountBreakdown: breakdown,
	}

	m, err := e.Margins(s)
	if err != nil {
		return Quote{}, err
	}
	q.Year1Margin = m.Year1
	q.Year2Margin = m.Year2
	q.Year2MarginWithOverhead = m.Year2WithOverhead
	q.ContractMargin = m.Contract
	q.MarginFloor = m.Floor
	q.BelowTarget = m.BelowTarget
	q.Warnings = m.warnings()

	return q, nil
}

// QuoteTerms prices s for every configured contract length.
func (e *Engine) QuoteTerms(s Scenario) ([]Quote, error) {
	quotes := make([]Quote, 0, len(e.terms))
	for _, years := range e.terms {
		q, err := e.Quote(s.WithContractYears(years))
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (e *Engine) fleet(s Scenario) float64 {
	if s.ExistingFleetUnits != nil {
		return *s.ExistingFleetUnits
	}
	return e.cfg.Fleet.ExistingUnits
}

// blend averages fn over contract years 2..max(2, contractYears).
func blend(contractYears int, fn func(year int) float64) float64 {
	last := max(2, contractYears)
	sum := 0.0
	for year := 2; year <= last; year++ {
		sum += fn(year)
	}
	return sum / float64(last-1)
}

func nonNegative(v float64) float64 {
	return math.Max(0, v)
}
