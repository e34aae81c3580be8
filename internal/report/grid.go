// Package report sweeps the pricing engine across a parameter grid and flags
// price curves that move the wrong way.
package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/fleetprice/internal/pricing"
)

// Grid describes the scenarios to sweep. Ranges are inclusive.
type Grid struct {
	RateMin, RateMax, RateStep       float64
	CommitMin, CommitMax, CommitStep float64
	Contracts                        []int
	// Fleet overrides the configured existing fleet when set.
	Fleet *float64
}

// maxPoints guards against a step that would produce an unbounded sweep.
const maxPoints = 100000

// Validate checks the ranges and the contract list.
func (g Grid) Validate() error {
	if err := checkRange("rate", g.RateMin, g.RateMax, g.RateStep); err != nil {
		return err
	}
	if err := checkRange("commit", g.CommitMin, g.CommitMax, g.CommitStep); err != nil {
		return err
	}
	if len(g.Contracts) == 0 {
		return errors.New("at least one contract length is required")
	}
	for _, c := range g.Contracts {
		if c < 1 {
			return fmt.Errorf("contract length %d must be at least 1", c)
		}
	}
	if g.Fleet != nil && *g.Fleet < 0 {
		return errors.New("fleet must not be negative")
	}
	return nil
}

func checkRange(name string, lo, hi, step float64) error {
	if lo <= 0 {
		return fmt.Errorf("%s-min must be greater than 0", name)
	}
	if hi < lo {
		return fmt.Errorf("%s-max must not be below %s-min", name, name)
	}
	if hi > lo && step <= 0 {
		return fmt.Errorf("%s-step must be greater than 0", name)
	}
	return nil
}

// steps lists lo, lo+step, ... up to hi. Values are built in decimal so a step
// like 0.1 lands exactly on hi.
func steps(lo, hi, step float64) []float64 {
	if hi == lo || step <= 0 {
		return []float64{lo}
	}
	start := decimal.NewFromFloat(lo)
	end := decimal.NewFromFloat(hi)
	inc := decimal.NewFromFloat(step)

	var out []float64
	for i := int64(0); len(out) < maxPoints; i++ {
		v := start.Add(inc.Mul(decimal.NewFromInt(i)))
		if v.GreaterThan(end) {
			break
		}
		f, _ := v.Float64()
		out = append(out, f)
	}
	return out
}

// Scenarios expands the grid ordered by contract, then rate, then commitment.
func (g Grid) Scenarios() []pricing.Scenario {
	contracts := append([]int(nil), g.Contracts...)
	sort.Ints(contracts)

	rates := steps(g.RateMin, g.RateMax, g.RateStep)
	commits := steps(g.CommitMin, g.CommitMax, g.CommitStep)

	out := make([]pricing.Scenario, 0, len(contracts)*len(rates)*len(commits))
	for _, cy := range contracts {
		for _, rate := range rates {
			for _, commit := range commits {
				s := pricing.Scenario{MonthlyRate: rate, CommitYears: commit, ContractYears: cy}
				if g.Fleet != nil {
					fleet := *g.Fleet
					s.ExistingFleetUnits = &fleet
				}
				out = append(out, s)
			}
		}
	}
	return out
}

// Row is one priced grid point.
type Row struct {
	Rate     float64
	Commit   float64
	Contract int
	Fleet    float64

	Year1Price    float64
	Year2Price    float64
	ContractPrice float64

	VolumeDiscount   float64
	ContractDiscount float64
	DiscountY1       float64
	DiscountY2       float64

	Year1Margin             float64
	Year2MarginWithOverhead float64
	ContractMargin          float64
	SupportFTEs             float64
	BelowTarget             bool
}

// PerYear is the contract price spread evenly over the contract.
func (r Row) PerYear() float64 {
	if r.Contract <= 0 {
		return 0
	}
	return r.ContractPrice / float64(r.Contract)
}

type rowKey struct {
	rate, commit float64
	contract     int
	fleet        float64
}

func (r Row) key() rowKey {
	return rowKey{rate: r.Rate, commit: r.Commit, contract: r.Contract, fleet: r.Fleet}
}

func (k rowKey) String() string {
	return fmt.Sprintf("rate=%g commit=%g contract=%d fleet=%g", k.rate, k.commit, k.contract, k.fleet)
}

// Run prices every grid point. Any engine error stops the sweep.
func Run(engine *pricing.Engine, g Grid) ([]Row, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	fleetDefault := engine.Config().Fleet.ExistingUnits

	scenarios := g.Scenarios()
	rows := make([]Row, 0, len(scenarios))
	for _, s := range scenarios {
		q, err := engine.Quote(s)
		if err != nil {
			return nil, fmt.Errorf("price rate=%g commit=%g contract=%d: %w", s.MonthlyRate, s.CommitYears, s.ContractYears, err)
		}

		fleet := fleetDefault
		if s.ExistingFleetUnits != nil {
			fleet = *s.ExistingFleetUnits
		}
		rows = append(rows, Row{
			Rate:                    s.MonthlyRate,
			Commit:                  s.CommitYears,
			Contract:                s.ContractYears,
			Fleet:                   fleet,
			Year1Price:              q.Year1Price,
			Year2Price:              q.Year2Price,
			ContractPrice:           q.ContractPrice,
			VolumeDiscount:          q.DiscountBreakdown.Volume,
			ContractDiscount:        q.DiscountBreakdown.Contract,
			DiscountY1:              q.DiscountBreakdown.TotalY1,
			DiscountY2:              q.DiscountBreakdown.TotalY2,
			Year1Margin:             q.Year1Margin,
			Year2MarginWithOverhead: q.Year2MarginWithOverhead,
			ContractMargin:          q.ContractMargin,
			SupportFTEs:             engine.SupportFTEsForYear(2, s),
			BelowTarget:             q.BelowTarget,
		})
	}
	return rows, nil
}
