package pricing

// Margins holds margin ratios for one scenario.
type Margins struct {
	Year1             float64
	Year2             float64
	Year2WithOverhead float64
	Contract          float64
	// Floor is the margin the cost-plus markup yields at the baseline term.
	Floor       float64
	BelowTarget bool
}

// marginTolerance absorbs float noise when comparing against the floor.
const marginTolerance = 1e-9

func margin(field string, price, cost float64) (float64, error) {
	if !(price > 0) {
		return 0, &Error{Kind: KindMargin, Field: field, Message: "price must be positive to compute a margin"}
	}
	return (price - cost) / price, nil
}

// MarginFloor converts the target markup into the margin it guarantees.
func (e *Engine) MarginFloor() float64 {
	m := e.cfg.Pricing.TargetMargin
	return m / (1 + m)
}

// Margins recomputes price minus fully loaded cost for s.
func (e *Engine) Margins(s Scenario) (Margins, error) {
	cy := s.ContractYears

	y1Price := e.Year1Price(s)
	y1Cost := e.Year1Cost(s)
	y1Overhead := e.Year1OverheadContribution(s)

	y2Price := e.Year2Price(s)
	y2Cost := e.Year2CostBlended(cy, s)
	y2Overhead := e.OverheadBlended(cy, s)

	var (
		m   Margins
		err error
	)
	if m.Year1, err = margin("year1Price", y1Price, y1Cost+y1Overhead); err != nil {
		return Margins{}, err
	}
	if m.Year2, err = margin("year2Price", y2Price, y2Cost); err != nil {
		return Margins{}, err
	}
	if m.Year2WithOverhead, err = margin("year2Price", y2Price, y2Cost+y2Overhead); err != nil {
		return Margins{}, err
	}

	laterYears := float64(max(0, cy-1))
	contractCost := y1Cost + y1Overhead + laterYears*(y2Cost+y2Overhead)
	if m.Contract, err = margin("contractPrice", y1Price+y2Price*laterYears, contractCost); err != nil {
		return Margins{}, err
	}

	m.Floor = e.MarginFloor()
	m.BelowTarget = m.Year2WithOverhead < m.Floor-marginTolerance
	return m, nil
}

func (m Margins) warnings() []string {
	var out []string
	if m.Year1 < 0 {
		out = append(out, "year 1 margin is negative")
	}
	if m.Year2WithOverhead < 0 {
		out = append(out, "year 2+ margin including overhead is negative")
	} else if m.BelowTarget {
		out = append(out, "year 2+ margin including overhead is below target")
	}
	if m.Contract < 0 {
		out = append(out, "contract margin is negative")
	}
	return out
}
