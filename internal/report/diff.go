package report

import (
	"fmt"
	"math"
)

// Change statuses.
const (
	StatusChanged = "changed"
	StatusAdded   = "added"
	StatusRemoved = "removed"
)

// Change is a grid point whose price moved against the baseline, or that exists
// on only one side.
type Change struct {
	Status   string
	Field    string
	Row      Row
	Baseline float64
	Current  float64
}

func (c Change) String() string {
	switch c.Status {
	case StatusAdded, StatusRemoved:
		return fmt.Sprintf("%s: %s", c.Status, c.Row.key())
	}
	return fmt.Sprintf("%s: %s %s %s -> %s", c.Status, c.Row.key(), c.Field, formatFloat(c.Baseline), formatFloat(c.Current))
}

// Diff compares current against baseline by grid point and reports every price
// that moved by more than priceEps.
func Diff(baseline, current []Row, priceEps float64) []Change {
	old := make(map[rowKey]Row, len(baseline))
	for _, r := range baseline {
		old[r.key()] = r
	}

	var out []Change
	seen := make(map[rowKey]bool, len(current))
	for _, cur := range current {
		k := cur.key()
		seen[k] = true
		prev, ok := old[k]
		if !ok {
			out = append(out, Change{Status: StatusAdded, Row: cur})
			continue
		}
		for _, f := range []struct {
			name          string
			before, after float64
		}{
			{"year1Price", prev.Year1Price, cur.Year1Price},
			{"year2Price", prev.Year2Price, cur.Year2Price},
			{"contractPrice", prev.ContractPrice, cur.ContractPrice},
		} {
			if math.Abs(f.after-f.before) > priceEps {
				out = append(out, Change{Status: StatusChanged, Field: f.name, Row: cur, Baseline: f.before, Current: f.after})
			}
		}
	}
	for _, r := range baseline {
		if !seen[r.key()] {
			out = append(out, Change{Status: StatusRemoved, Row: r})
		}
	}
	return out
}
