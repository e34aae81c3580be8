package report

import (
	"fmt"
	"sort"
)

// Anomaly kinds.
const (
	KindPriceUpDiscountUp        = "price increased while discount increased"
	KindPriceUpLongerCommitment  = "price increased with longer commitment"
	KindLongerContractNotCheaper = "longer contract not cheaper per year"
)

// Thresholds hold the tolerances below which a move is ignored.
type Thresholds struct {
	PriceEps    float64
	DiscountEps float64
}

// Anomaly is one suspicious transition between two neighbouring grid rows.
type Anomaly struct {
	Kind  string
	Field string
	From  Row
	To    Row
	// Delta is the price change from From to To.
	Delta float64
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s: %s %s -> %s (%+.2f)", a.Kind, a.Field, a.From.key(), a.To.key(), a.Delta)
}

type priceField struct {
	name     string
	price    func(Row) float64
	discount func(Row) float64
}

var priceFields = []priceField{
	{"year1Price", func(r Row) float64 { return r.Year1Price }, func(r Row) float64 { return r.DiscountY1 }},
	{"year2Price", func(r Row) float64 { return r.Year2Price }, func(r Row) float64 { return r.DiscountY2 }},
}

// Detect walks the rows along each axis and returns every anomaly found.
//
// Along commitment a price rise is flagged as a discount conflict when the
// discount also rose, otherwise as a commitment regression. Along rate only the
// discount conflict is flagged. Across contract lengths the per-year contract
// price must fall.
func Detect(rows []Row, th Thresholds) []Anomaly {
	var out []Anomaly

	byCommit := group(rows, func(r Row) string {
		return fmt.Sprintf("%d|%g|%g", r.Contract, r.Fleet, r.Rate)
	}, func(r Row) float64 { return r.Commit })
	for _, series := range byCommit {
		for i := 1; i < len(series); i++ {
			prev, cur := series[i-1], series[i]
			for _, f := range priceFields {
				delta := f.price(cur) - f.price(prev)
				if delta <= th.PriceEps {
					continue
				}
				kind := KindPriceUpLongerCommitment
				if f.discount(cur)-f.discount(prev) > th.DiscountEps {
					kind = KindPriceUpDiscountUp
				}
				out = append(out, Anomaly{Kind: kind, Field: f.name, From: prev, To: cur, Delta: delta})
			}
		}
	}

	byRate := group(rows, func(r Row) string {
		return fmt.Sprintf("%d|%g|%g", r.Contract, r.Fleet, r.Commit)
	}, func(r Row) float64 { return r.Rate })
	for _, series := range byRate {
		for i := 1; i < len(series); i++ {
			prev, cur := series[i-1], series[i]
			for _, f := range priceFields {
				delta := f.price(cur) - f.price(prev)
				if delta > th.PriceEps && f.discount(cur)-f.discount(prev) > th.DiscountEps {
					out = append(out, Anomaly{Kind: KindPriceUpDiscountUp, Field: f.name, From: prev, To: cur, Delta: delta})
				}
			}
		}
	}

	byContract := group(rows, func(r Row) string {
		return fmt.Sprintf("%g|%g|%g", r.Fleet, r.Rate, r.Commit)
	}, func(r Row) float64 { return float64(r.Contract) })
	for _, series := range byContract {
		for i := 1; i < len(series); i++ {
			prev, cur := series[i-1], series[i]
			delta := cur.PerYear() - prev.PerYear()
			if delta > th.PriceEps {
				out = append(out, Anomaly{Kind: KindLongerContractNotCheaper, Field: "perYear", From: prev, To: cur, Delta: delta})
			}
		}
	}

	return out
}

// group splits rows by key and sorts each series by axis. Series come back in
// first-seen order so output is stable.
func group(rows []Row, key func(Row) string, axis func(Row) float64) [][]Row {
	index := map[string]int{}
	var out [][]Row
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], r)
	}
	for _, series := range out {
		sort.SliceStable(series, func(a, b int) bool { return axis(series[a]) < axis(series[b]) })
	}
	return out
}
