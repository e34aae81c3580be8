package pricing

import "github.com/shopspring/decimal"

// pricePrecision drops float noise from amounts when no increment is set.
const pricePrecision = 6

// snapTolerance is how far above a multiple, in increments, an amount may sit
// and still count as that multiple.
var snapTolerance = decimal.New(1, -9)

// RoundUp rounds amount up to the next multiple of increment. An amount within
// snapTolerance increments of a multiple is float noise and snaps to that
// multiple, so 1050.0000000000002 stays 1050 while 1000.0000004 becomes 1050.
// The result is never more than increment*1e-9 below amount. A non-positive
// increment only trims the amount to pricePrecision places.
func RoundUp(amount, increment float64) float64 {
	v := decimal.NewFromFloat(amount)
	if increment <= 0 {
		return v.Round(pricePrecision).InexactFloat64()
	}
	step := decimal.NewFromFloat(increment)
	q := v.Div(step)
	if nearest := q.Round(0); q.Sub(nearest).Abs().LessThanOrEqual(snapTolerance) {
		return nearest.Mul(step).InexactFloat64()
	}
	return q.Ceil().Mul(step).InexactFloat64()
}

func (e *Engine) roundUp(amount float64) float64 {
	return RoundUp(amount, e.cfg.Pricing.RoundingIncrement)
}
