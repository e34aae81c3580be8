package pricing

import (
	"reflect"
	"testing"
)

func tierConfig(mode DiscountMode, tiers ...Tier) Config {
	cfg := twoLayerConfig()
	cfg.Discounts.Mode = mode
	cfg.Discounts.Tiers = tiers
	return cfg
}

func TestNormalizeTiers(t *testing.T) {
	got := normalizeTiers([]Tier{
		{MinUnits: 600, Discount: 0.05},
		{MinUnits: 300, Discount: 0.10},
		{MinUnits: 300, Discount: 0.02},
		{MinUnits: 900, Discount: 1.5},
	})
	want := []Tier{
		{MinUnits: 0, Discount: 0},
		{MinUnits: 300, Discount: 0.10},
		{MinUnits: 600, Discount: 0.10},
		{MinUnits: 900, Discount: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("normalizeTiers = %+v, want %+v", got, want)
	}
}

func TestVolumeDiscount_Interpolated(t *testing.T) {
	e := newEngine(t, tierConfig(ModeInterpolated,
		Tier{MinUnits: 300, Discount: 0.05},
		Tier{MinUnits: 600, Discount: 0.10},
	))

	tests := []struct {
		units float64
		want  float64
	}{
		{0, 0},
		{150, 0.025},
		{300, 0.05},
		{450, 0.075},
		{600, 0.10},
		{5000, 0.10},
	}
	for _, tt := range tests {
		nearlyEqual(t, "VolumeDiscount", e.VolumeDiscount(tt.units), tt.want)
	}
}

func TestVolumeDiscount_Tiered(t *testing.T) {
	e := newEngine(t, tierConfig(ModeTiered,
		Tier{MinUnits: 300, Discount: 0.05},
		Tier{MinUnits: 600, Discount: 0.10},
	))

	tests := []struct {
		units float64
		want  float64
	}{
		{0, 0},
		{299, 0},
		{300, 0.05},
		{599, 0.05},
		{600, 0.10},
		{5000, 0.10},
	}
	for _, tt := range tests {
		nearlyEqual(t, "VolumeDiscount", e.VolumeDiscount(tt.units), tt.want)
	}
}

func TestVolumeDiscount_EaseOut(t *testing.T) {
	e := newEngine(t, tierConfig(ModeEaseOut, Tier{MinUnits: 1000, Discount: 0.2}))

	nearlyEqual(t, "zero", e.VolumeDiscount(0), 0)
	nearlyEqual(t, "half", e.VolumeDiscount(500), 0.15)
	nearlyEqual(t, "top", e.VolumeDiscount(1000), 0.2)
	nearlyEqual(t, "beyond", e.VolumeDiscount(4000), 0.2)
}

func TestVolumeDiscount_MonotoneAndBounded(t *testing.T) {
	tiers := []Tier{
		{MinUnits: 1200, Discount: 0.20},
		{MinUnits: 300, Discount: 0.05},
		{MinUnits: 2400, Discount: 0.25},
		{MinUnits: 600, Discount: 0.03},
	}
	for _, mode := range []DiscountMode{ModeInterpolated, ModeTiered, ModeEaseOut} {
		t.Run(string(mode), func(t *testing.T) {
			e := newEngine(t, tierConfig(mode, tiers...))
			prev := 0.0
			for units := 0.0; units <= 4000; units += 7 {
				d := e.VolumeDiscount(units)
				if d < prev-1e-12 {
					t.Fatalf("discount dropped at %v units: %v < %v", units, d, prev)
				}
				if d < 0 || d > 0.25 {
					t.Fatalf("discount %v at %v units outside [0, 0.25]", d, units)
				}
				prev = d
			}
		})
	}
}

func TestContractDiscount_MatchesTable(t *testing.T) {
	cfg := DefaultConfig()
	e := newEngine(t, cfg)

	for years, want := range cfg.ContractDiscounts {
		nearlyEqual(t, "ContractDiscount", e.ContractDiscount(years), want)
	}
	nearlyEqual(t, "unconfigured", e.ContractDiscount(4), 0)
}

func TestDiscountBasisUnits_BlendsRateAndCommitment(t *testing.T) {
	cfg := DefaultConfig()
	s := Scenario{MonthlyRate: 10, CommitYears: 3, ContractYears: 3}

	for _, tt := range []struct {
		weight float64
		want   float64
	}{
		{0, 120},
		{0.5, 240},
		{1, 360},
	} {
		cfg.Discounts.CommitmentWeight = tt.weight
		e := newEngine(t, cfg)
		nearlyEqual(t, "DiscountBasisUnits", e.DiscountBasisUnits(s), tt.want)
		nearlyEqual(t, "TotalCommitment", e.TotalCommitment(s), 360)
	}
}

func TestDiscounts_CapsTotals(t *testing.T) {
	cfg := twoLayerConfig()
	cfg.Discounts.MaxTotal = 0.2
	e := newEngine(t, cfg)

	d := e.Discounts(Scenario{MonthlyRate: 20, CommitYears: 5, ContractYears: 5})
	nearlyEqual(t, "totalY1", d.TotalY1, 0.175)
	nearlyEqual(t, "totalY2", d.TotalY2, 0.2)
}
