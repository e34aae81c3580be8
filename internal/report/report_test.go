package report

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/fleetprice/internal/pricing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func defaultEngine(t *testing.T) *pricing.Engine {
	t.Helper()
	engine, err := pricing.New(pricing.DefaultConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestSteps_DecimalIncrementLandsOnMax(t *testing.T) {
	got := steps(0.1, 0.5, 0.1)
	if len(got) != 5 {
		t.Fatalf("steps = %v, want 5 values", got)
	}
	nearlyEqual(t, "last", got[4], 0.5)

	if single := steps(3, 3, 0); len(single) != 1 || single[0] != 3 {
		t.Fatalf("single point range = %v", single)
	}
}

func TestGridValidate(t *testing.T) {
	negative := -1.0
	cases := []struct {
		name string
		grid Grid
	}{
		{"zero rate", Grid{RateMin: 0, RateMax: 10, RateStep: 1, CommitMin: 1, CommitMax: 1, Contracts: []int{1}}},
		{"inverted commit", Grid{RateMin: 1, RateMax: 1, CommitMin: 3, CommitMax: 1, CommitStep: 1, Contracts: []int{1}}},
		{"missing step", Grid{RateMin: 1, RateMax: 5, CommitMin: 1, CommitMax: 1, Contracts: []int{1}}},
		{"no contracts", Grid{RateMin: 1, RateMax: 1, CommitMin: 1, CommitMax: 1}},
		{"zero contract", Grid{RateMin: 1, RateMax: 1, CommitMin: 1, CommitMax: 1, Contracts: []int{0}}},
		{"negative fleet", Grid{RateMin: 1, RateMax: 1, CommitMin: 1, CommitMax: 1, Contracts: []int{1}, Fleet: &negative}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.grid.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestRun_OrdersAndPricesEveryPoint(t *testing.T) {
	engine := defaultEngine(t)
	grid := Grid{
		RateMin: 10, RateMax: 20, RateStep: 5,
		CommitMin: 1, CommitMax: 3, CommitStep: 1,
		Contracts: []int{10, 1, 5},
	}

	rows, err := Run(engine, grid)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 27 {
		t.Fatalf("expected 27 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Contract != 1 || first.Rate != 10 || first.Commit != 1 {
		t.Fatalf("first row = %+v, want contract 1 rate 10 commit 1", first)
	}
	if last := rows[len(rows)-1]; last.Contract != 10 || last.Rate != 20 || last.Commit != 3 {
		t.Fatalf("last row = %+v, want contract 10 rate 20 commit 3", last)
	}

	fleet := engine.Config().Fleet.ExistingUnits
	for _, r := range rows {
		if r.Fleet != fleet {
			t.Fatalf("row fleet = %v, want configured %v", r.Fleet, fleet)
		}
		nearlyEqual(t, "contract price", r.ContractPrice, r.Year1Price+float64(r.Contract-1)*r.Year2Price)
		if r.Year1Price <= 0 || r.Year2Price <= 0 {
			t.Fatalf("non-positive price in row %+v", r)
		}
	}
}

func TestRun_FleetOverride(t *testing.T) {
	fleet := 0.0
	rows, err := Run(defaultEngine(t), Grid{
		RateMin: 15, RateMax: 15, CommitMin: 3, CommitMax: 3, Contracts: []int{3}, Fleet: &fleet,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rows) != 1 || rows[0].Fleet != 0 {
		t.Fatalf("rows = %+v, want one row with fleet 0", rows)
	}
}

func TestRun_UnconfiguredContractFails(t *testing.T) {
	_, err := Run(defaultEngine(t), Grid{RateMin: 10, RateMax: 10, CommitMin: 1, CommitMax: 1, Contracts: []int{4}})
	if err == nil {
		t.Fatalf("expected error for unconfigured contract length")
	}
}

func row(contract int, rate, commit, y1, y2, dY1, dY2 float64) Row {
	return Row{
		Rate: rate, Commit: commit, Contract: contract, Fleet: 100,
		Year1Price: y1, Year2Price: y2,
		ContractPrice: y1 + float64(contract-1)*y2,
		DiscountY1:    dY1, DiscountY2: dY2,
	}
}

func TestDetect(t *testing.T) {
	th := Thresholds{PriceEps: 0.5, DiscountEps: 0.001}

	t.Run("clean curve", func(t *testing.T) {
		rows := []Row{
			row(3, 10, 1, 3000, 1200, 0.05, 0.10),
			row(3, 10, 2, 2980, 1180, 0.06, 0.11),
			row(5, 10, 1, 3000, 1100, 0.05, 0.12),
			row(5, 10, 2, 2980, 1080, 0.06, 0.13),
		}
		if got := Detect(rows, th); len(got) != 0 {
			t.Fatalf("expected no anomalies, got %v", got)
		}
	})

	t.Run("price up with discount up", func(t *testing.T) {
		rows := []Row{
			row(3, 10, 1, 3000, 1200, 0.05, 0.10),
			row(3, 10, 2, 3020, 1180, 0.06, 0.11),
		}
		got := Detect(rows, th)
		if len(got) != 1 {
			t.Fatalf("expected 1 anomaly, got %v", got)
		}
		if got[0].Kind != KindPriceUpDiscountUp || got[0].Field != "year1Price" {
			t.Fatalf("anomaly = %+v", got[0])
		}
		nearlyEqual(t, "delta", got[0].Delta, 20)
	})

	t.Run("price up with flat discount", func(t *testing.T) {
		rows := []Row{
			row(3, 10, 1, 3000, 1200, 0.05, 0.10),
			row(3, 10, 2, 3000, 1220, 0.05, 0.10),
		}
		got := Detect(rows, th)
		if len(got) != 1 || got[0].Kind != KindPriceUpLongerCommitment || got[0].Field != "year2Price" {
			t.Fatalf("anomalies = %v", got)
		}
	})

	t.Run("price up along rate", func(t *testing.T) {
		rows := []Row{
			row(3, 10, 1, 3000, 1200, 0.05, 0.10),
			row(3, 20, 1, 3000, 1240, 0.05, 0.14),
		}
		got := Detect(rows, th)
		if len(got) != 1 || got[0].Kind != KindPriceUpDiscountUp {
			t.Fatalf("anomalies = %v", got)
		}
	})

	t.Run("longer contract dearer per year", func(t *testing.T) {
		rows := []Row{
			row(3, 10, 1, 3000, 1000, 0.05, 0.10),
			row(5, 10, 1, 3000, 1600, 0.05, 0.10),
		}
		got := Detect(rows, th)
		if len(got) != 1 || got[0].Kind != KindLongerContractNotCheaper {
			t.Fatalf("anomalies = %v", got)
		}
		if !strings.Contains(got[0].String(), "contract=5") {
			t.Fatalf("anomaly string %q should name the longer contract", got[0].String())
		}
	})

	t.Run("moves inside epsilon are ignored", func(t *testing.T) {
		rows := []Row{
			row(3, 10, 1, 3000, 1200, 0.05, 0.10),
			row(3, 10, 2, 3000.4, 1200, 0.06, 0.10),
		}
		if got := Detect(rows, th); len(got) != 0 {
			t.Fatalf("expected no anomalies, got %v", got)
		}
	})
}

func TestDetect_DefaultConfigGridIsClean(t *testing.T) {
	rows, err := Run(defaultEngine(t), Grid{
		RateMin: 5, RateMax: 50, RateStep: 5,
		CommitMin: 1, CommitMax: 5, CommitStep: 1,
		Contracts: []int{3, 5, 10},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, a := range Detect(rows, Thresholds{PriceEps: 0.01, DiscountEps: 1e-9}) {
		if a.Kind == KindLongerContractNotCheaper {
			t.Fatalf("unexpected anomaly: %s", a)
		}
	}
}

func TestTSVRoundTrip(t *testing.T) {
	rows := []Row{
		row(3, 12.5, 2, 3000, 1100, 0.125, 0.3),
		{Rate: 20, Commit: 5, Contract: 10, Fleet: 0, Year1Price: 2980, Year2Price: 1060, ContractPrice: 12520, SupportFTEs: 1.25, BelowTarget: true},
	}

	var buf bytes.Buffer
	if err := WriteTSV(&buf, rows); err != nil {
		t.Fatalf("WriteTSV: %v", err)
	}
	header, _, _ := strings.Cut(buf.String(), "\n")
	if header != strings.Join(Columns(), "\t") {
		t.Fatalf("header = %q", header)
	}

	got, err := ReadTSV(&buf)
	if err != nil {
		t.Fatalf("ReadTSV: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Fatalf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

func TestReadTSV_MissingColumn(t *testing.T) {
	if _, err := ReadTSV(strings.NewReader("rate\tcommit\n1\t2\n")); err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestReadTSV_BadNumber(t *testing.T) {
	in := "rate\tcommit\tcontract\tyear1Price\tyear2Price\tcontractPrice\n1\t2\t3\tabc\t1\t1\n"
	if _, err := ReadTSV(strings.NewReader(in)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestDiff(t *testing.T) {
	baseline := []Row{
		row(3, 10, 1, 3000, 1200, 0, 0),
		row(3, 10, 2, 2980, 1180, 0, 0),
		row(5, 10, 1, 3000, 1100, 0, 0),
	}
	current := []Row{
		row(3, 10, 1, 3000, 1200.2, 0, 0),
		row(3, 10, 2, 3000, 1180, 0, 0),
		row(10, 10, 1, 3000, 1000, 0, 0),
	}

	changes := Diff(baseline, current, 0.5)

	var changed, added, removed []Change
	for _, c := range changes {
		switch c.Status {
		case StatusChanged:
			changed = append(changed, c)
		case StatusAdded:
			added = append(added, c)
		case StatusRemoved:
			removed = append(removed, c)
		}
	}

	// year1Price and contractPrice of the commit=2 row moved by 20.
	if len(changed) != 2 {
		t.Fatalf("expected 2 changed fields, got %v", changed)
	}
	if changed[0].Field != "year1Price" || changed[0].Baseline != 2980 || changed[0].Current != 3000 {
		t.Fatalf("first change = %+v", changed[0])
	}
	if len(added) != 1 || added[0].Row.Contract != 10 {
		t.Fatalf("added = %v", added)
	}
	if len(removed) != 1 || removed[0].Row.Contract != 5 {
		t.Fatalf("removed = %v", removed)
	}
}

func TestWriteXLSX(t *testing.T) {
	rows := []Row{
		row(3, 10, 1, 3000, 1200, 0.05, 0.1),
		row(3, 10, 2, 3020, 1180, 0.06, 0.11),
	}
	anomalies := Detect(rows, Thresholds{PriceEps: 0.5, DiscountEps: 0.001})
	path := filepath.Join(t.TempDir(), "grid.xlsx")

	if err := WriteXLSX(path, rows, anomalies); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	gridRows, err := f.GetRows(gridSheet)
	if err != nil {
		t.Fatalf("read grid sheet: %v", err)
	}
	if len(gridRows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(gridRows))
	}
	if gridRows[0][0] != "rate" || gridRows[2][4] != "3020" {
		t.Fatalf("unexpected grid contents: %v", gridRows)
	}

	anomalyRows, err := f.GetRows(anomalySheet)
	if err != nil {
		t.Fatalf("read anomaly sheet: %v", err)
	}
	if len(anomalyRows) != 2 || anomalyRows[1][0] != KindPriceUpDiscountUp {
		t.Fatalf("unexpected anomaly contents: %v", anomalyRows)
	}
}
