package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var columns = []string{
	"rate", "commit", "contract", "fleet",
	"year1Price", "year2Price", "contractPrice",
	"volumeDiscount", "contractDiscount", "discountY1", "discountY2",
	"year1Margin", "year2MarginWithOverhead", "contractMargin",
	"supportFTEs", "belowTarget",
}

// Columns returns the header written by WriteTSV.
func Columns() []string {
	return append([]string(nil), columns...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r Row) record() []string {
	return []string{
		formatFloat(r.Rate), formatFloat(r.Commit), strconv.Itoa(r.Contract), formatFloat(r.Fleet),
		formatFloat(r.Year1Price), formatFloat(r.Year2Price), formatFloat(r.ContractPrice),
		formatFloat(r.VolumeDiscount), formatFloat(r.ContractDiscount), formatFloat(r.DiscountY1), formatFloat(r.DiscountY2),
		formatFloat(r.Year1Margin), formatFloat(r.Year2MarginWithOverhead), formatFloat(r.ContractMargin),
		formatFloat(r.SupportFTEs), strconv.FormatBool(r.BelowTarget),
	}
}

// WriteTSV writes a header line and one tab-separated line per row.
func WriteTSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTSV parses a table written by WriteTSV. Columns are matched by header
// name, so extra columns are ignored and column order may differ.
func ReadTSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	pos := map[string]int{}
	for i, name := range header {
		pos[name] = i
	}
	for _, required := range []string{"rate", "commit", "contract", "year1Price", "year2Price", "contractPrice"} {
		if _, ok := pos[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p := fieldParser{rec: rec, pos: pos}
		row := Row{
			Rate:                    p.float("rate"),
			Commit:                  p.float("commit"),
			Contract:                int(p.float("contract")),
			Fleet:                   p.float("fleet"),
			Year1Price:              p.float("year1Price"),
			Year2Price:              p.float("year2Price"),
			ContractPrice:           p.float("contractPrice"),
			VolumeDiscount:          p.float("volumeDiscount"),
			ContractDiscount:        p.float("contractDiscount"),
			DiscountY1:              p.float("discountY1"),
			DiscountY2:              p.float("discountY2"),
			Year1Margin:             p.float("year1Margin"),
			Year2MarginWithOverhead: p.float("year2MarginWithOverhead"),
			ContractMargin:          p.float("contractMargin"),
			SupportFTEs:             p.float("supportFTEs"),
			BelowTarget:             p.bool("belowTarget"),
		}
		if p.err != nil {
			return nil, fmt.Errorf("line %d: %w", line, p.err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// fieldParser keeps the first parse error so a record can be decoded in one
// expression.
type fieldParser struct {
	rec []string
	pos map[string]int
	err error
}

func (p *fieldParser) value(name string) (string, bool) {
	i, ok := p.pos[name]
	if !ok || i >= len(p.rec) {
		return "", false
	}
	return p.rec[i], true
}

func (p *fieldParser) float(name string) float64 {
	raw, ok := p.value(name)
	if !ok || raw == "" || p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
	return v
}

func (p *fieldParser) bool(name string) bool {
	raw, ok := p.value(name)
	if !ok || raw == "" || p.err != nil {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
	return v
}
