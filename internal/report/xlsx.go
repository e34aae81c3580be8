package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	gridSheet    = "Grid"
	anomalySheet = "Anomalies"
)

// WriteXLSX saves the grid and its anomalies as a two-sheet workbook.
func WriteXLSX(path string, rows []Row, anomalies []Anomaly) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", gridSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(anomalySheet); err != nil {
		return fmt.Errorf("create anomaly sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := writeRow(f, gridSheet, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{
			r.Rate, r.Commit, r.Contract, r.Fleet,
			r.Year1Price, r.Year2Price, r.ContractPrice,
			r.VolumeDiscount, r.ContractDiscount, r.DiscountY1, r.DiscountY2,
			r.Year1Margin, r.Year2MarginWithOverhead, r.ContractMargin,
			r.SupportFTEs, r.BelowTarget,
		}
		if err := writeRow(f, gridSheet, i+2, values); err != nil {
			return err
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(gridSheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style grid header: %w", err)
	}

	if err := writeRow(f, anomalySheet, 1, []interface{}{"kind", "field", "from", "to", "delta"}); err != nil {
		return err
	}
	for i, a := range anomalies {
		values := []interface{}{a.Kind, a.Field, a.From.key().String(), a.To.key().String(), a.Delta}
		if err := writeRow(f, anomalySheet, i+2, values); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(anomalySheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("style anomaly header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
