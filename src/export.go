package src

import (
	"math"

	"github.com/xuri/excelize/v2"
)

func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// ExportWorkbook writes per-seed metrics to sheet "runs" and the summary to
// sheet "summary". NaN metrics become empty cells.
func ExportWorkbook(path string, runs []SeedResult, summary []MetricSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "runs"); err != nil {
		return err
	}
	header := []interface{}{"seed", "run_id", "partition"}
	for _, name := range MetricNames {
		header = append(header, name)
	}
	if err := writeRow(f, "runs", 1, header); err != nil {
		return err
	}
	row := 2
	for _, r := range runs {
		for _, p := range r.Results {
			values := []interface{}{r.Seed, r.RunID, p.Label}
			for _, v := range p.Metrics.Values() {
				values = append(values, cellValue(v))
			}
			if err := writeRow(f, "runs", row, values); err != nil {
				return err
			}
			row++
		}
	}

	if _, err := f.NewSheet("summary"); err != nil {
		return err
	}
	if err := writeRow(f, "summary", 1, []interface{}{"partition", "metric", "n", "mean", "std"}); err != nil {
		return err
	}
	for i, s := range summary {
		values := []interface{}{s.Partition, s.Metric, s.N, cellValue(s.Mean), cellValue(s.Std)}
		if err := writeRow(f, "summary", i+2, values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
