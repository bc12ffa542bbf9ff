package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tally/internal/report"
)

var sheetNames = map[report.Period]string{
	report.RecentMonth: "Recent month",
	report.AvgMonthly:  "Avg monthly",
	report.RecentYear:  "Recent year",
}

// XLSX renders a workbook with one sheet per period. Each section takes a
// rank, label and amount column block, side by side; amounts carry the same
// display text as the other renderers.
type XLSX struct{}

func (XLSX) Render(w io.Writer, r report.SpendingReport) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	right, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Horizontal: "right"}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	for i, pv := range periodViews(r) {
		name := sheetNames[pv.period]
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("name sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := writePeriodSheet(f, name, pv, bold, right); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writePeriodSheet(f *excelize.File, sheet string, pv periodView, bold, right int) error {
	if err := f.SetCellValue(sheet, "A1", pv.title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}

	for s, sec := range sections(pv, DescriptionBudget, MerchantBudget) {
		rankCol, labelCol, amountCol := 4*s+1, 4*s+2, 4*s+3

		if err := setCell(f, sheet, labelCol, 3, sec.title, bold); err != nil {
			return err
		}
		if len(sec.lines) == 0 {
			if err := setCell(f, sheet, labelCol, 4, "(none)", 0); err != nil {
				return err
			}
		}
		for i, l := range sec.lines {
			row := 4 + i
			if err := setCell(f, sheet, rankCol, row, i+1, 0); err != nil {
				return err
			}
			if err := setCell(f, sheet, labelCol, row, l.label, 0); err != nil {
				return err
			}
			if err := setCell(f, sheet, amountCol, row, l.amount, right); err != nil {
				return err
			}
		}

		label, err := excelize.ColumnNumberToName(labelCol)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, label, label, 48); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return err
	}
	if style != 0 {
		return f.SetCellStyle(sheet, cell, cell, style)
	}
	return nil
}
