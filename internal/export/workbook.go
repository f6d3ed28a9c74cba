package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"salesmart/internal/aggregate"
)

// WorkbookFile is the Excel artifact name.
const WorkbookFile = "analysis.xlsx"

// WriteWorkbook writes one sheet per analysis table into a single
// workbook. Sheet names are the table names; cell layout mirrors the CSV
// exports with native number cells instead of formatted strings.
func WriteWorkbook(path string, tables []*aggregate.Table) error {
	wb := excelize.NewFile()
	defer wb.Close()

	for i, t := range tables {
		sheet := t.Name
		if i == 0 {
			// Rename the default sheet instead of leaving it empty.
			if err := wb.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else {
			if _, err := wb.NewSheet(sheet); err != nil {
				return err
			}
		}
		if err := writeSheet(wb, sheet, t); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	return wb.SaveAs(path)
}

func writeSheet(wb *excelize.File, sheet string, t *aggregate.Table) error {
	hasLabel := tableHasLabel(t)

	header := []any{t.KeyColumn}
	if hasLabel {
		header = append(header, t.KeyColumn+"_name")
	}
	header = append(header, "total_revenue", "transaction_count", "average_ticket")
	if t.HasShare {
		header = append(header, "revenue_share_pct")
	}
	if t.HasGrowth {
		header = append(header, "growth_rate")
	}
	if t.HasRank {
		header = append(header, "rank")
	}
	if err := setRow(wb, sheet, 1, header); err != nil {
		return err
	}

	for i, g := range t.Groups {
		row := []any{g.Key}
		if hasLabel {
			row = append(row, g.Label)
		}
		row = append(row, g.TotalRevenue, g.TransactionCount, g.AverageTicket)
		if t.HasShare {
			row = append(row, g.Share)
		}
		if t.HasGrowth {
			if g.GrowthRate == nil {
				row = append(row, nil)
			} else {
				row = append(row, *g.GrowthRate)
			}
		}
		if t.HasRank {
			row = append(row, g.Rank)
		}
		if err := setRow(wb, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(wb *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return wb.SetSheetRow(sheet, cell, &values)
}
