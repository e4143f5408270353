package mismatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"freight-reconciler/core/reconcile"

	"github.com/xuri/excelize/v2"
)

const noAgreementSheet = "No Agreement"

// resultHeader is the column layout of every output sheet.
var resultHeader = []any{"Cost Type", "ETOF", "Agreement", "Comment", "Rate By", "Applies If", "Reason"}

// Write saves reconciliation results as a workbook with one tab per
// agreement, in first-seen order. Rows without an agreement land on the
// "No Agreement" tab.
func Write(path string, rows []reconcile.MismatchRow, results []reconcile.RowResult) error {
	if len(rows) != len(results) {
		return fmt.Errorf("row and result counts differ: %d vs %d", len(rows), len(results))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetRows := make(map[string]int)
	var order []string

	for i, row := range rows {
		sheet := sheetName(row.Agreement)

		next, seen := sheetRows[sheet]
		if !seen {
			if len(order) == 0 {
				if err := f.SetSheetName("Sheet1", sheet); err != nil {
					return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
				}
			} else if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
			}

			if err := f.SetSheetRow(sheet, "A1", &resultHeader); err != nil {
				return fmt.Errorf("failed to write header of sheet %s: %w", sheet, err)
			}

			order = append(order, sheet)
			next = 2
		}

		cells := []any{
			row.CostType, row.ETOF, row.Agreement, row.Comment,
			results[i].RateBy, results[i].AppliesIf, results[i].Reason,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", next), &cells); err != nil {
			return fmt.Errorf("failed to write row to sheet %s: %w", sheet, err)
		}
		sheetRows[sheet] = next + 1
	}

	if len(order) == 0 {
		return fmt.Errorf("no rows to write")
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save results to %s: %w", path, err)
	}

	return nil
}

// sheetName derives a valid sheet name from an agreement number. Sheet
// names are capped at 31 characters and may not contain the characters
// excel reserves.
func sheetName(agreement string) string {
	name := strings.TrimSpace(agreement)
	if name == "" {
		return noAgreementSheet
	}

	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_", "'", "_")
	name = replacer.Replace(name)

	if len(name) > 31 {
		name = name[:31]
	}

	return name
}
