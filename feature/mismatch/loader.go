package mismatch

import (
	"fmt"
	"strings"

	"freight-reconciler/core/reconcile"
	"freight-reconciler/core/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Load reads the mismatch filing workbook. Every sheet is ingested in
// order, so the output keeps the reviewers' row order.
func Load(path string, log *zap.Logger) ([]reconcile.MismatchRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mismatch filing %s: %w", path, err)
	}
	defer f.Close()

	var mismatches []reconcile.MismatchRow

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, path, err)
		}

		headerIdx, cols := findColumns(rows)
		if headerIdx < 0 {
			log.Warn("Skipping sheet without mismatch columns",
				zap.String("path", path), zap.String("sheet", sheet))
			continue
		}

		for _, row := range rows[headerIdx+1:] {
			m := reconcile.MismatchRow{
				CostType:  strings.TrimSpace(cellAt(row, cols.costType)),
				ETOF:      strings.TrimSpace(cellAt(row, cols.etof)),
				Agreement: utils.NormalizeLane(cellAt(row, cols.agreement)),
				Comment:   strings.TrimSpace(cellAt(row, cols.comment)),
			}
			if m.CostType == "" && m.ETOF == "" {
				continue
			}

			mismatches = append(mismatches, m)
		}
	}

	if len(mismatches) == 0 {
		return nil, fmt.Errorf("no mismatch rows found in %s", path)
	}

	log.Info("Loaded mismatch filing", zap.String("path", path), zap.Int("rows", len(mismatches)))
	return mismatches, nil
}

type columnMap struct {
	costType  int
	etof      int
	agreement int
	comment   int
}

// findColumns locates the header row and resolves the mismatch columns.
// Cost type and ETOF are required; agreement and comment are optional.
func findColumns(rows [][]string) (int, columnMap) {
	for i, row := range rows {
		cols := columnMap{costType: -1, etof: -1, agreement: -1, comment: -1}
		for j, cell := range row {
			lower := strings.ToLower(strings.TrimSpace(cell))
			switch {
			case strings.Contains(lower, "cost"):
				if cols.costType < 0 {
					cols.costType = j
				}
			case strings.Contains(lower, "etof"):
				if cols.etof < 0 {
					cols.etof = j
				}
			case strings.Contains(lower, "agreement"):
				if cols.agreement < 0 {
					cols.agreement = j
				}
			case strings.Contains(lower, "comment"):
				if cols.comment < 0 {
					cols.comment = j
				}
			}
		}

		if cols.costType >= 0 && cols.etof >= 0 {
			return i, cols
		}
	}

	return -1, columnMap{}
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
