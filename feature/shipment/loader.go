package shipment

import (
	"fmt"
	"strings"

	"freight-reconciler/core/reconcile"
	"freight-reconciler/core/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Load reads the joined LC/ETOF workbook into a shipment index. Every
// sheet is ingested; a row's ETOF is its key and the first occurrence of
// an ETOF wins across sheets.
func Load(path string, log *zap.Logger) (*reconcile.ShipmentIndex, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shipment data %s: %w", path, err)
	}
	defer f.Close()

	idx := reconcile.NewShipmentIndex()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, path, err)
		}

		headerIdx, etofIdx := findHeader(rows)
		if headerIdx < 0 {
			log.Warn("Skipping sheet without ETOF column",
				zap.String("path", path), zap.String("sheet", sheet))
			continue
		}

		headers := rows[headerIdx]
		for _, row := range rows[headerIdx+1:] {
			etof := ""
			if etofIdx < len(row) {
				etof = strings.TrimSpace(row[etofIdx])
			}
			if utils.IsBlank(etof) {
				continue
			}

			idx.Add(etof, reconcile.NewShipmentRow(headers, row))
		}
	}

	if idx.Len() == 0 {
		return nil, fmt.Errorf("no shipment rows found in %s", path)
	}

	log.Info("Loaded shipment data", zap.String("path", path), zap.Int("shipments", idx.Len()))
	return idx, nil
}

// findHeader locates the first row containing an ETOF column and returns
// the row index and the column index.
func findHeader(rows [][]string) (int, int) {
	for i, row := range rows {
		for j, cell := range row {
			if strings.Contains(strings.ToLower(cell), "etof") {
				return i, j
			}
		}
	}

	return -1, -1
}
