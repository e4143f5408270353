package ratecard

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"freight-reconciler/core/reconcile"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	costsSuffix       = "_costs.xlsx"
	accessorialSuffix = "_accessorial_costs.xlsx"
)

// LoadAccessorial reads an accessorial cost workbook. The first sheet
// holds a header row followed by one entry per row.
func LoadAccessorial(path string) (*reconcile.AccessorialTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open accessorial costs %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in accessorial costs %s", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read accessorial costs %s: %w", path, err)
	}

	headerIdx := -1
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row in accessorial costs %s", path)
	}

	return reconcile.NewAccessorialTable(rows[headerIdx], rows[headerIdx+1:]), nil
}

// LoadDir loads every rate card workbook in a directory, keyed by
// agreement number. Accessorial workbooks are skipped; they are loaded
// lazily through NewAccessorialLoader.
func LoadDir(dir string, log *zap.Logger) (map[string]*reconcile.RateCard, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}

	cards := make(map[string]*reconcile.RateCard)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, costsSuffix) || strings.HasSuffix(name, accessorialSuffix) {
			continue
		}

		path := filepath.Join(dir, name)
		card, err := Load(path)
		if err != nil {
			log.Warn("Skipping unreadable rate card", zap.String("path", path), zap.Error(err))
			continue
		}

		cards[card.Agreement] = card
		log.Debug("Loaded rate card",
			zap.String("agreement", card.Agreement),
			zap.Int("lanes", len(card.Table.Rows)),
			zap.Int("costs", len(card.Costs)))
	}

	if len(cards) == 0 {
		return nil, fmt.Errorf("no rate card workbooks found in %s", dir)
	}

	return cards, nil
}

// NewAccessorialLoader returns a loader that finds the accessorial
// workbook of an agreement in a directory. File names carry the agreement
// number as prefix; partial matches in either direction are accepted so
// shortened numbers still resolve. A nil table without error means the
// agreement has no accessorial costs.
func NewAccessorialLoader(dir string, log *zap.Logger) reconcile.AccessorialLoader {
	return func(agreement string) (*reconcile.AccessorialTable, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
		}

		var names []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), accessorialSuffix) {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			prefix := strings.TrimSuffix(name, accessorialSuffix)
			if prefix != agreement && !strings.Contains(prefix, agreement) && !strings.Contains(agreement, prefix) {
				continue
			}

			tbl, err := LoadAccessorial(filepath.Join(dir, name))
			if err != nil {
				log.Warn("Skipping unreadable accessorial costs",
					zap.String("path", filepath.Join(dir, name)), zap.Error(err))
				return nil, err
			}

			log.Debug("Loaded accessorial costs",
				zap.String("agreement", agreement),
				zap.Int("entries", len(tbl.Entries)))
			return tbl, nil
		}

		return nil, nil
	}
}
