package ratecard

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"freight-reconciler/core/reconcile"
	"freight-reconciler/core/utils"

	"github.com/xuri/excelize/v2"
)

const generalInfoSheet = "General info"

var weightBoundRe = regexp.MustCompile(`^[<>=]+\s*\d+(\.\d+)?$`)

// conditionPrefixes mark rows above the type row that hold rating and
// applicability text instead of cost names.
var conditionPrefixes = []string{"rate by", "applies if", "apply if", "condition"}

// Load reads a raw carrier rate card workbook and rebuilds it into a
// RateCard with one header per price column. The workbook layout is the
// carrier's: a cost-names row, optional rating and condition rows, an
// indicator row with MIN/MAX markers or weight bounds, a type row whose
// cells name each column's role, and lane-numbered data rows below.
func Load(path string) (*reconcile.RateCard, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate card %s: %w", path, err)
	}
	defer f.Close()

	agreement, err := readAgreementNumber(f)
	if err != nil {
		return nil, err
	}

	for _, sheet := range f.GetSheetList() {
		if sheet == generalInfoSheet {
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, path, err)
		}

		typeRow := findTypeRow(rows)
		if typeRow < 0 {
			continue
		}

		table, costs, err := rebuildSheet(rows, typeRow)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild sheet %s of %s: %w", sheet, path, err)
		}

		return &reconcile.RateCard{
			Agreement: agreement,
			Table:     table,
			Costs:     costs,
		}, nil
	}

	return nil, fmt.Errorf("no rate sheet with a currency type row found in %s", path)
}

// readAgreementNumber pulls the agreement number from the General info
// sheet, where it sits next to an "Agreement number" label.
func readAgreementNumber(f *excelize.File) (string, error) {
	rows, err := f.GetRows(generalInfoSheet)
	if err != nil {
		return "", fmt.Errorf("failed to read %s sheet: %w", generalInfoSheet, err)
	}

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		if strings.Contains(strings.ToLower(row[0]), "agreement number") {
			return utils.NormalizeLane(row[1]), nil
		}
	}

	return "", fmt.Errorf("agreement number not found in %s sheet", generalInfoSheet)
}

// findTypeRow locates the row whose cells name column roles. Carriers
// place it within the first rows of the sheet.
func findTypeRow(rows [][]string) int {
	for i := 3; i <= 15 && i < len(rows); i++ {
		for _, cell := range rows[i] {
			if strings.EqualFold(strings.TrimSpace(cell), "currency") {
				return i
			}
		}
	}

	return -1
}

// headerRows identifies the cost-names row and the rating/condition rows
// above the indicator row by scanning upwards.
func headerRows(rows [][]string, typeRow int) (names, rateBy, appliesIf []string) {
	for j := typeRow - 2; j >= 0; j-- {
		row := rows[j]
		first := ""
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				first = strings.ToLower(strings.TrimSpace(cell))
				break
			}
		}
		if first == "" {
			continue
		}

		matched := false
		for _, prefix := range conditionPrefixes {
			if strings.HasPrefix(first, prefix) {
				matched = true
				break
			}
		}

		if !matched {
			names = row
			return names, rateBy, appliesIf
		}

		if strings.HasPrefix(first, "rate by") {
			rateBy = row
		} else {
			appliesIf = row
		}
	}

	return names, rateBy, appliesIf
}

// columnRole classifies one type row cell.
func columnRole(cell string) string {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "currency":
		return "cost"
	case "flat":
		return "flat"
	case "p/unit", "p/ unit", "per unit":
		return "punit"
	}
	return ""
}

// buildWeightLabels turns sorted upper bounds into band labels. The first
// band is open below, each later band excludes the previous bound.
func buildWeightLabels(bounds []float64) []string {
	sorted := make([]float64, len(bounds))
	copy(sorted, bounds)
	sort.Float64s(sorted)

	labels := make([]string, len(sorted))
	for i, b := range sorted {
		if i == 0 {
			labels[i] = "<=" + utils.FormatNumber(b)
			continue
		}
		labels[i] = ">" + utils.FormatNumber(sorted[i-1]) + " <=" + utils.FormatNumber(b)
	}

	return labels
}

// boundValue parses the numeric part of a weight bound cell like "<=200".
func boundValue(cell string) (float64, bool) {
	return utils.ParseFloat(strings.TrimLeft(strings.TrimSpace(cell), "<>= "))
}

// rebuildSheet converts a raw rate sheet into a RateTable with rebuilt
// headers plus the cost condition entries.
func rebuildSheet(rows [][]string, typeRow int) (*reconcile.RateTable, []reconcile.CostEntry, error) {
	types := rows[typeRow]
	var indicators []string
	if typeRow > 0 {
		indicators = rows[typeRow-1]
	}
	names, rateByRow, appliesRow := headerRows(rows, typeRow)

	keep := []int{0}
	headers := []string{"Lane #"}
	var costs []reconcile.CostEntry

	// First pass groups weight-banded columns per cost so band labels can
	// be derived from all bounds of the group.
	type banded struct {
		col   int
		bound float64
	}
	bandLabels := make(map[int]string)
	groups := make(map[string][]banded)
	flush := func() {
		for role, group := range groups {
			if len(group) == 0 {
				continue
			}
			bounds := make([]float64, len(group))
			for i, g := range group {
				bounds[i] = g.bound
			}
			labels := buildWeightLabels(bounds)

			sort.Slice(group, func(i, j int) bool { return group[i].bound < group[j].bound })
			for i, g := range group {
				bandLabels[g.col] = labels[i]
			}
			delete(groups, role)
		}
	}

	for i := 1; i < len(types); i++ {
		role := columnRole(types[i])
		if role == "cost" {
			flush()
			continue
		}
		if role == "" {
			continue
		}

		indicator := strings.TrimSpace(cellAt(indicators, i))
		if weightBoundRe.MatchString(indicator) {
			if b, ok := boundValue(indicator); ok {
				groups[role] = append(groups[role], banded{col: i, bound: b})
			}
		}
	}
	flush()

	for i := 1; i < len(types); i++ {
		role := columnRole(types[i])
		if role == "" {
			continue
		}

		if role == "cost" {
			name := strings.TrimSpace(cellAt(names, i))
			if name == "" {
				continue
			}

			keep = append(keep, i)
			headers = append(headers, name)
			costs = append(costs, reconcile.CostEntry{
				Name:      name,
				RateBy:    strings.TrimSpace(cellAt(rateByRow, i)),
				AppliesIf: strings.TrimSpace(cellAt(appliesRow, i)),
			})
			continue
		}

		base := "Price Flat"
		if role == "punit" {
			base = "Price per unit"
		}

		indicator := strings.TrimSpace(cellAt(indicators, i))
		lower := strings.ToLower(indicator)
		switch {
		case strings.Contains(lower, "min"):
			base += " MIN"
		case strings.Contains(lower, "max"):
			base += " MAX"
		case bandLabels[i] != "":
			base += " " + bandLabels[i]
		}

		keep = append(keep, i)
		headers = append(headers, base)
	}

	if len(costs) == 0 {
		return nil, nil, fmt.Errorf("no cost columns found")
	}

	table := &reconcile.RateTable{Columns: headers}
	for i := typeRow + 1; i < len(rows); i++ {
		lane := strings.TrimSpace(cellAt(rows[i], 0))
		if _, ok := utils.ParseFloat(lane); !ok {
			continue
		}

		projected := make([]string, len(keep))
		projected[0] = utils.NormalizeLane(lane)
		for j, col := range keep[1:] {
			projected[j+1] = strings.TrimSpace(cellAt(rows[i], col))
		}
		table.Rows = append(table.Rows, projected)
	}

	return table, costs, nil
}

// cellAt tolerates short or nil rows.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
