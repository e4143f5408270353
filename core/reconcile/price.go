package reconcile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"freight-reconciler/core/utils"
)

// PriceKind selects which price column of a cost to resolve.
type PriceKind int

const (
	// PriceFlat resolves the flat price of a cost.
	PriceFlat PriceKind = iota
	// PricePerUnit resolves the per-unit price of a cost.
	PricePerUnit
	// PriceMin resolves the minimum price floor of a cost.
	PriceMin
	// PriceMax resolves the maximum price cap of a cost.
	PriceMax
)

// Price is a resolved price cell. FlatTier is set when a per-unit lookup
// fell back to a weight-tiered flat column, which changes how the caller
// reports the amount.
type Price struct {
	Value    string
	Column   string
	FlatTier bool
	TierDesc string
}

var (
	tierLowerRe = regexp.MustCompile(`>\s*(\d+(?:\.\d+)?)`)
	tierUpperRe = regexp.MustCompile(`<=?\s*(\d+(?:\.\d+)?)`)
)

// tier is one weight-banded price column.
type tier struct {
	idx      int
	label    string
	lower    float64
	hasLower bool
	upper    float64
}

// parseTier extracts the weight band from a column name like
// "Price Flat >200 <=500". The lower bound is exclusive, the upper
// inclusive.
func parseTier(column string, idx int) (tier, bool) {
	um := tierUpperRe.FindStringSubmatch(column)
	if um == nil {
		return tier{}, false
	}

	t := tier{idx: idx, label: tierLabel(column)}
	t.upper, _ = utils.ParseFloat(um[1])

	if lm := tierLowerRe.FindStringSubmatch(column); lm != nil {
		t.lower, _ = utils.ParseFloat(lm[1])
		t.hasLower = true
	}

	return t, true
}

// tierLabel returns the range portion of a tiered column name.
func tierLabel(column string) string {
	for i, r := range column {
		if r == '<' || r == '>' {
			return strings.TrimSpace(column[i:])
		}
	}
	return strings.TrimSpace(column)
}

// FindPrice resolves a price for a lane and cost from the rate table.
// It returns the price and an empty string on success, or a zero price
// and a human-readable reason on failure. A missing MIN or MAX column is
// not a failure; both return empty without a reason.
func (t *RateTable) FindPrice(lane, costName string, kind PriceKind, chargeWeight string) (Price, string) {
	row, ok := t.laneRow(lane)
	if !ok {
		return Price{}, fmt.Sprintf("Lane #%s not found in rate data", lane)
	}

	costIdx := t.findCostColumn(costName)
	if costIdx < 0 {
		return Price{}, fmt.Sprintf("Cost type '%s' not found in rate card columns", costName)
	}

	switch kind {
	case PriceFlat:
		return t.resolveFlat(row, lane, costName, costIdx, chargeWeight)
	case PricePerUnit:
		return t.resolvePerUnit(row, lane, costName, costIdx, chargeWeight)
	case PriceMin:
		return t.resolveNearby(row, lane, costName, costIdx, "min", 4)
	case PriceMax:
		return t.resolveNearby(row, lane, costName, costIdx, "max", 5)
	}

	return Price{}, ""
}

// findCostColumn locates the column holding a cost name. The lane column
// at index 0 is never considered.
func (t *RateTable) findCostColumn(costName string) int {
	q := strings.ToLower(strings.TrimSpace(costName))
	if q == "" {
		return -1
	}

	for i := 1; i < len(t.Columns); i++ {
		if strings.ToLower(strings.TrimSpace(t.Columns[i])) == q {
			return i
		}
	}
	for i := 1; i < len(t.Columns); i++ {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(t.Columns[i])), q) {
			return i
		}
	}
	for i := 1; i < len(t.Columns); i++ {
		if strings.HasPrefix(q, strings.ToLower(strings.TrimSpace(t.Columns[i]))) {
			return i
		}
	}
	for i := 1; i < len(t.Columns); i++ {
		if baseName(q) == baseName(strings.ToLower(strings.TrimSpace(t.Columns[i]))) {
			return i
		}
	}

	return -1
}

// findTieredColumns collects the weight-banded price columns of a cost.
// The scan stops at a plain column of the scanned kind without a weight
// band, which marks the price block of the next cost.
func (t *RateTable) findTieredColumns(costIdx int, kind PriceKind) []tier {
	var tiers []tier

	for j := costIdx + 1; j < len(t.Columns) && j <= costIdx+9; j++ {
		name := strings.ToLower(t.Columns[j])
		if !strings.ContainsAny(name, "<>") {
			if isPlainColumn(name, kind) {
				break
			}
			continue
		}

		switch kind {
		case PriceFlat:
			if !strings.Contains(name, "flat") {
				continue
			}
		case PricePerUnit:
			if !strings.Contains(name, "per unit") {
				continue
			}
		}

		if tr, ok := parseTier(t.Columns[j], j); ok {
			tiers = append(tiers, tr)
		}
	}

	return tiers
}

// isPlainColumn reports whether a column is an untiered price column of
// the scanned kind. MIN and MAX columns never end a tier scan.
func isPlainColumn(name string, kind PriceKind) bool {
	if strings.Contains(name, "min") || strings.Contains(name, "max") {
		return false
	}
	switch kind {
	case PriceFlat:
		return strings.Contains(name, "flat")
	case PricePerUnit:
		return strings.Contains(name, "per unit")
	}
	return false
}

// selectTier picks the band containing the charge weight. Bands are
// ordered by their upper bound so the first match is the tightest one.
func selectTier(tiers []tier, weight float64) (tier, bool) {
	sorted := make([]tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].upper < sorted[j].upper
	})

	for _, tr := range sorted {
		if tr.hasLower {
			if weight > tr.lower && weight <= tr.upper {
				return tr, true
			}
			continue
		}
		if weight <= tr.upper {
			return tr, true
		}
	}

	return tier{}, false
}

// maxUpper returns the largest upper bound among tiers.
func maxUpper(tiers []tier) float64 {
	max := tiers[0].upper
	for _, tr := range tiers[1:] {
		if tr.upper > max {
			max = tr.upper
		}
	}
	return max
}

// resolveFlat resolves a flat price, preferring weight-banded columns when
// they exist and a usable charge weight is available.
func (t *RateTable) resolveFlat(row []string, lane, costName string, costIdx int, chargeWeight string) (Price, string) {
	tiers := t.findTieredColumns(costIdx, PriceFlat)
	if weight, ok := utils.ParseFloat(chargeWeight); ok && len(tiers) > 0 {
		tr, found := selectTier(tiers, weight)
		if !found {
			return Price{}, fmt.Sprintf("CHARGE_WEIGHT %s exceeds max tier %s for cost '%s'",
				strings.TrimSpace(chargeWeight), utils.FormatNumber(maxUpper(tiers)), costName)
		}
		return t.priceAt(row, lane, costName, tr.idx, tr.label)
	}

	idx := costIdx + 1
	if idx >= len(t.Columns) {
		return Price{}, fmt.Sprintf("No price column found after cost '%s'", costName)
	}

	return t.priceAt(row, lane, costName, idx, "")
}

// resolvePerUnit resolves a per-unit price. When no per-unit column
// exists it falls back to weight-banded flat columns and marks the result
// so the caller reports a flat amount instead of a unit price.
func (t *RateTable) resolvePerUnit(row []string, lane, costName string, costIdx int, chargeWeight string) (Price, string) {
	tiers := t.findTieredColumns(costIdx, PricePerUnit)
	if weight, ok := utils.ParseFloat(chargeWeight); ok && len(tiers) > 0 {
		tr, found := selectTier(tiers, weight)
		if !found {
			return Price{}, fmt.Sprintf("CHARGE_WEIGHT %s exceeds max tier %s for cost '%s'",
				strings.TrimSpace(chargeWeight), utils.FormatNumber(maxUpper(tiers)), costName)
		}
		return t.priceAt(row, lane, costName, tr.idx, tr.label)
	}

	for j := costIdx + 1; j < len(t.Columns) && j <= costIdx+4; j++ {
		name := strings.ToLower(t.Columns[j])
		if strings.ContainsAny(name, "<>") {
			continue
		}
		if strings.Contains(name, "per unit") || strings.Contains(name, "price per") {
			return t.priceAt(row, lane, costName, j, "")
		}
	}

	flatTiers := t.findTieredColumns(costIdx, PriceFlat)
	if weight, ok := utils.ParseFloat(chargeWeight); ok && len(flatTiers) > 0 {
		tr, found := selectTier(flatTiers, weight)
		if !found {
			return Price{}, fmt.Sprintf("CHARGE_WEIGHT %s exceeds max tier %s for cost '%s'",
				strings.TrimSpace(chargeWeight), utils.FormatNumber(maxUpper(flatTiers)), costName)
		}
		p, reason := t.priceAt(row, lane, costName, tr.idx, tr.label)
		if reason != "" {
			return Price{}, reason
		}
		p.FlatTier = true
		return p, ""
	}

	return Price{}, fmt.Sprintf("'Price per unit' column not found for cost '%s'", costName)
}

// resolveNearby scans a window after the cost column for a named column
// like MIN or MAX. Missing columns yield an empty price without a reason.
func (t *RateTable) resolveNearby(row []string, lane, costName string, costIdx int, keyword string, window int) (Price, string) {
	for j := costIdx + 1; j < len(t.Columns) && j <= costIdx+window; j++ {
		name := strings.ToLower(t.Columns[j])
		if !strings.Contains(name, keyword) {
			continue
		}

		value := strings.TrimSpace(cell(row, j))
		if utils.IsBlank(value) {
			return Price{}, ""
		}
		return Price{Value: value, Column: t.Columns[j]}, ""
	}

	return Price{}, ""
}

// priceAt reads a price cell, rejecting blanks.
func (t *RateTable) priceAt(row []string, lane, costName string, idx int, tierDesc string) (Price, string) {
	value := strings.TrimSpace(cell(row, idx))
	if utils.IsBlank(value) {
		return Price{}, fmt.Sprintf("Price value is empty for cost '%s' in lane %s", costName, lane)
	}

	return Price{Value: value, Column: t.Columns[idx], TierDesc: tierDesc}, ""
}
