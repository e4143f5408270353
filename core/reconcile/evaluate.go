package reconcile

import (
	"fmt"
	"strings"

	"freight-reconciler/core/utils"
)

// columnSynonyms maps condition column phrases to the shipment columns
// they may appear under in the joined LC/ETOF data.
var columnSynonyms = map[string][]string{
	"origin country":      {"SHIP_COUNTRY", "ship_country", "Origin Country", "origin_country"},
	"destination country": {"CUST_COUNTRY", "cust_country", "Destination Country", "destination_country", "dest_country"},
	"origin_country":      {"SHIP_COUNTRY", "ship_country", "Origin Country"},
	"destination_country": {"CUST_COUNTRY", "cust_country", "Destination Country"},
	"ship country":        {"SHIP_COUNTRY", "ship_country"},
	"cust country":        {"CUST_COUNTRY", "cust_country"},
}

// EvaluateConditions checks every condition against the shipment row.
// It returns true when all conditions hold, otherwise false and a message
// describing the first condition that failed. A condition naming a column
// the row does not have fails closed.
func EvaluateConditions(conds []Condition, etof string, row ShipmentRow) (bool, string) {
	for _, cond := range conds {
		col, ok := resolveColumn(cond.Column, row)
		if !ok {
			return false, fmt.Sprintf("Column '%s' not found in shipment data for ETOF %s", cond.Column, etof)
		}

		raw, _ := row.Get(col)
		actual := strings.TrimSpace(raw)
		if utils.IsBlank(actual) {
			actual = ""
		}

		if ok, msg := evaluateCondition(cond, actual); !ok {
			return false, msg
		}
	}

	return true, ""
}

// resolveColumn finds the shipment column a condition refers to. Mapped
// synonyms are tried first, then progressively looser name matching.
func resolveColumn(name string, row ShipmentRow) (string, bool) {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)

	if candidates, ok := columnSynonyms[lower]; ok {
		for _, cand := range candidates {
			for _, col := range row.Columns() {
				if strings.EqualFold(col, cand) {
					return col, true
				}
			}
		}
	}

	normalized := normalizeColumnName(lower)
	nospace := strings.ReplaceAll(normalized, "_", "")

	for _, col := range row.Columns() {
		colNorm := normalizeColumnName(strings.ToLower(col))
		if colNorm == normalized {
			return col, true
		}
		if strings.ReplaceAll(colNorm, "_", "") == nospace {
			return col, true
		}
	}

	for _, col := range row.Columns() {
		colNorm := normalizeColumnName(strings.ToLower(col))
		if strings.Contains(colNorm, normalized) || strings.Contains(normalized, colNorm) {
			return col, true
		}
	}

	return "", false
}

// normalizeColumnName lowers a name and folds spaces and hyphens into
// underscores so "Carrier Name" matches "carrier_name".
func normalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// evaluateCondition applies one operator. All comparisons are
// case-insensitive on trimmed values.
func evaluateCondition(cond Condition, actual string) (bool, string) {
	actualLower := strings.ToLower(actual)

	switch cond.Op {
	case OpEquals:
		for _, v := range cond.Values {
			if actualLower == strings.ToLower(strings.TrimSpace(v)) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("Applies If not met: %s is '%s', expected one of %s",
			cond.Column, actual, quoteList(cond.Values))

	case OpDoesNotEqual:
		for _, v := range cond.Values {
			if actualLower == strings.ToLower(strings.TrimSpace(v)) {
				return false, fmt.Sprintf("Applies If not met: %s is '%s', should not be one of %s",
					cond.Column, actual, quoteList(cond.Values))
			}
		}
		return true, ""

	case OpStartsWith:
		for _, v := range cond.Values {
			if strings.HasPrefix(actualLower, strings.ToLower(strings.TrimSpace(v))) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("Applies If not met: %s is '%s', should start with one of %s",
			cond.Column, actual, quoteList(cond.Values))

	case OpContains:
		for _, v := range cond.Values {
			if strings.Contains(actualLower, strings.ToLower(strings.TrimSpace(v))) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("Applies If not met: %s is '%s', should contain one of %s",
			cond.Column, actual, quoteList(cond.Values))

	case OpDoesNotContain:
		for _, v := range cond.Values {
			if strings.Contains(actualLower, strings.ToLower(strings.TrimSpace(v))) {
				return false, fmt.Sprintf("Applies If not met: %s is '%s', should not contain any of %s",
					cond.Column, actual, quoteList(cond.Values))
			}
		}
		return true, ""
	}

	return true, ""
}

// quoteList renders values as ['a', 'b'] to match the source condition
// syntax in failure messages.
func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
