package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"freight-reconciler/core/utils"
)

var (
	laneCommentRe  = regexp.MustCompile(`(?i)Rate\s+lanes?:\s*([\d,\s]+)`)
	rateByPrefixRe = regexp.MustCompile(`(?i)^rate\s+by:\s*`)
)

// ExtractLanes pulls rate lane numbers out of a reviewer comment like
// "Rate lane: 10" or "Rate lanes: 10, 20".
func ExtractLanes(comment string) []string {
	m := laneCommentRe.FindStringSubmatch(comment)
	if m == nil {
		return nil
	}

	var lanes []string
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			lanes = append(lanes, utils.NormalizeLane(part))
		}
	}

	return lanes
}

// IsWeightBased reports whether a rating basis charges by weight.
func IsWeightBased(rateBy string) bool {
	lower := strings.ToLower(rateBy)
	return strings.Contains(lower, "weight") ||
		strings.Contains(lower, "kg") ||
		strings.Contains(lower, "chargeable")
}

// cleanRateBy strips the "Rate by:" prefix and anything after the first
// line break, leaving the bare unit description.
func cleanRateBy(rateBy string) string {
	s := rateByPrefixRe.ReplaceAllString(strings.TrimSpace(rateBy), "")
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// ExtractMeasurementValue looks up the rating unit in the shipment's
// MEASUREMENT column and returns the matching value from the parallel
// UNITS_MEASUREMENT column. When the unit is absent it returns the
// cleaned unit description as label so callers can name it in messages.
func ExtractMeasurementValue(rateBy, measurement, units string) (string, string, bool) {
	cleaned := cleanRateBy(rateBy)
	if cleaned == "" || strings.TrimSpace(measurement) == "" {
		return cleaned, "", false
	}

	labels := strings.Split(measurement, ";")
	values := strings.Split(units, ";")
	lowerCleaned := strings.ToLower(cleaned)

	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		lowerLabel := strings.ToLower(label)
		if lowerLabel != lowerCleaned &&
			!strings.Contains(lowerLabel, lowerCleaned) &&
			!strings.Contains(lowerCleaned, lowerLabel) {
			continue
		}

		value := ""
		if i < len(values) {
			value = strings.TrimSpace(values[i])
		}
		if utils.IsBlank(value) {
			return label, "", false
		}

		return label, value, true
	}

	return cleaned, "", false
}

// rateByColumnSynonyms maps rating unit keywords to shipment columns
// they commonly appear under.
var rateByColumnSynonyms = map[string][]string{
	"ldm":     {"LDM", "LOADING_METERS", "loading_meters"},
	"cbm":     {"CBM", "VOLUME", "volume_cbm"},
	"cdm":     {"CDM"},
	"hawb":    {"HAWB", "HAWB_NUMBER"},
	"mawb":    {"MAWB", "MAWB_NUMBER"},
	"pieces":  {"PIECES", "PIECE_COUNT", "NO_OF_PIECES"},
	"pallets": {"PALLETS", "PALLET_COUNT", "NO_OF_PALLETS"},
}

// rateByKeyword extracts the lookup keyword from a rating basis like
// "Rate by: chargeable weight/LDM", preferring the last segment that is
// not itself a weight term.
func rateByKeyword(rateBy string) string {
	cleaned := cleanRateBy(rateBy)
	if cleaned == "" {
		return ""
	}

	segments := strings.Split(cleaned, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := strings.ToLower(strings.TrimSpace(segments[i]))
		if seg == "" {
			continue
		}
		if strings.Contains(seg, "kg") || strings.Contains(seg, "chargeable") || strings.Contains(seg, "weight") {
			continue
		}
		return seg
	}

	return ""
}

// FindRateByColumn searches the shipment row directly for a column
// matching the rating unit keyword. Only columns with non-blank values
// qualify.
func FindRateByColumn(rateBy string, row ShipmentRow) (string, string, bool) {
	keyword := rateByKeyword(rateBy)
	if keyword == "" {
		return "", "", false
	}

	if candidates, ok := rateByColumnSynonyms[keyword]; ok {
		for _, cand := range candidates {
			for _, col := range row.Columns() {
				if !strings.EqualFold(col, cand) {
					continue
				}
				if v, _ := row.Get(col); !utils.IsBlank(v) {
					return col, strings.TrimSpace(v), true
				}
			}
		}
	}

	for _, col := range row.Columns() {
		lower := strings.ToLower(col)
		if lower != keyword &&
			!strings.Contains(lower, keyword) &&
			!strings.HasSuffix(lower, "_"+keyword) &&
			!strings.HasPrefix(lower, keyword+"_") {
			continue
		}
		if v, _ := row.Get(col); !utils.IsBlank(v) {
			return col, strings.TrimSpace(v), true
		}
	}

	return "", "", false
}

// ResolveMultiplier determines the quantity a per-unit price multiplies.
// It returns the column or unit label, the value, and an empty reason on
// success; on failure the reason explains what was missing.
func ResolveMultiplier(rateBy, etof string, row ShipmentRow) (string, string, string) {
	if IsWeightBased(rateBy) {
		if weight, ok := row.ChargeWeight(); ok {
			return "CHARGE_WEIGHT", weight, ""
		}
		return "CHARGE_WEIGHT", "", fmt.Sprintf("CHARGE_WEIGHT not found for ETOF %s", etof)
	}

	measurement, _ := row.Measurement()
	units, _ := row.UnitsMeasurement()
	label, value, ok := ExtractMeasurementValue(rateBy, measurement, units)
	if ok {
		return label, value, ""
	}

	if col, v, found := FindRateByColumn(rateBy, row); found {
		return col, v, ""
	}

	if label == "" {
		label = rateByKeyword(rateBy)
	}

	return label, "", fmt.Sprintf("'%s' not found in MEASUREMENT column or direct columns for ETOF %s", label, etof)
}
