package reconcile

import (
	"regexp"
	"strings"
)

// Condition operators.
const (
	OpEquals         = "equals"
	OpDoesNotEqual   = "does_not_equal"
	OpStartsWith     = "starts_with"
	OpContains       = "contains"
	OpDoesNotContain = "does_not_contain"
)

// Condition is one parsed clause of an "Applies If" cell: a shipment
// column, an operator and the quoted values to compare against.
type Condition struct {
	Column string
	Op     string
	Values []string
}

// ParseResult holds the parsed conditions of a clause together with the
// number of sub-clauses that could not be understood.
type ParseResult struct {
	Conditions []Condition
	Dropped    int
}

var (
	clauseSplitRe = regexp.MustCompile(`\d+\.\s*`)
	allItemsRe    = regexp.MustCompile(`(?i)\s+in all items\s*$`)
	andSplitRe    = regexp.MustCompile(`(?i)\s+and\s+`)
	quotedValueRe = regexp.MustCompile(`'([^']*)'`)
	notEqualRe    = regexp.MustCompile(`(?i)^(.+?)\s+does\s+not\s+equal\s*(?:to\s+)?(.+)$`)
	notContainRe  = regexp.MustCompile(`(?i)^(.+?)\s+does\s+not\s+contain\s*(.+)$`)
	equalsRe      = regexp.MustCompile(`(?i)^(.+?)\s+equals?\s*(?:to\s+)?(.+)$`)
	startsWithRe  = regexp.MustCompile(`(?i)^(.+?)\s+starts?\s+with\s+(.+)$`)
	containsRe    = regexp.MustCompile(`(?i)^(.+?)\s+contains?\s+(.+)$`)
)

// operator patterns in priority order. Negated forms come first so that
// "does not equal" is never read as "equals".
var operatorPatterns = []struct {
	re *regexp.Regexp
	op string
}{
	{notEqualRe, OpDoesNotEqual},
	{notContainRe, OpDoesNotContain},
	{equalsRe, OpEquals},
	{startsWithRe, OpStartsWith},
	{containsRe, OpContains},
}

// ParseAppliesIf converts an "Applies If" cell into structured conditions.
// Clauses that do not match any known operator pattern, or that name no
// quoted values, are counted in Dropped instead of failing the parse.
func ParseAppliesIf(text string) ParseResult {
	var result ParseResult

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.EqualFold(trimmed, "no condition") {
		return result
	}

	// Short invoicing notes without comparison verbs carry no testable
	// conditions.
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "applies if invoiced") && strings.Contains(lower, "carrier") &&
		len(trimmed) < 50 &&
		!strings.Contains(lower, "equal") && !strings.Contains(lower, "start") &&
		!strings.Contains(lower, "contain") {
		return result
	}

	for _, clause := range clauseSplitRe.Split(trimmed, -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		clause = allItemsRe.ReplaceAllString(clause, "")

		for _, part := range andSplitRe.Split(clause, -1) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			cond, ok := parseClause(part)
			if !ok {
				result.Dropped++
				continue
			}
			result.Conditions = append(result.Conditions, cond)
		}
	}

	return result
}

// parseClause matches one clause against the operator patterns.
func parseClause(clause string) (Condition, bool) {
	for _, p := range operatorPatterns {
		m := p.re.FindStringSubmatch(clause)
		if m == nil {
			continue
		}

		values := quotedValueRe.FindAllStringSubmatch(m[2], -1)
		if len(values) == 0 {
			// Matched an operator but named no quoted values.
			return Condition{}, false
		}

		cond := Condition{
			Column: strings.TrimSpace(m[1]),
			Op:     p.op,
		}
		for _, v := range values {
			cond.Values = append(cond.Values, v[1])
		}

		return cond, true
	}

	return Condition{}, false
}

// HasComparisonVerbs reports whether an "Applies If" cell contains any of
// the operator keywords, meaning it likely holds testable conditions.
func HasComparisonVerbs(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "equals") ||
		strings.Contains(lower, "starts with") ||
		strings.Contains(lower, "starts") ||
		strings.Contains(lower, "contains") ||
		strings.Contains(lower, "does not equal")
}
