package reconcile

import "strings"

// matchesCostName reports whether a cost entry name matches the queried
// cost type. Matching is case-insensitive and accepts either name being a
// prefix of the other, or equal base names with parentheticals stripped.
// Plain substring matching is deliberately excluded; it pairs unrelated
// costs like "Fuel" and "Refuel handling".
func matchesCostName(query, candidate string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidate))
	if q == "" || c == "" {
		return false
	}

	if q == c {
		return true
	}
	if baseName(q) == baseName(c) {
		return true
	}
	if strings.HasPrefix(c, q) {
		return true
	}
	if strings.HasPrefix(q, c) {
		return true
	}

	return false
}

// FindBestCost selects the cost entry matching a mismatch row's cost type.
//
// With multiple candidates the conditions of each are evaluated against the
// shipment row: a candidate whose conditions hold beats an unconditioned
// one, and among satisfied candidates the most specific (longest) name
// wins. Among purely unconditioned candidates the shortest name wins.
// Ties keep the earlier entry, so results are stable across runs.
func FindBestCost(costType string, costs []CostEntry, row ShipmentRow, etof string) (CostEntry, bool) {
	var matches []CostEntry
	for _, c := range costs {
		if matchesCostName(costType, c.Name) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return CostEntry{}, false
	case 1:
		return matches[0], true
	}

	var satisfied, unconditioned []CostEntry
	for _, c := range matches {
		parsed := ParseAppliesIf(c.AppliesIf)
		if len(parsed.Conditions) == 0 || row.IsZero() {
			unconditioned = append(unconditioned, c)
			continue
		}

		if ok, _ := EvaluateConditions(parsed.Conditions, etof, row); ok {
			satisfied = append(satisfied, c)
		}
	}

	if len(satisfied) > 0 {
		best := satisfied[0]
		for _, c := range satisfied[1:] {
			if len(c.Name) > len(best.Name) {
				best = c
			}
		}
		return best, true
	}

	if len(unconditioned) > 0 {
		best := unconditioned[0]
		for _, c := range unconditioned[1:] {
			if len(c.Name) < len(best.Name) {
				best = c
			}
		}
		return best, true
	}

	return matches[0], true
}

// lookupCostConditions finds the rate-by and applies-if text of a cost for
// display purposes only. Unlike FindBestCost it allows plain substring
// matches, since the result never drives a price lookup.
func lookupCostConditions(costType string, costs []CostEntry) (string, string, bool) {
	q := strings.ToLower(strings.TrimSpace(costType))
	if q == "" {
		return "", "", false
	}

	for _, c := range costs {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(costType)) {
			return c.RateBy, c.AppliesIf, true
		}
	}

	for _, c := range costs {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			continue
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return c.RateBy, c.AppliesIf, true
		}
	}

	return "", "", false
}

// FindBestAccessorial selects the accessorial entry matching a cost type,
// optionally narrowed to a rate lane. When a lane is given, entries bound
// to that lane or to no lane qualify; when no entry survives the lane
// filter all name matches are reconsidered. Among multiple survivors the
// same satisfied/unconditioned policy as FindBestCost applies.
func FindBestAccessorial(costType string, tbl *AccessorialTable, lane string, row ShipmentRow, etof string) (AccessorialEntry, bool) {
	if tbl == nil {
		return AccessorialEntry{}, false
	}

	var nameMatches []AccessorialEntry
	for _, e := range tbl.Entries {
		if matchesCostName(costType, e.Name) {
			nameMatches = append(nameMatches, e)
		}
	}
	if len(nameMatches) == 0 {
		return AccessorialEntry{}, false
	}

	var candidates []AccessorialEntry
	for _, e := range nameMatches {
		if lane == "" {
			if e.Lane == "" {
				candidates = append(candidates, e)
			}
			continue
		}
		if e.Lane == lane || e.Lane == "" {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		candidates = nameMatches
	}

	if len(candidates) == 1 {
		return candidates[0], true
	}

	var satisfied, unconditioned []AccessorialEntry
	for _, e := range candidates {
		parsed := ParseAppliesIf(e.AppliesIf)
		if len(parsed.Conditions) == 0 || row.IsZero() {
			unconditioned = append(unconditioned, e)
			continue
		}

		if ok, _ := EvaluateConditions(parsed.Conditions, etof, row); ok {
			satisfied = append(satisfied, e)
		}
	}

	if len(satisfied) > 0 {
		best := satisfied[0]
		for _, e := range satisfied[1:] {
			if len(e.Name) > len(best.Name) {
				best = e
			}
		}
		return best, true
	}

	if len(unconditioned) > 0 {
		best := unconditioned[0]
		for _, e := range unconditioned[1:] {
			if len(e.Name) < len(best.Name) {
				best = e
			}
		}
		return best, true
	}

	return candidates[0], true
}
