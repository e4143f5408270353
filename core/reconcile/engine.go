package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"freight-reconciler/core/utils"

	"go.uber.org/zap"
)

// Engine reconciles flagged cost mismatches against rate cards,
// accessorial tables and shipment data.
type Engine struct {
	log          *zap.Logger
	rateCards    map[string]*RateCard
	agreements   []string
	shipments    *ShipmentIndex
	accessorials *AccessorialCache
}

// NewEngine creates an engine over the loaded rate cards and shipments.
func NewEngine(log *zap.Logger, rateCards map[string]*RateCard, shipments *ShipmentIndex, accessorials *AccessorialCache) *Engine {
	agreements := make([]string, 0, len(rateCards))
	for k := range rateCards {
		agreements = append(agreements, k)
	}
	sort.Strings(agreements)

	if shipments == nil {
		shipments = NewShipmentIndex()
	}
	if accessorials == nil {
		accessorials = NewAccessorialCache(nil)
	}

	return &Engine{
		log:          log,
		rateCards:    rateCards,
		agreements:   agreements,
		shipments:    shipments,
		accessorials: accessorials,
	}
}

// ReconcileAll processes every mismatch row in order. The accessorial
// cache is cleared first so a rerun always sees fresh workbook data.
func (e *Engine) ReconcileAll(rows []MismatchRow) []RowResult {
	e.accessorials.Clear()

	results := make([]RowResult, len(rows))
	for i, row := range rows {
		results[i] = e.ReconcileRow(row)
	}

	return results
}

// ReconcileRow derives the expected price of one mismatch row and
// explains the outcome in its Reason.
func (e *Engine) ReconcileRow(m MismatchRow) RowResult {
	card := e.resolveCard(m.Agreement)

	// A pre-filled reviewer comment overrides derivation. The cost's
	// conditions are still looked up so the output row stays complete.
	if !utils.IsBlank(m.Comment) {
		result := RowResult{Reason: strings.TrimSpace(m.Comment)}
		if card != nil {
			if rateBy, appliesIf, ok := lookupCostConditions(m.CostType, card.Costs); ok {
				result.RateBy = rateBy
				result.AppliesIf = appliesIf
			}
		}
		return result
	}

	if card == nil {
		return RowResult{Reason: fmt.Sprintf("No rate cost data found for agreement: %s", strings.TrimSpace(m.Agreement))}
	}

	row, hasRow := e.shipments.Lookup(m.ETOF)

	cost, found := FindBestCost(m.CostType, card.Costs, row, m.ETOF)
	if !found {
		return e.reconcileAccessorial(m, card, row, hasRow)
	}

	// A matched cost with neither rating basis nor conditions carries no
	// rate-card pricing; such costs live in the accessorial table.
	if strings.TrimSpace(cost.RateBy) == "" && strings.TrimSpace(cost.AppliesIf) == "" {
		return e.reconcileAccessorial(m, card, row, hasRow)
	}

	result := RowResult{RateBy: cost.RateBy, AppliesIf: cost.AppliesIf}

	costName := cost.Name
	if strings.TrimSpace(costName) == "" {
		costName = m.CostType
	}

	if reason, failed := e.checkConditions(cost.AppliesIf, m.ETOF, row, hasRow); failed {
		result.Reason = reason
		return result
	}

	comment, hasComment := row.Comment()
	if !hasComment {
		result.Reason = fmt.Sprintf("No comment found for ETOF %s", m.ETOF)
		return result
	}

	lanes := ExtractLanes(comment)
	if len(lanes) == 0 {
		result.Reason = fmt.Sprintf("Could not extract rate lane from comment: %s", comment)
		return result
	}
	if len(lanes) > 1 {
		result.Reason = fmt.Sprintf("Multiple rate lanes found (%s) - manual check required", strings.Join(lanes, ", "))
		return result
	}
	lane := lanes[0]

	if strings.Contains(strings.ToLower(cost.RateBy), "shipment") {
		result.Reason = e.flatReason(card.Table, lane, costName, row)
	} else {
		result.Reason = e.perUnitReason(card.Table, lane, costName, cost.RateBy, m.ETOF, row)
	}

	return result
}

// resolveCard finds the rate card of an agreement, first by exact number
// and then by partial match in either direction. Agreements are scanned
// in sorted order so partial matches are deterministic.
func (e *Engine) resolveCard(agreement string) *RateCard {
	agreement = strings.TrimSpace(agreement)
	if agreement == "" {
		return nil
	}

	if card, ok := e.rateCards[agreement]; ok {
		return card
	}

	for _, key := range e.agreements {
		if strings.Contains(key, agreement) || strings.Contains(agreement, key) {
			return e.rateCards[key]
		}
	}

	return nil
}

// checkConditions parses and evaluates an "Applies If" clause. It returns
// a failure reason and true when the conditions cannot be verified or do
// not hold.
func (e *Engine) checkConditions(appliesIf, etof string, row ShipmentRow, hasRow bool) (string, bool) {
	if utils.IsBlank(appliesIf) || strings.EqualFold(strings.TrimSpace(appliesIf), "no condition") {
		return "", false
	}

	lower := strings.ToLower(appliesIf)
	if strings.Contains(lower, "applies if invoiced") && !HasComparisonVerbs(appliesIf) {
		return "", false
	}

	parsed := ParseAppliesIf(appliesIf)
	if parsed.Dropped > 0 {
		e.log.Warn("Dropped unparseable condition clauses",
			zap.String("etof", etof),
			zap.Int("dropped", parsed.Dropped))
	}
	if len(parsed.Conditions) == 0 {
		return "", false
	}

	if !hasRow {
		return fmt.Sprintf("ETOF %s not found in shipment data - cannot verify Applies If conditions", etof), true
	}

	if ok, msg := EvaluateConditions(parsed.Conditions, etof, row); !ok {
		return msg, true
	}

	return "", false
}

// flatReason resolves a flat price from the rate table and reports it.
func (e *Engine) flatReason(table *RateTable, lane, costName string, row ShipmentRow) string {
	chargeWeight, _ := row.ChargeWeight()

	price, reason := table.FindPrice(lane, costName, PriceFlat, chargeWeight)
	if reason != "" {
		return reason
	}
	if price.Value == "" {
		return "The cost is not covered for the provided shipment details."
	}

	if strings.ContainsAny(price.Column, "<>") {
		return fmt.Sprintf("The cost is pre-calculated by rate card - %s flat (weight tier: %s).", price.Value, price.TierDesc)
	}

	return fmt.Sprintf("The cost is pre-calculated by rate card - %s flat.", price.Value)
}

// perUnitReason resolves a per-unit price, multiplies it by the rating
// quantity and applies MIN and MAX bounds when the rate card defines them.
func (e *Engine) perUnitReason(table *RateTable, lane, costName, rateBy, etof string, row ShipmentRow) string {
	label, mult, multReason := ResolveMultiplier(rateBy, etof, row)

	weightArg := ""
	if IsWeightBased(rateBy) {
		weightArg, _ = row.ChargeWeight()
	}

	price, reason := table.FindPrice(lane, costName, PricePerUnit, weightArg)
	if reason != "" {
		return reason
	}
	if price.Value == "" {
		return "The cost is not covered for the provided shipment details."
	}

	if price.FlatTier {
		return fmt.Sprintf("Weight-tiered flat price: %s (tier: %s, %s: %s)", price.Value, price.TierDesc, label, mult)
	}

	if multReason != "" {
		if IsWeightBased(rateBy) {
			return fmt.Sprintf("Cost per unit: %s, but %s", price.Value, multReason)
		}
		return fmt.Sprintf("Cost per unit: %s, %s not found for ETOF %s", price.Value, label, etof)
	}

	unitPrice, priceOK := utils.ParseFloat(price.Value)
	if !priceOK {
		return fmt.Sprintf("Cost per unit: %s (could not calculate - invalid price format)", price.Value)
	}

	quantity, multOK := utils.ParseFloat(mult)
	if !multOK {
		return fmt.Sprintf("Cost per unit: %s, %s: %s (could not calculate - invalid multiplier value)", price.Value, label, mult)
	}

	total := unitPrice * quantity

	minPrice, _ := table.FindPrice(lane, costName, PriceMin, "")
	if minVal, ok := utils.ParseFloat(minPrice.Value); ok && minVal > total {
		return fmt.Sprintf("MIN price applied - %s (Calculated: %s * %s (%s) = %.2f, but MIN is higher)",
			minPrice.Value, price.Value, mult, label, total)
	}

	maxPrice, _ := table.FindPrice(lane, costName, PriceMax, "")
	if maxVal, ok := utils.ParseFloat(maxPrice.Value); ok && maxVal < total {
		return fmt.Sprintf("MAX price applied - %s (Calculated: %s * %s (%s) = %.2f, but MAX is lower)",
			maxPrice.Value, price.Value, mult, label, total)
	}

	tierInfo := ""
	if strings.ContainsAny(price.Column, "<>") {
		tierInfo = fmt.Sprintf(" (weight tier: %s)", price.TierDesc)
	}

	return fmt.Sprintf("Cost per unit: %s%s, %s: %s, Total: %s * %s = %.2f",
		price.Value, tierInfo, label, mult, price.Value, mult, total)
}

// reconcileAccessorial handles cost types absent from the rate card by
// consulting the agreement's accessorial table.
func (e *Engine) reconcileAccessorial(m MismatchRow, card *RateCard, row ShipmentRow, hasRow bool) RowResult {
	tbl := e.accessorials.Get(card.Agreement)
	if tbl == nil {
		return RowResult{Reason: fmt.Sprintf("Cost type '%s' not found in cost conditions", m.CostType)}
	}

	lane := ""
	if comment, ok := row.Comment(); ok {
		if lanes := ExtractLanes(comment); len(lanes) == 1 {
			lane = lanes[0]
		}
	}

	entry, found := FindBestAccessorial(m.CostType, tbl, lane, row, m.ETOF)
	if !found {
		return RowResult{Reason: fmt.Sprintf("Cost type '%s' not found in cost conditions", m.CostType)}
	}

	// An entry carrying neither conditions nor prices is no better than
	// no entry at all.
	if entry.RateBy == "" && entry.AppliesIf == "" && entry.PriceFlat == "" && entry.PricePerUnit == "" {
		return RowResult{Reason: fmt.Sprintf("Cost type '%s' not found in cost conditions", m.CostType)}
	}

	result := RowResult{RateBy: entry.RateBy, AppliesIf: entry.AppliesIf}

	if reason, failed := e.checkConditions(entry.AppliesIf, m.ETOF, row, hasRow); failed {
		result.Reason = reason
		return result
	}

	if strings.Contains(strings.ToLower(entry.RateBy), "shipment") {
		result.Reason = accessorialFlatReason(entry)
		return result
	}

	result.Reason = e.accessorialPerUnitReason(entry, m.ETOF, row)
	return result
}

// accessorialFlatReason reports a per-shipment accessorial price.
func accessorialFlatReason(entry AccessorialEntry) string {
	if entry.PriceFlat != "" {
		return fmt.Sprintf("The cost is pre-calculated by rate card (accessorial) - %s flat.", entry.PriceFlat)
	}
	if entry.PricePerUnit != "" {
		return fmt.Sprintf("Cost per unit (accessorial): %s", entry.PricePerUnit)
	}
	return "The cost is not covered for the provided shipment details (accessorial - no price found)."
}

// accessorialPerUnitReason computes a per-unit accessorial total. The
// entry's flat price doubles as a MIN floor when flagged; accessorial
// tables carry no MAX cap.
func (e *Engine) accessorialPerUnitReason(entry AccessorialEntry, etof string, row ShipmentRow) string {
	if entry.PricePerUnit == "" {
		if entry.PriceFlat != "" {
			return fmt.Sprintf("The cost is pre-calculated by rate card (accessorial) - %s flat.", entry.PriceFlat)
		}
		return "The cost is not covered for the provided shipment details (accessorial - no price found)."
	}

	label, mult, multReason := ResolveMultiplier(entry.RateBy, etof, row)
	if multReason != "" {
		if IsWeightBased(entry.RateBy) {
			return fmt.Sprintf("Cost per unit (accessorial): %s, but %s", entry.PricePerUnit, multReason)
		}
		return fmt.Sprintf("Cost per unit (accessorial): %s, %s not found for ETOF %s", entry.PricePerUnit, label, etof)
	}

	unitPrice, priceOK := utils.ParseFloat(entry.PricePerUnit)
	if !priceOK {
		return fmt.Sprintf("Cost per unit (accessorial): %s (could not calculate - invalid price format)", entry.PricePerUnit)
	}

	quantity, multOK := utils.ParseFloat(mult)
	if !multOK {
		return fmt.Sprintf("Cost per unit (accessorial): %s, %s: %s (could not calculate - invalid multiplier value)", entry.PricePerUnit, label, mult)
	}

	total := unitPrice * quantity

	if entry.HasMinFlat && entry.PriceFlat != "" {
		if minVal, ok := utils.ParseFloat(entry.PriceFlat); ok && minVal > total {
			return fmt.Sprintf("MIN price applied (accessorial) - %s (Calculated: %s * %s (%s) = %.2f, but MIN is higher)",
				entry.PriceFlat, entry.PricePerUnit, mult, label, total)
		}
	}

	return fmt.Sprintf("Cost per unit (accessorial): %s, %s: %s, Total: %s * %s = %.2f",
		entry.PricePerUnit, label, mult, entry.PricePerUnit, mult, total)
}
