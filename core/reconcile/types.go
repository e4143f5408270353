package reconcile

import (
	"regexp"
	"strings"

	"freight-reconciler/core/utils"
)

var parenSuffixRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// ShipmentRow is one joined LC/ETOF shipment record. Column order is
// preserved from the source workbook so lookups that scan columns are
// deterministic across runs.
type ShipmentRow struct {
	cols   []string
	values map[string]string
}

// NewShipmentRow builds a row from parallel header and value slices.
// Extra values without a header are dropped; missing values are empty.
func NewShipmentRow(headers, values []string) ShipmentRow {
	row := ShipmentRow{
		cols:   make([]string, 0, len(headers)),
		values: make(map[string]string, len(headers)),
	}

	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}

		v := ""
		if i < len(values) {
			v = values[i]
		}

		if _, seen := row.values[h]; !seen {
			row.cols = append(row.cols, h)
		}
		row.values[h] = v
	}

	return row
}

// Get returns the raw value of a column and whether the column exists.
func (r ShipmentRow) Get(col string) (string, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Columns returns the column names in workbook order.
func (r ShipmentRow) Columns() []string {
	return r.cols
}

// Len returns the number of columns.
func (r ShipmentRow) Len() int {
	return len(r.cols)
}

// IsZero reports whether the row holds no data at all.
func (r ShipmentRow) IsZero() bool {
	return len(r.cols) == 0
}

// firstColumn returns the first column, in workbook order, whose lowered
// name contains all of the given fragments and whose value is non-blank.
func (r ShipmentRow) firstColumn(fragments ...string) (string, string, bool) {
	for _, col := range r.cols {
		lower := strings.ToLower(col)
		ok := true
		for _, frag := range fragments {
			if !strings.Contains(lower, frag) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		if v := r.values[col]; !utils.IsBlank(v) {
			return col, strings.TrimSpace(v), true
		}
	}

	return "", "", false
}

// Comment returns the reviewer comment attached to the shipment, if any.
func (r ShipmentRow) Comment() (string, bool) {
	_, v, ok := r.firstColumn("comment")
	return v, ok
}

// ChargeWeight returns the chargeable weight value, if present.
func (r ShipmentRow) ChargeWeight() (string, bool) {
	if v, ok := r.values["CHARGE_WEIGHT"]; ok && !utils.IsBlank(v) {
		return strings.TrimSpace(v), true
	}

	_, v, ok := r.firstColumn("charge", "weight")
	return v, ok
}

// Measurement returns the MEASUREMENT column value, if present.
func (r ShipmentRow) Measurement() (string, bool) {
	_, v, ok := r.firstColumn("measurement")
	return v, ok
}

// UnitsMeasurement returns the UNITS_MEASUREMENT column value, if present.
func (r ShipmentRow) UnitsMeasurement() (string, bool) {
	_, v, ok := r.firstColumn("units", "measurement")
	return v, ok
}

// ShipmentIndex maps ETOF numbers to shipment rows. Duplicate ETOFs keep
// the first row seen.
type ShipmentIndex struct {
	rows map[string]ShipmentRow
}

// NewShipmentIndex creates an empty index.
func NewShipmentIndex() *ShipmentIndex {
	return &ShipmentIndex{rows: make(map[string]ShipmentRow)}
}

// Add stores a row under its ETOF unless that ETOF is already present.
func (idx *ShipmentIndex) Add(etof string, row ShipmentRow) {
	etof = strings.TrimSpace(etof)
	if etof == "" {
		return
	}

	if _, ok := idx.rows[etof]; ok {
		return
	}
	idx.rows[etof] = row
}

// Lookup returns the row for an ETOF.
func (idx *ShipmentIndex) Lookup(etof string) (ShipmentRow, bool) {
	row, ok := idx.rows[strings.TrimSpace(etof)]
	return row, ok
}

// Len returns the number of indexed shipments.
func (idx *ShipmentIndex) Len() int {
	return len(idx.rows)
}

// CostEntry is one row of an agreement's cost conditions: the cost name,
// its rating basis and its applicability clause.
type CostEntry struct {
	Name      string
	RateBy    string
	AppliesIf string
}

// BaseName returns the cost name with any trailing parenthetical removed,
// so "Fuel surcharge (FSC)" compares equal to "Fuel surcharge".
func (c CostEntry) BaseName() string {
	return strings.TrimSpace(parenSuffixRe.ReplaceAllString(c.Name, ""))
}

// baseName strips a trailing parenthetical from any cost name.
func baseName(name string) string {
	return strings.TrimSpace(parenSuffixRe.ReplaceAllString(name, ""))
}

// RateTable is the tabular price data of one agreement. The first column
// holds lane numbers; the remaining columns hold prices keyed by the
// rebuilt cost headers.
type RateTable struct {
	Columns []string
	Rows    [][]string
}

// laneRow returns the row whose first cell equals the lane number.
func (t *RateTable) laneRow(lane string) ([]string, bool) {
	lane = strings.TrimSpace(lane)
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(row[0]) == lane {
			return row, true
		}
	}

	return nil, false
}

// cell returns the value at a column index of a row, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// RateCard bundles everything known about one agreement: its number, its
// price table and its cost condition entries.
type RateCard struct {
	Agreement string
	Table     *RateTable
	Costs     []CostEntry
}

// AccessorialEntry is one accessorial cost definition. Price fields hold
// the raw cell text; they are empty when the cell held no usable number.
type AccessorialEntry struct {
	Name         string
	RateBy       string
	AppliesIf    string
	Lane         string
	PriceFlat    string
	PricePerUnit string
	HasMinFlat   bool
}

// AccessorialTable holds the accessorial entries of one agreement.
type AccessorialTable struct {
	Entries []AccessorialEntry
}

// NewAccessorialTable resolves column roles from the header row once and
// converts every data row into an entry. Later header matches win when
// two columns claim the same role.
func NewAccessorialTable(headers []string, rows [][]string) *AccessorialTable {
	nameIdx, rateIdx, condIdx, laneIdx, flatIdx, unitIdx, minIdx := -1, -1, -1, -1, -1, -1, -1

	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(lower, "cost") && strings.Contains(lower, "name"):
			nameIdx = i
		case strings.Contains(lower, "rate") && strings.Contains(lower, "by"):
			rateIdx = i
		case strings.Contains(lower, "applies") && strings.Contains(lower, "if"):
			condIdx = i
		case strings.Contains(lower, "lane"):
			laneIdx = i
		case strings.Contains(lower, "price flat"):
			flatIdx = i
		case strings.Contains(lower, "per unit") || strings.Contains(lower, "price per"):
			unitIdx = i
		case strings.Contains(lower, "has min") || strings.Contains(lower, "min flat"):
			minIdx = i
		}
	}

	tbl := &AccessorialTable{}
	for _, row := range rows {
		entry := AccessorialEntry{}
		if nameIdx >= 0 {
			entry.Name = strings.TrimSpace(cell(row, nameIdx))
		}
		if entry.Name == "" {
			continue
		}

		if rateIdx >= 0 {
			entry.RateBy = strings.TrimSpace(cell(row, rateIdx))
		}
		if condIdx >= 0 {
			entry.AppliesIf = strings.TrimSpace(cell(row, condIdx))
		}
		if laneIdx >= 0 {
			entry.Lane = utils.NormalizeLane(cell(row, laneIdx))
			if utils.IsBlank(entry.Lane) {
				entry.Lane = ""
			}
		}
		if flatIdx >= 0 {
			if raw := strings.TrimSpace(cell(row, flatIdx)); raw != "" {
				if _, ok := utils.ParseFloat(raw); ok {
					entry.PriceFlat = raw
				}
			}
		}
		if unitIdx >= 0 {
			if raw := strings.TrimSpace(cell(row, unitIdx)); raw != "" {
				if _, ok := utils.ParseFloat(raw); ok {
					entry.PricePerUnit = raw
				}
			}
		}
		if minIdx >= 0 {
			lower := strings.ToLower(strings.TrimSpace(cell(row, minIdx)))
			entry.HasMinFlat = lower == "true" || lower == "yes" || lower == "1"
		}

		tbl.Entries = append(tbl.Entries, entry)
	}

	return tbl
}

// MismatchRow is one flagged cost discrepancy awaiting reconciliation.
type MismatchRow struct {
	CostType  string
	ETOF      string
	Agreement string
	Comment   string
}

// RowResult is the reconciliation outcome for one mismatch row.
type RowResult struct {
	RateBy    string
	AppliesIf string
	Reason    string
}
