package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesCostName(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		expected  bool
	}{
		{"exact", "Fuel surcharge", "Fuel surcharge", true},
		{"case insensitive", "fuel surcharge", "FUEL SURCHARGE", true},
		{"base name equal", "Fuel surcharge", "Fuel surcharge (FSC)", true},
		{"candidate prefix", "Fuel", "Fuel surcharge", true},
		{"query prefix", "Fuel surcharge extra", "Fuel surcharge", true},
		{"no plain substring", "Fuel", "Refuel handling", false},
		{"no mid-string containment", "DGR Fee", "Air DGR Fee", false},
		{"parenthetical variant", "DGR Fee", "DGR Fee (Hazardous)", true},
		{"unrelated", "Customs", "Fuel surcharge", false},
		{"empty query", "", "Fuel surcharge", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchesCostName(tt.query, tt.candidate))
		})
	}
}

func TestFindBestCostSingleMatch(t *testing.T) {
	costs := []CostEntry{
		{Name: "Fuel surcharge", RateBy: "Rate by: weight"},
		{Name: "Customs clearance", RateBy: "Rate by: shipment"},
	}

	got, ok := FindBestCost("Fuel surcharge", costs, ShipmentRow{}, "ETOF1")
	require.True(t, ok)
	assert.Equal(t, "Fuel surcharge", got.Name)
}

func TestFindBestCostNoMatch(t *testing.T) {
	costs := []CostEntry{{Name: "Fuel surcharge"}}

	_, ok := FindBestCost("Demurrage", costs, ShipmentRow{}, "ETOF1")
	assert.False(t, ok)
}

func TestFindBestCostPrefersSatisfiedConditions(t *testing.T) {
	costs := []CostEntry{
		{Name: "Fuel surcharge", AppliesIf: "no condition"},
		{Name: "Fuel surcharge domestic", AppliesIf: "Origin Country equals 'DE'"},
	}
	row := shipmentRow("SHIP_COUNTRY", "DE")

	got, ok := FindBestCost("Fuel surcharge", costs, row, "ETOF1")
	require.True(t, ok)
	assert.Equal(t, "Fuel surcharge domestic", got.Name)
}

func TestFindBestCostFallsBackToUnconditioned(t *testing.T) {
	costs := []CostEntry{
		{Name: "Fuel surcharge domestic", AppliesIf: "Origin Country equals 'DE'"},
		{Name: "Fuel surcharge", AppliesIf: "no condition"},
	}
	row := shipmentRow("SHIP_COUNTRY", "FR")

	got, ok := FindBestCost("Fuel surcharge", costs, row, "ETOF1")
	require.True(t, ok)
	assert.Equal(t, "Fuel surcharge", got.Name)
}

func TestFindBestCostShortestUnconditionedWins(t *testing.T) {
	costs := []CostEntry{
		{Name: "Fuel surcharge extended", AppliesIf: ""},
		{Name: "Fuel surcharge", AppliesIf: ""},
	}

	got, ok := FindBestCost("Fuel surcharge", costs, ShipmentRow{}, "ETOF1")
	require.True(t, ok)
	assert.Equal(t, "Fuel surcharge", got.Name)
}

func TestFindBestCostStableOnTies(t *testing.T) {
	costs := []CostEntry{
		{Name: "Fuel surcharge A"},
		{Name: "Fuel surcharge B"},
	}

	for i := 0; i < 10; i++ {
		got, ok := FindBestCost("Fuel surcharge", costs, ShipmentRow{}, "ETOF1")
		require.True(t, ok)
		assert.Equal(t, "Fuel surcharge A", got.Name)
	}
}

func TestLookupCostConditionsAllowsSubstring(t *testing.T) {
	costs := []CostEntry{
		{Name: "Extended fuel surcharge", RateBy: "Rate by: weight", AppliesIf: "no condition"},
	}

	rateBy, appliesIf, ok := lookupCostConditions("fuel surcharge", costs)
	require.True(t, ok)
	assert.Equal(t, "Rate by: weight", rateBy)
	assert.Equal(t, "no condition", appliesIf)
}

func TestFindBestAccessorialLaneFilter(t *testing.T) {
	tbl := &AccessorialTable{Entries: []AccessorialEntry{
		{Name: "Waiting time", Lane: "10", PriceFlat: "50"},
		{Name: "Waiting time", Lane: "20", PriceFlat: "75"},
		{Name: "Waiting time", Lane: "", PriceFlat: "60"},
	}}

	got, ok := FindBestAccessorial("Waiting time", tbl, "20", ShipmentRow{}, "ETOF1")
	require.True(t, ok)
	assert.Equal(t, "75", got.PriceFlat)
}

func TestFindBestAccessorialNoLaneMatchesUnbound(t *testing.T) {
	tbl := &AccessorialTable{Entries: []AccessorialEntry{
		{Name: "Waiting time", Lane: "10", PriceFlat: "50"},
		{Name: "Waiting time", Lane: "", PriceFlat: "60"},
	}}

	got, ok := FindBestAccessorial("Waiting time", tbl, "", ShipmentRow{}, "ETOF1")
	require.True(t, ok)
	assert.Equal(t, "60", got.PriceFlat)
}

func TestFindBestAccessorialFallsBackPastLaneFilter(t *testing.T) {
	tbl := &AccessorialTable{Entries: []AccessorialEntry{
		{Name: "Waiting time", Lane: "10", PriceFlat: "50"},
	}}

	got, ok := FindBestAccessorial("Waiting time", tbl, "30", ShipmentRow{}, "ETOF1")
	require.True(t, ok)
	assert.Equal(t, "50", got.PriceFlat)
}

func TestFindBestAccessorialNilTable(t *testing.T) {
	_, ok := FindBestAccessorial("Waiting time", nil, "", ShipmentRow{}, "ETOF1")
	assert.False(t, ok)
}
