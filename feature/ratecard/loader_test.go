package ratecard

import (
	"fmt"
	"path/filepath"
	"testing"

	"freight-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func writeRateCard(t *testing.T, path, agreement string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Rates"))
	_, err := f.NewSheet(generalInfoSheet)
	require.NoError(t, err)

	require.NoError(t, f.SetCellValue(generalInfoSheet, "A2", "Agreement number"))
	require.NoError(t, f.SetCellValue(generalInfoSheet, "B2", agreement))

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		require.NoError(t, f.SetSheetRow("Rates", fmt.Sprintf("A%d", i+1), &cells))
	}

	require.NoError(t, f.SaveAs(path))
}

func standardRateCardRows() [][]string {
	return [][]string{
		{"Carrier rate card"},
		{"", "Fuel surcharge", "", "", "", "Handling", ""},
		{"", "Rate by: chargeable weight/kg", "", "", "", "Rate by: shipment", ""},
		{"", "Applies if invoiced by carrier", "", "", "", "no condition", ""},
		{"", "", "", "MIN", "MAX", "", ""},
		{"", "Currency", "p/unit", "p/unit", "p/unit", "Currency", "Flat"},
		{"10", "EUR", "2.0", "300", "500", "EUR", "45.5"},
		{"20", "EUR", "2.0", "", "", "EUR", "50"},
		{"Notes", "see general info"},
	}
}

func TestLoadRebuildsHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "10500000_costs.xlsx")
	writeRateCard(t, path, "10500000", standardRateCardRows())

	card, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10500000", card.Agreement)
	assert.Equal(t, []string{
		"Lane #", "Fuel surcharge", "Price per unit", "Price per unit MIN",
		"Price per unit MAX", "Handling", "Price Flat",
	}, card.Table.Columns)

	require.Len(t, card.Table.Rows, 2)
	assert.Equal(t, "10", card.Table.Rows[0][0])
	assert.Equal(t, "45.5", card.Table.Rows[0][6])

	require.Len(t, card.Costs, 2)
	assert.Equal(t, "Fuel surcharge", card.Costs[0].Name)
	assert.Equal(t, "Rate by: chargeable weight/kg", card.Costs[0].RateBy)
	assert.Equal(t, "Applies if invoiced by carrier", card.Costs[0].AppliesIf)
	assert.Equal(t, "Handling", card.Costs[1].Name)
	assert.Equal(t, "no condition", card.Costs[1].AppliesIf)
}

func TestLoadBuildsWeightBandHeaders(t *testing.T) {
	rows := [][]string{
		{"Carrier rate card"},
		{"", "Handling", "", "", ""},
		{"", "Rate by: shipment", "", "", ""},
		{"", "Applies if weight bands apply", "", "", ""},
		{"", "", "<=200", "<=500", "<=1000"},
		{"", "Currency", "Flat", "Flat", "Flat"},
		{"10", "EUR", "30", "55", "90"},
	}

	path := filepath.Join(t.TempDir(), "10600000_costs.xlsx")
	writeRateCard(t, path, "10600000", rows)

	card, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Lane #", "Handling", "Price Flat <=200", "Price Flat >200 <=500", "Price Flat >500 <=1000",
	}, card.Table.Columns)

	price, reason := card.Table.FindPrice("10", "Handling", reconcile.PriceFlat, "300")
	require.Empty(t, reason)
	assert.Equal(t, "55", price.Value)
}

func TestLoadDropsNonNumericLanes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "10500000_costs.xlsx")
	writeRateCard(t, path, "10500000", standardRateCardRows())

	card, err := Load(path)
	require.NoError(t, err)

	for _, row := range card.Table.Rows {
		assert.NotEqual(t, "Notes", row[0])
	}
}

func TestLoadMissingAgreementNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken_costs.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Rates"))
	_, err := f.NewSheet(generalInfoSheet)
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agreement number not found")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeRateCard(t, filepath.Join(dir, "10500000_costs.xlsx"), "10500000", standardRateCardRows())
	writeAccessorial(t, filepath.Join(dir, "10500000_accessorial_costs.xlsx"))

	cards, err := LoadDir(dir, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Contains(t, cards, "10500000")
}

func TestLoadDirEmpty(t *testing.T) {
	_, err := LoadDir(t.TempDir(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rate card workbooks")
}

func writeAccessorial(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []any{"Cost name", "Rate by", "Applies if", "Lane", "Price flat", "Price per unit", "Has min flat"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))

	row1 := []any{"Waiting time", "Rate by: shipment", "no condition", "10", "50", "", "no"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row1))
	row2 := []any{"Extra handling", "Rate by: chargeable weight/kg", "", "", "100", "0.5", "yes"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &row2))

	require.NoError(t, f.SaveAs(path))
}

func TestLoadAccessorial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "10500000_accessorial_costs.xlsx")
	writeAccessorial(t, path)

	tbl, err := LoadAccessorial(path)
	require.NoError(t, err)
	require.Len(t, tbl.Entries, 2)

	assert.Equal(t, "Waiting time", tbl.Entries[0].Name)
	assert.Equal(t, "10", tbl.Entries[0].Lane)
	assert.Equal(t, "50", tbl.Entries[0].PriceFlat)
	assert.True(t, tbl.Entries[1].HasMinFlat)
}

func TestAccessorialLoaderDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeAccessorial(t, filepath.Join(dir, "10500000_accessorial_costs.xlsx"))

	load := NewAccessorialLoader(dir, zap.NewNop())

	tbl, err := load("10500000")
	require.NoError(t, err)
	require.NotNil(t, tbl)
	assert.Len(t, tbl.Entries, 2)

	// Partial agreement numbers resolve against file prefixes.
	tbl, err = load("500000")
	require.NoError(t, err)
	assert.NotNil(t, tbl)

	tbl, err = load("99999999")
	require.NoError(t, err)
	assert.Nil(t, tbl)
}
