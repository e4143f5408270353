package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shipmentRow(pairs ...string) ShipmentRow {
	var headers, values []string
	for i := 0; i+1 < len(pairs); i += 2 {
		headers = append(headers, pairs[i])
		values = append(values, pairs[i+1])
	}
	return NewShipmentRow(headers, values)
}

func TestEvaluateConditionsEquals(t *testing.T) {
	row := shipmentRow("Carrier Name", "Bollore DE (EUR)")
	conds := []Condition{{Column: "Carrier Name", Op: OpEquals, Values: []string{"Bollore DE (EUR)"}}}

	ok, msg := EvaluateConditions(conds, "ETOF1", row)
	assert.True(t, ok)
	assert.Empty(t, msg)
}

func TestEvaluateConditionsEqualsFailureMessage(t *testing.T) {
	row := shipmentRow("Carrier Name", "DHL")
	conds := []Condition{{Column: "Carrier Name", Op: OpEquals, Values: []string{"Bollore DE (EUR)"}}}

	ok, msg := EvaluateConditions(conds, "ETOF1", row)
	assert.False(t, ok)
	assert.Equal(t, "Applies If not met: Carrier Name is 'DHL', expected one of ['Bollore DE (EUR)']", msg)
}

func TestEvaluateConditionsCaseInsensitive(t *testing.T) {
	row := shipmentRow("Carrier Name", "dhl express")
	conds := []Condition{{Column: "Carrier Name", Op: OpStartsWith, Values: []string{"DHL"}}}

	ok, _ := EvaluateConditions(conds, "ETOF1", row)
	assert.True(t, ok)
}

func TestEvaluateConditionsColumnSynonyms(t *testing.T) {
	row := shipmentRow("SHIP_COUNTRY", "DE", "CUST_COUNTRY", "FR")

	conds := []Condition{
		{Column: "Origin Country", Op: OpEquals, Values: []string{"DE"}},
		{Column: "Destination Country", Op: OpEquals, Values: []string{"FR"}},
	}

	ok, msg := EvaluateConditions(conds, "ETOF1", row)
	assert.True(t, ok, msg)
}

func TestEvaluateConditionsNormalizedNames(t *testing.T) {
	row := shipmentRow("carrier_name", "DHL")
	conds := []Condition{{Column: "Carrier Name", Op: OpEquals, Values: []string{"DHL"}}}

	ok, _ := EvaluateConditions(conds, "ETOF1", row)
	assert.True(t, ok)
}

func TestEvaluateConditionsMissingColumnFailsClosed(t *testing.T) {
	row := shipmentRow("Carrier Name", "DHL")
	conds := []Condition{{Column: "Incoterm", Op: OpEquals, Values: []string{"DAP"}}}

	ok, msg := EvaluateConditions(conds, "ETOF9", row)
	assert.False(t, ok)
	assert.Equal(t, "Column 'Incoterm' not found in shipment data for ETOF ETOF9", msg)
}

func TestEvaluateConditionsBlankActsAsEmpty(t *testing.T) {
	row := shipmentRow("Carrier Name", "nan")
	conds := []Condition{{Column: "Carrier Name", Op: OpEquals, Values: []string{"DHL"}}}

	ok, msg := EvaluateConditions(conds, "ETOF1", row)
	assert.False(t, ok)
	assert.Contains(t, msg, "Carrier Name is ''")
}

func TestEvaluateConditionsDoesNotEqual(t *testing.T) {
	row := shipmentRow("Carrier Name", "DHL")

	conds := []Condition{{Column: "Carrier Name", Op: OpDoesNotEqual, Values: []string{"UPS"}}}
	ok, _ := EvaluateConditions(conds, "ETOF1", row)
	assert.True(t, ok)

	conds[0].Values = []string{"DHL"}
	ok, msg := EvaluateConditions(conds, "ETOF1", row)
	assert.False(t, ok)
	assert.Equal(t, "Applies If not met: Carrier Name is 'DHL', should not be one of ['DHL']", msg)
}

func TestEvaluateConditionsContains(t *testing.T) {
	row := shipmentRow("Service Level", "Express Plus")

	conds := []Condition{{Column: "Service Level", Op: OpContains, Values: []string{"express"}}}
	ok, _ := EvaluateConditions(conds, "ETOF1", row)
	assert.True(t, ok)

	conds[0].Op = OpDoesNotContain
	ok, msg := EvaluateConditions(conds, "ETOF1", row)
	assert.False(t, ok)
	assert.Equal(t, "Applies If not met: Service Level is 'Express Plus', should not contain any of ['express']", msg)
}

func TestEvaluateConditionsFirstFailureReported(t *testing.T) {
	row := shipmentRow("A", "1", "B", "2")
	conds := []Condition{
		{Column: "A", Op: OpEquals, Values: []string{"9"}},
		{Column: "B", Op: OpEquals, Values: []string{"9"}},
	}

	ok, msg := EvaluateConditions(conds, "ETOF1", row)
	require.False(t, ok)
	assert.Contains(t, msg, "A is '1'")
}
