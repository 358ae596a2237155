package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	mappings := []Mapping{
		manual("WO Number", "work_order_number"),
		manual("Mat Cost", "actual_material_cost"),
		{SourceColumn: "Notes"}, // unmapped, dropped
	}
	rows := []map[string]string{
		{"WO Number": "WO-1001", "Mat Cost": "125.50", "Notes": "rush order"},
		{"WO Number": "WO-1002", "Notes": "second shift"},
	}

	got := Apply(mappings, rows)

	assert.Equal(t, []map[string]string{
		{"work_order_number": "WO-1001", "actual_material_cost": "125.50"},
		{"work_order_number": "WO-1002"},
	}, got)

	// Input rows are untouched.
	assert.Equal(t, "rush order", rows[0]["Notes"])
}

func TestApplyEmpty(t *testing.T) {
	assert.Empty(t, Apply(nil, nil))
	assert.Equal(t, []map[string]string{{}}, Apply(nil, []map[string]string{{"a": "1"}}))
}
