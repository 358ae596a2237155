package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantmetrics/schemamap/internal/catalog"
	"github.com/plantmetrics/schemamap/internal/tier"
)

func TestBuildReportSuccess(t *testing.T) {
	reg := catalog.Default()
	res := NewResolver(reg).AutoMap([]string{
		"Work Order Number", "Planned Material Cost", "Actual Material Cost",
	})
	tr := tier.NewClassifier(reg).Classify(TargetFields(res.Mappings))

	r := BuildReport(reg, res, tr)

	assert.True(t, r.Success)
	assert.Equal(t, 3, r.MappedCount)
	assert.Empty(t, r.MissingRequired)
	assert.Contains(t, r.Message, "All required columns mapped")
	assert.Contains(t, r.TierMessage, "Essential")
	assert.Contains(t, r.TierMessage, "Pattern")
	assert.Contains(t, r.TierMessage, "material_code")
}

func TestBuildReportMissingRequired(t *testing.T) {
	reg := catalog.Default()
	res := NewResolver(reg).AutoMap([]string{"Work Order Number", "Shift"})
	tr := tier.NewClassifier(reg).Classify(TargetFields(res.Mappings))

	r := BuildReport(reg, res, tr)

	assert.False(t, r.Success)
	require.Len(t, r.MissingRequired, 2)

	targets := []string{r.MissingRequired[0].TargetField, r.MissingRequired[1].TargetField}
	assert.ElementsMatch(t, []string{"planned_material_cost", "actual_material_cost"}, targets)
	assert.NotEmpty(t, r.MissingRequired[0].Examples, "missing fields should suggest example headers")
	assert.Contains(t, r.Message, "Missing required fields")
}

func TestBuildReportTopTierHasNoNextHint(t *testing.T) {
	reg := catalog.Default()
	var all []string
	for _, f := range reg.Fields() {
		all = append(all, f.TargetField)
	}
	tr := tier.NewClassifier(reg).Classify(all)
	require.Equal(t, 3, tr.Tier)

	r := BuildReport(reg, AutoMapResult{}, tr)
	assert.NotContains(t, r.TierMessage, "To reach")
}
