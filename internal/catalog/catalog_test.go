package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() Spec {
	return Spec{
		Fields: []FieldSpec{
			{TargetField: "alpha", DisplayName: "Alpha", Required: true, DataType: "string"},
			{TargetField: "beta", DisplayName: "Beta", DataType: "number"},
			{TargetField: "gamma", DisplayName: "Gamma", DataType: "date"},
		},
		Tiers: []TierSpec{
			{Tier: 1, Name: "Base", RequiredFields: []string{"alpha"}},
			{Tier: 2, Name: "Full", RequiredFields: []string{"alpha", "beta"}},
		},
	}
}

func TestBuild(t *testing.T) {
	reg, err := Build(validSpec())
	require.NoError(t, err)

	assert.Equal(t, "Alpha", reg.Field("alpha").DisplayName)
	assert.Nil(t, reg.Field("nope"))
	assert.Len(t, reg.Fields(), 3)
	assert.Equal(t, 1, reg.BaseTier().Tier)
	assert.Equal(t, 2, reg.TopTier().Tier)
	assert.Nil(t, reg.Tier(9))
}

func TestBuildOrdersTiers(t *testing.T) {
	spec := validSpec()
	spec.Tiers[0], spec.Tiers[1] = spec.Tiers[1], spec.Tiers[0]
	reg, err := Build(spec)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Tiers()[0].Tier)
	assert.Equal(t, 2, reg.Tiers()[1].Tier)
}

func TestBuildRejectsBadSpecs(t *testing.T) {
	t.Run("duplicate target field", func(t *testing.T) {
		spec := validSpec()
		spec.Fields = append(spec.Fields, FieldSpec{TargetField: "alpha"})
		_, err := Build(spec)
		assert.ErrorContains(t, err, "duplicate target_field")
	})

	t.Run("unknown data type", func(t *testing.T) {
		spec := validSpec()
		spec.Fields[0].DataType = "decimal"
		_, err := Build(spec)
		assert.ErrorContains(t, err, "unknown data_type")
	})

	t.Run("invalid pattern", func(t *testing.T) {
		spec := validSpec()
		spec.Fields[0].Patterns = []string{"("}
		_, err := Build(spec)
		assert.ErrorContains(t, err, "invalid pattern")
	})

	t.Run("tier references unknown field", func(t *testing.T) {
		spec := validSpec()
		spec.Tiers[0].RequiredFields = []string{"ghost"}
		_, err := Build(spec)
		assert.ErrorContains(t, err, "unknown field")
	})

	t.Run("tier does not subsume previous", func(t *testing.T) {
		spec := validSpec()
		spec.Tiers[1].RequiredFields = []string{"beta"}
		_, err := Build(spec)
		assert.ErrorContains(t, err, "does not subsume")
	})

	t.Run("duplicate tier number", func(t *testing.T) {
		spec := validSpec()
		spec.Tiers[1].Tier = 1
		_, err := Build(spec)
		assert.ErrorContains(t, err, "duplicate tier")
	})
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load([]byte("fields: [not a mapping"))
	assert.Error(t, err)
}

func TestDefaultCatalog(t *testing.T) {
	reg := Default()

	// Target keys are globally unique by construction; verify the shipped
	// document survives Build and exposes the three tiers.
	require.Len(t, reg.Tiers(), 3)

	for _, key := range []string{
		"work_order_number", "material_code", "machine_id", "supplier_id",
		"planned_material_cost", "actual_material_cost",
		"units_produced", "units_scrapped", "production_date",
	} {
		assert.NotNil(t, reg.Field(key), "missing field %q", key)
	}

	base := reg.BaseTier()
	assert.ElementsMatch(t,
		[]string{"work_order_number", "planned_material_cost", "actual_material_cost"},
		base.RequiredFields)

	// Every required-flag field is part of the tier-1 baseline.
	for _, f := range reg.Fields() {
		if f.Required {
			assert.Contains(t, base.RequiredFields, f.TargetField)
		}
	}

	// Each tier strictly subsumes the previous tier's requirements.
	tiers := reg.Tiers()
	for i := 1; i < len(tiers); i++ {
		for _, key := range tiers[i-1].RequiredFields {
			assert.Contains(t, tiers[i].RequiredFields, key,
				"tier %d must subsume tier %d", tiers[i].Tier, tiers[i-1].Tier)
		}
		assert.Greater(t, len(tiers[i].RequiredFields), len(tiers[i-1].RequiredFields))
	}

	// Default is shared and stable.
	assert.Same(t, reg, Default())
}
