package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_SampleIsClean(t *testing.T) {
	db, err := CompileString(sampleCatalog, "sample.cue")
	require.NoError(t, err)

	assert.Empty(t, Validate(db))
}

func TestValidate_DanglingReferences(t *testing.T) {
	db := New(
		[]BuildingType{
			{ID: "constructor", Kind: Manufacturer{AvailableRecipes: []RecipeID{"missing_recipe"}}},
			{ID: "miner", Kind: Miner{AllowedResources: []ItemID{"ghost_ore"}, CycleTime: 1}},
		},
		nil,
		nil,
	)

	errs := Validate(db)
	assert.Equal(t, []string{ErrUnknownRecipe, ErrUnknownItem}, codes(errs))
}

func TestValidate_RecipeChecks(t *testing.T) {
	db := New(
		nil,
		[]Recipe{{
			ID:          "bad",
			Time:        0,
			Ingredients: []ItemAmount{{Item: "nowhere", Amount: 1}},
			Products:    []ItemAmount{{Item: "plate", Amount: 0}},
		}},
		[]Item{{ID: "plate"}},
	)

	errs := Validate(db)
	assert.Equal(t, []string{ErrNonPositiveTime, ErrUnknownItem, ErrNonPositiveQuantity}, codes(errs))
}

func TestValidate_GeneratorFuel(t *testing.T) {
	db := New(
		[]BuildingType{
			{ID: "gen", Kind: Generator{AllowedFuel: []ItemID{"rock", "void"}, PowerProduction: 10}},
			{ID: "idle", Kind: Generator{}},
		},
		nil,
		[]Item{{ID: "rock"}},
	)

	errs := Validate(db)
	assert.Equal(t, []string{ErrFuelWithoutEnergy, ErrUnknownItem, ErrEmptyAllowList}, codes(errs))
}

func TestValidate_PumpCycle(t *testing.T) {
	db := New(
		[]BuildingType{{ID: "pump", Kind: Pump{AllowedResources: []ItemID{"water"}}}},
		nil,
		[]Item{{ID: "water"}},
	)

	errs := Validate(db)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNonPositiveTime, errs[0].Code)
	assert.Equal(t, "building.pump.pump.cycle_time", errs[0].Field)
}
