package testutil

import (
	"github.com/roach88/factoryledger/internal/database"
)

// Sample catalog ids.
const (
	IronOre     database.ItemID = "iron_ore"
	CopperOre   database.ItemID = "copper_ore"
	IronIngot   database.ItemID = "iron_ingot"
	CopperIngot database.ItemID = "copper_ingot"
	IronPlate   database.ItemID = "iron_plate"
	Coal        database.ItemID = "coal"
	Fuel        database.ItemID = "fuel"
	Water       database.ItemID = "water"

	RecipeIronIngot   database.RecipeID = "iron_ingot"
	RecipeCopperIngot database.RecipeID = "copper_ingot"
	RecipeIronPlate   database.RecipeID = "iron_plate"

	Smelter        database.BuildingID = "smelter"
	Constructor    database.BuildingID = "constructor"
	MinerMk1       database.BuildingID = "miner_mk1"
	CoalGenerator  database.BuildingID = "coal_generator"
	FuelGenerator  database.BuildingID = "fuel_generator"
	WaterExtractor database.BuildingID = "water_extractor"
)

// SampleDatabase returns a small catalog covering every building kind.
//
// Rates at 100% clock:
//   - smelter on iron_ingot: -30 iron_ore, +30 iron_ingot, -4 MW
//   - constructor on iron_plate: -30 iron_ingot, +20 iron_plate, -4 MW
//   - miner_mk1: +60 of its resource, -5 MW
//   - coal_generator on coal: +75 MW, -15 coal
//   - water_extractor on water: +120 water, -20 MW
func SampleDatabase() *database.Database {
	items := []database.Item{
		{ID: IronOre, Name: "Iron Ore"},
		{ID: CopperOre, Name: "Copper Ore"},
		{ID: IronIngot, Name: "Iron Ingot"},
		{ID: CopperIngot, Name: "Copper Ingot"},
		{ID: IronPlate, Name: "Iron Plate"},
		{ID: Coal, Name: "Coal", Energy: 300},
		{ID: Fuel, Name: "Fuel", Energy: 750},
		{ID: Water, Name: "Water"},
	}
	recipes := []database.Recipe{
		{
			ID: RecipeIronIngot, Name: "Iron Ingot", Time: 2,
			Ingredients: []database.ItemAmount{{Item: IronOre, Amount: 1}},
			Products:    []database.ItemAmount{{Item: IronIngot, Amount: 1}},
		},
		{
			ID: RecipeCopperIngot, Name: "Copper Ingot", Time: 2,
			Ingredients: []database.ItemAmount{{Item: CopperOre, Amount: 1}},
			Products:    []database.ItemAmount{{Item: CopperIngot, Amount: 1}},
		},
		{
			ID: RecipeIronPlate, Name: "Iron Plate", Time: 6,
			Ingredients: []database.ItemAmount{{Item: IronIngot, Amount: 3}},
			Products:    []database.ItemAmount{{Item: IronPlate, Amount: 2}},
		},
	}
	buildings := []database.BuildingType{
		{ID: Smelter, Name: "Smelter", Kind: database.Manufacturer{
			AvailableRecipes: []database.RecipeID{RecipeIronIngot, RecipeCopperIngot},
			PowerConsumption: 4,
		}},
		{ID: Constructor, Name: "Constructor", Kind: database.Manufacturer{
			AvailableRecipes: []database.RecipeID{RecipeIronPlate},
			PowerConsumption: 4,
		}},
		{ID: MinerMk1, Name: "Miner Mk.1", Kind: database.Miner{
			AllowedResources: []database.ItemID{IronOre, CopperOre, Coal},
			CycleTime:        1,
			ItemsPerCycle:    1,
			PowerConsumption: 5,
		}},
		{ID: CoalGenerator, Name: "Coal Generator", Kind: database.Generator{
			AllowedFuel:     []database.ItemID{Coal},
			PowerProduction: 75,
		}},
		{ID: FuelGenerator, Name: "Fuel Generator", Kind: database.Generator{
			AllowedFuel:     []database.ItemID{Fuel},
			PowerProduction: 150,
		}},
		{ID: WaterExtractor, Name: "Water Extractor", Kind: database.Pump{
			AllowedResources: []database.ItemID{Water},
			CycleTime:        1,
			UnitsPerCycle:    2,
			PowerConsumption: 20,
		}},
	}
	return database.New(buildings, recipes, items)
}

// SampleCatalogCUE is SampleDatabase written as a CUE catalog.
const SampleCatalogCUE = `
item: {
	iron_ore: name:     "Iron Ore"
	copper_ore: name:   "Copper Ore"
	iron_ingot: name:   "Iron Ingot"
	copper_ingot: name: "Copper Ingot"
	iron_plate: name:   "Iron Plate"
	coal: {name: "Coal", energy: 300}
	fuel: {name: "Fuel", energy: 750}
	water: name: "Water"
}

recipe: {
	iron_ingot: {
		name: "Iron Ingot"
		time: 2
		ingredients: [{item: "iron_ore", amount: 1}]
		products: [{item: "iron_ingot", amount: 1}]
	}
	copper_ingot: {
		name: "Copper Ingot"
		time: 2
		ingredients: [{item: "copper_ore", amount: 1}]
		products: [{item: "copper_ingot", amount: 1}]
	}
	iron_plate: {
		name: "Iron Plate"
		time: 6
		ingredients: [{item: "iron_ingot", amount: 3}]
		products: [{item: "iron_plate", amount: 2}]
	}
}

building: {
	smelter: {
		name: "Smelter"
		manufacturer: {available_recipes: ["iron_ingot", "copper_ingot"], power_consumption: 4}
	}
	constructor: {
		name: "Constructor"
		manufacturer: {available_recipes: ["iron_plate"], power_consumption: 4}
	}
	miner_mk1: {
		name: "Miner Mk.1"
		miner: {allowed_resources: ["iron_ore", "copper_ore", "coal"], power_consumption: 5}
	}
	coal_generator: {
		name: "Coal Generator"
		generator: {allowed_fuel: ["coal"], power_production: 75}
	}
	fuel_generator: {
		name: "Fuel Generator"
		generator: {allowed_fuel: ["fuel"], power_production: 150}
	}
	water_extractor: {
		name: "Water Extractor"
		pump: {allowed_resources: ["water"], units_per_cycle: 2, power_consumption: 20}
	}
}
`
