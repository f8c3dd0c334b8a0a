package database

import (
	"fmt"
	"slices"
)

// BuildingID identifies a building type in the catalog.
type BuildingID string

// RecipeID identifies a recipe in the catalog.
type RecipeID string

// ItemID identifies an item (resource, fuel or product) in the catalog.
type ItemID string

// IsSet reports whether the id refers to anything.
func (id BuildingID) IsSet() bool { return id != "" }

// IsSet reports whether the id refers to anything.
func (id RecipeID) IsSet() bool { return id != "" }

// IsSet reports whether the id refers to anything.
func (id ItemID) IsSet() bool { return id != "" }

// BuildingKindID is the closed set of building kinds.
type BuildingKindID int

const (
	KindManufacturer BuildingKindID = iota + 1
	KindMiner
	KindGenerator
	KindPump
)

// AllKinds lists every kind in declaration order.
var AllKinds = []BuildingKindID{KindManufacturer, KindMiner, KindGenerator, KindPump}

func (k BuildingKindID) String() string {
	switch k {
	case KindManufacturer:
		return "manufacturer"
	case KindMiner:
		return "miner"
	case KindGenerator:
		return "generator"
	case KindPump:
		return "pump"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a kind name back to its id.
func ParseKind(s string) (BuildingKindID, error) {
	for _, k := range AllKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown building kind %q", s)
}

// BuildingKind is a sealed interface describing what a building type does.
// Only Manufacturer, Miner, Generator and Pump implement it.
type BuildingKind interface {
	KindID() BuildingKindID
	buildingKind()
}

// Manufacturer turns ingredients into products using one of its recipes.
type Manufacturer struct {
	AvailableRecipes []RecipeID `json:"available_recipes"`
	PowerConsumption float64    `json:"power_consumption"` // MW at 100% clock
}

// Miner extracts a resource from a node.
type Miner struct {
	AllowedResources []ItemID `json:"allowed_resources"`
	CycleTime        float64  `json:"cycle_time"` // seconds
	ItemsPerCycle    float64  `json:"items_per_cycle"`
	PowerConsumption float64  `json:"power_consumption"`
}

// Generator burns a fuel to produce power.
type Generator struct {
	AllowedFuel     []ItemID `json:"allowed_fuel"`
	PowerProduction float64  `json:"power_production"` // MW at 100% clock
}

// Pump extracts a fluid resource.
type Pump struct {
	AllowedResources []ItemID `json:"allowed_resources"`
	CycleTime        float64  `json:"cycle_time"`
	UnitsPerCycle    float64  `json:"units_per_cycle"`
	PowerConsumption float64  `json:"power_consumption"`
}

func (Manufacturer) KindID() BuildingKindID { return KindManufacturer }
func (Miner) KindID() BuildingKindID        { return KindMiner }
func (Generator) KindID() BuildingKindID    { return KindGenerator }
func (Pump) KindID() BuildingKindID         { return KindPump }

func (Manufacturer) buildingKind() {}
func (Miner) buildingKind()        {}
func (Generator) buildingKind()    {}
func (Pump) buildingKind()         {}

// HasRecipe reports whether the manufacturer can run the recipe.
func (m Manufacturer) HasRecipe(id RecipeID) bool {
	return slices.Contains(m.AvailableRecipes, id)
}

// AllowsResource reports whether the miner can extract the item.
func (m Miner) AllowsResource(id ItemID) bool {
	return slices.Contains(m.AllowedResources, id)
}

// AllowsFuel reports whether the generator can burn the item.
func (g Generator) AllowsFuel(id ItemID) bool {
	return slices.Contains(g.AllowedFuel, id)
}

// AllowsResource reports whether the pump can extract the item.
func (p Pump) AllowsResource(id ItemID) bool {
	return slices.Contains(p.AllowedResources, id)
}

// BuildingType is one entry of the building catalog.
type BuildingType struct {
	ID   BuildingID   `json:"id"`
	Name string       `json:"name"`
	Kind BuildingKind `json:"-"`
}

// ItemAmount is a quantity of an item consumed or produced per recipe run.
type ItemAmount struct {
	Item   ItemID  `json:"item"`
	Amount float64 `json:"amount"`
}

// Recipe converts ingredients into products in Time seconds.
type Recipe struct {
	ID          RecipeID     `json:"id"`
	Name        string       `json:"name"`
	Time        float64      `json:"time"`
	Ingredients []ItemAmount `json:"ingredients"`
	Products    []ItemAmount `json:"products"`
}

// Item is a resource, fuel or intermediate product.
type Item struct {
	ID     ItemID  `json:"id"`
	Name   string  `json:"name"`
	Energy float64 `json:"energy,omitempty"` // MJ per unit when burned; zero if not a fuel
}
