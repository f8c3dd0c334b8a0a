package database

import (
	"maps"
	"slices"
)

// Lookup is the query surface the accounting core depends on.
// All methods are pure and side-effect free.
type Lookup interface {
	Building(id BuildingID) (*BuildingType, bool)
	Recipe(id RecipeID) (*Recipe, bool)
	Item(id ItemID) (*Item, bool)
}

// Database is an in-memory catalog. It is built once (by Compile, LoadDir or
// New) and only read afterwards.
type Database struct {
	buildings map[BuildingID]*BuildingType
	recipes   map[RecipeID]*Recipe
	items     map[ItemID]*Item
}

var _ Lookup = (*Database)(nil)

// New builds a Database from explicit records. Later duplicates replace
// earlier ones.
func New(buildings []BuildingType, recipes []Recipe, items []Item) *Database {
	db := &Database{
		buildings: make(map[BuildingID]*BuildingType, len(buildings)),
		recipes:   make(map[RecipeID]*Recipe, len(recipes)),
		items:     make(map[ItemID]*Item, len(items)),
	}
	for i := range buildings {
		b := buildings[i]
		db.buildings[b.ID] = &b
	}
	for i := range recipes {
		r := recipes[i]
		db.recipes[r.ID] = &r
	}
	for i := range items {
		it := items[i]
		db.items[it.ID] = &it
	}
	return db
}

// Building looks up a building type.
func (db *Database) Building(id BuildingID) (*BuildingType, bool) {
	b, ok := db.buildings[id]
	return b, ok
}

// Recipe looks up a recipe.
func (db *Database) Recipe(id RecipeID) (*Recipe, bool) {
	r, ok := db.recipes[id]
	return r, ok
}

// Item looks up an item.
func (db *Database) Item(id ItemID) (*Item, bool) {
	it, ok := db.items[id]
	return it, ok
}

// KindOf resolves the kind of a building id. Reports false for unset or
// unknown ids.
func KindOf(db Lookup, id BuildingID) (BuildingKindID, bool) {
	if !id.IsSet() {
		return 0, false
	}
	b, ok := db.Building(id)
	if !ok || b.Kind == nil {
		return 0, false
	}
	return b.Kind.KindID(), true
}

// BuildingIDs returns all building ids in sorted order.
func (db *Database) BuildingIDs() []BuildingID {
	return slices.Sorted(maps.Keys(db.buildings))
}

// RecipeIDs returns all recipe ids in sorted order.
func (db *Database) RecipeIDs() []RecipeID {
	return slices.Sorted(maps.Keys(db.recipes))
}

// ItemIDs returns all item ids in sorted order.
func (db *Database) ItemIDs() []ItemID {
	return slices.Sorted(maps.Keys(db.items))
}

// Stats summarises catalog size.
type Stats struct {
	Buildings int `json:"buildings"`
	Recipes   int `json:"recipes"`
	Items     int `json:"items"`
}

// Stats returns the number of records of each type.
func (db *Database) Stats() Stats {
	return Stats{
		Buildings: len(db.buildings),
		Recipes:   len(db.recipes),
		Items:     len(db.items),
	}
}
