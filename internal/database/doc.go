// Package database provides the read-only catalog that the accounting graph
// is resolved against: building types, recipes and items.
//
// This package imports nothing internal. Identifiers are opaque string tokens;
// the empty string means "unset" everywhere an identifier is optional.
//
// Catalogs are written in CUE and compiled with the CUE Go API:
//
//	item: iron_ore: name: "Iron Ore"
//	recipe: iron_ingot: {
//		name: "Iron Ingot"
//		time: 2
//		ingredients: [{item: "iron_ore", amount: 1}]
//		products: [{item: "iron_ingot", amount: 1}]
//	}
//	building: smelter: {
//		name: "Smelter"
//		manufacturer: {power_consumption: 4, available_recipes: ["iron_ingot"]}
//	}
//
// A *Database is never mutated after compilation and is safe for concurrent
// readers.
package database
