package database

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CompileError represents a catalog compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileString compiles an inline CUE catalog.
// The filename only appears in error positions.
func CompileString(src, filename string) (*Database, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	return Compile(v)
}

// LoadDir loads every .cue file in dir as one CUE instance and compiles it.
func LoadDir(dir string) (*Database, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog path is not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning catalog directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	ctx := cuecontext.New()
	return Compile(ctx.BuildInstance(inst))
}

// Load compiles a catalog from a .cue file or a directory of them.
func Load(path string) (*Database, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return CompileString(string(data), path)
}

// FindCUEFiles returns the .cue files directly inside dir.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// Compile converts a CUE value holding item, recipe and building structs
// into a Database.
func Compile(v cue.Value) (*Database, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	items, err := compileItems(v.LookupPath(cue.ParsePath("item")))
	if err != nil {
		return nil, err
	}
	recipes, err := compileRecipes(v.LookupPath(cue.ParsePath("recipe")))
	if err != nil {
		return nil, err
	}
	buildings, err := compileBuildings(v.LookupPath(cue.ParsePath("building")))
	if err != nil {
		return nil, err
	}

	if len(items) == 0 && len(recipes) == 0 && len(buildings) == 0 {
		return nil, &CompileError{
			Field:   "catalog",
			Message: "no items, recipes or buildings found",
			Pos:     v.Pos(),
		}
	}

	return New(buildings, recipes, items), nil
}

func compileItems(v cue.Value) ([]Item, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var items []Item
	for iter.Next() {
		id := iter.Label()
		val := iter.Value()

		name, err := optionalString(val, "name", id)
		if err != nil {
			return nil, err
		}
		energy, err := optionalFloat(val, "energy")
		if err != nil {
			return nil, err
		}
		items = append(items, Item{ID: ItemID(id), Name: name, Energy: energy})
	}
	return items, nil
}

func compileRecipes(v cue.Value) ([]Recipe, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var recipes []Recipe
	for iter.Next() {
		id := iter.Label()
		val := iter.Value()

		name, err := optionalString(val, "name", id)
		if err != nil {
			return nil, err
		}

		timeVal := val.LookupPath(cue.ParsePath("time"))
		if !timeVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("recipe.%s.time", id),
				Message: "recipe time is required",
				Pos:     val.Pos(),
			}
		}
		seconds, err := timeVal.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}

		ingredients, err := compileAmounts(val.LookupPath(cue.ParsePath("ingredients")))
		if err != nil {
			return nil, err
		}
		products, err := compileAmounts(val.LookupPath(cue.ParsePath("products")))
		if err != nil {
			return nil, err
		}

		recipes = append(recipes, Recipe{
			ID:          RecipeID(id),
			Name:        name,
			Time:        seconds,
			Ingredients: ingredients,
			Products:    products,
		})
	}
	return recipes, nil
}

func compileAmounts(v cue.Value) ([]ItemAmount, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var amounts []ItemAmount
	for iter.Next() {
		elem := iter.Value()
		item, err := elem.LookupPath(cue.ParsePath("item")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		amount, err := elem.LookupPath(cue.ParsePath("amount")).Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		amounts = append(amounts, ItemAmount{Item: ItemID(item), Amount: amount})
	}
	return amounts, nil
}

// kindFields are the mutually exclusive kind blocks of a building.
var kindFields = []string{"manufacturer", "miner", "generator", "pump"}

func compileBuildings(v cue.Value) ([]BuildingType, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var buildings []BuildingType
	for iter.Next() {
		id := iter.Label()
		val := iter.Value()

		name, err := optionalString(val, "name", id)
		if err != nil {
			return nil, err
		}

		var (
			kind  BuildingKind
			found int
		)
		for _, field := range kindFields {
			kv := val.LookupPath(cue.ParsePath(field))
			if !kv.Exists() {
				continue
			}
			found++
			kind, err = compileKind(field, kv)
			if err != nil {
				return nil, err
			}
		}
		if found != 1 {
			return nil, &CompileError{
				Field:   fmt.Sprintf("building.%s", id),
				Message: fmt.Sprintf("exactly one of %v is required, found %d", kindFields, found),
				Pos:     val.Pos(),
			}
		}

		buildings = append(buildings, BuildingType{ID: BuildingID(id), Name: name, Kind: kind})
	}
	return buildings, nil
}

func compileKind(field string, v cue.Value) (BuildingKind, error) {
	power, err := optionalFloat(v, "power_consumption")
	if err != nil {
		return nil, err
	}

	switch field {
	case "manufacturer":
		recipes, err := stringList(v, "available_recipes")
		if err != nil {
			return nil, err
		}
		m := Manufacturer{PowerConsumption: power}
		for _, r := range recipes {
			m.AvailableRecipes = append(m.AvailableRecipes, RecipeID(r))
		}
		return m, nil

	case "miner":
		resources, err := stringList(v, "allowed_resources")
		if err != nil {
			return nil, err
		}
		cycle, err := floatOr(v, "cycle_time", 1)
		if err != nil {
			return nil, err
		}
		perCycle, err := floatOr(v, "items_per_cycle", 1)
		if err != nil {
			return nil, err
		}
		m := Miner{CycleTime: cycle, ItemsPerCycle: perCycle, PowerConsumption: power}
		for _, r := range resources {
			m.AllowedResources = append(m.AllowedResources, ItemID(r))
		}
		return m, nil

	case "generator":
		fuels, err := stringList(v, "allowed_fuel")
		if err != nil {
			return nil, err
		}
		production, err := optionalFloat(v, "power_production")
		if err != nil {
			return nil, err
		}
		g := Generator{PowerProduction: production}
		for _, f := range fuels {
			g.AllowedFuel = append(g.AllowedFuel, ItemID(f))
		}
		return g, nil

	case "pump":
		resources, err := stringList(v, "allowed_resources")
		if err != nil {
			return nil, err
		}
		cycle, err := floatOr(v, "cycle_time", 1)
		if err != nil {
			return nil, err
		}
		perCycle, err := floatOr(v, "units_per_cycle", 1)
		if err != nil {
			return nil, err
		}
		p := Pump{CycleTime: cycle, UnitsPerCycle: perCycle, PowerConsumption: power}
		for _, r := range resources {
			p.AllowedResources = append(p.AllowedResources, ItemID(r))
		}
		return p, nil
	}

	return nil, &CompileError{Field: field, Message: "unknown building kind", Pos: v.Pos()}
}

func optionalString(v cue.Value, field, fallback string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return fallback, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalFloat(v cue.Value, field string) (float64, error) {
	return floatOr(v, field, 0)
}

func floatOr(v cue.Value, field string, fallback float64) (float64, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return fallback, nil
	}
	f, err := fv.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
