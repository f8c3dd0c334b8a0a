package database

import (
	"fmt"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownRecipe       = "E201" // manufacturer lists a recipe that does not exist
	ErrUnknownItem         = "E202" // recipe, miner, pump or generator references a missing item
	ErrNonPositiveTime     = "E203" // recipe or cycle time <= 0
	ErrFuelWithoutEnergy   = "E204" // generator fuel has no energy value
	ErrEmptyAllowList      = "E205" // building kind accepts nothing
	ErrNonPositiveQuantity = "E206" // ingredient/product amount <= 0
)

// ValidationError describes one inconsistency in a catalog.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate cross-checks every reference in the catalog.
// Returns all errors found (does not fail-fast), in deterministic order.
func Validate(db *Database) []ValidationError {
	var errs []ValidationError

	for _, id := range db.RecipeIDs() {
		r, _ := db.Recipe(id)
		field := fmt.Sprintf("recipe.%s", id)
		if r.Time <= 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".time",
				Message: fmt.Sprintf("time must be positive, got %v", r.Time),
				Code:    ErrNonPositiveTime,
			})
		}
		errs = append(errs, validateAmounts(db, field+".ingredients", r.Ingredients)...)
		errs = append(errs, validateAmounts(db, field+".products", r.Products)...)
	}

	for _, id := range db.BuildingIDs() {
		b, _ := db.Building(id)
		field := fmt.Sprintf("building.%s", id)

		switch k := b.Kind.(type) {
		case Manufacturer:
			if len(k.AvailableRecipes) == 0 {
				errs = append(errs, emptyAllowList(field+".manufacturer.available_recipes"))
			}
			for _, r := range k.AvailableRecipes {
				if _, ok := db.Recipe(r); !ok {
					errs = append(errs, ValidationError{
						Field:   field + ".manufacturer.available_recipes",
						Message: fmt.Sprintf("unknown recipe %q", r),
						Code:    ErrUnknownRecipe,
					})
				}
			}
		case Miner:
			errs = append(errs, validateExtractor(db, field+".miner", k.AllowedResources, k.CycleTime)...)
		case Pump:
			errs = append(errs, validateExtractor(db, field+".pump", k.AllowedResources, k.CycleTime)...)
		case Generator:
			if len(k.AllowedFuel) == 0 {
				errs = append(errs, emptyAllowList(field+".generator.allowed_fuel"))
			}
			for _, f := range k.AllowedFuel {
				item, ok := db.Item(f)
				if !ok {
					errs = append(errs, unknownItem(field+".generator.allowed_fuel", f))
					continue
				}
				if item.Energy <= 0 {
					errs = append(errs, ValidationError{
						Field:   field + ".generator.allowed_fuel",
						Message: fmt.Sprintf("fuel %q has no energy value", f),
						Code:    ErrFuelWithoutEnergy,
					})
				}
			}
		}
	}

	return errs
}

func validateAmounts(db *Database, field string, amounts []ItemAmount) []ValidationError {
	var errs []ValidationError
	for _, a := range amounts {
		if _, ok := db.Item(a.Item); !ok {
			errs = append(errs, unknownItem(field, a.Item))
		}
		if a.Amount <= 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("amount of %q must be positive, got %v", a.Item, a.Amount),
				Code:    ErrNonPositiveQuantity,
			})
		}
	}
	return errs
}

func validateExtractor(db *Database, field string, resources []ItemID, cycle float64) []ValidationError {
	var errs []ValidationError
	if len(resources) == 0 {
		errs = append(errs, emptyAllowList(field+".allowed_resources"))
	}
	for _, r := range resources {
		if _, ok := db.Item(r); !ok {
			errs = append(errs, unknownItem(field+".allowed_resources", r))
		}
	}
	if cycle <= 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".cycle_time",
			Message: fmt.Sprintf("cycle time must be positive, got %v", cycle),
			Code:    ErrNonPositiveTime,
		})
	}
	return errs
}

func unknownItem(field string, id ItemID) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("unknown item %q", id),
		Code:    ErrUnknownItem,
	}
}

func emptyAllowList(field string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: "must list at least one entry",
		Code:    ErrEmptyAllowList,
	}
}
