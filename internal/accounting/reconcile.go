package accounting

import (
	"github.com/roach88/factoryledger/internal/database"
)

// IsShapedFor reports whether s is the settings variant for kind.
// nil settings are not shaped for any kind.
func IsShapedFor(s BuildingSettings, kind database.BuildingKindID) bool {
	return s != nil && s.Kind() == kind
}

// DefaultSettings returns empty settings of the given kind running at clock.
// Returns nil for a kind outside the closed set.
func DefaultSettings(kind database.BuildingKindID, clock float64) BuildingSettings {
	switch kind {
	case database.KindManufacturer:
		return ManufacturerSettings{ClockSpeed: clock}
	case database.KindMiner:
		return MinerSettings{ClockSpeed: clock}
	case database.KindGenerator:
		return GeneratorSettings{ClockSpeed: clock}
	case database.KindPump:
		return PumpSettings{ClockSpeed: clock}
	default:
		return nil
	}
}

// ReconcileSettings produces settings shaped for kind from old.
//
// Settings already shaped for kind are returned unchanged. Otherwise the
// defaults for kind are returned with only the clock speed carried over;
// recipe, resource and fuel selections reset to unset.
func ReconcileSettings(old BuildingSettings, kind database.BuildingKindID) BuildingSettings {
	if IsShapedFor(old, kind) {
		return old
	}
	return DefaultSettings(kind, ClockSpeedOf(old))
}

// SelectRecipe returns manufacturer settings with the recipe replaced.
// repaired is true when old was not manufacturer-shaped and had to be rebuilt
// from defaults (keeping only the clock speed).
func SelectRecipe(old BuildingSettings, recipe database.RecipeID) (s BuildingSettings, repaired bool) {
	ms, ok := old.(ManufacturerSettings)
	if !ok {
		ms = ReconcileSettings(old, database.KindManufacturer).(ManufacturerSettings)
		repaired = true
	}
	ms.Recipe = recipe
	return ms, repaired
}

// SelectItem returns settings of the given kind with the resource or fuel
// replaced. kind must be KindMiner, KindGenerator or KindPump; for any other
// kind old is returned unchanged. repaired is true when old had the wrong
// shape and was rebuilt from defaults.
func SelectItem(old BuildingSettings, kind database.BuildingKindID, item database.ItemID) (s BuildingSettings, repaired bool) {
	repaired = !IsShapedFor(old, kind)
	switch cur := ReconcileSettings(old, kind).(type) {
	case MinerSettings:
		cur.Resource = item
		return cur, repaired
	case GeneratorSettings:
		cur.Fuel = item
		return cur, repaired
	case PumpSettings:
		cur.Resource = item
		return cur, repaired
	default:
		return old, false
	}
}

// WithClockSpeed returns s with its clock speed replaced, preserving the
// kind-specific selector. nil settings stay nil.
func WithClockSpeed(s BuildingSettings, clock float64) BuildingSettings {
	switch cur := s.(type) {
	case ManufacturerSettings:
		cur.ClockSpeed = clock
		return cur
	case MinerSettings:
		cur.ClockSpeed = clock
		return cur
	case GeneratorSettings:
		cur.ClockSpeed = clock
		return cur
	case PumpSettings:
		cur.ClockSpeed = clock
		return cur
	default:
		return nil
	}
}
