package accounting

import (
	"maps"
	"math"
	"slices"

	"github.com/roach88/factoryledger/internal/database"
)

// powerExponent scales power consumption with clock speed.
const powerExponent = 1.321928

// Balance is the net effect of a subtree: power in MW (negative means
// consumed) and item rates per minute (negative means consumed).
//
// Balance values are shared between nodes; never write to Items.
type Balance struct {
	Power float64                     `json:"power"`
	Items map[database.ItemID]float64 `json:"items,omitempty"`
}

// Add returns the sum of b and o.
func (b Balance) Add(o Balance) Balance {
	out := Balance{Power: b.Power + o.Power}
	if len(b.Items) == 0 && len(o.Items) == 0 {
		return out
	}
	out.Items = make(map[database.ItemID]float64, len(b.Items)+len(o.Items))
	for id, rate := range b.Items {
		out.Items[id] += rate
	}
	for id, rate := range o.Items {
		out.Items[id] += rate
	}
	return out
}

// Rate returns the net rate of item, zero if absent.
func (b Balance) Rate(item database.ItemID) float64 {
	return b.Items[item]
}

// SortedItems returns the item ids with a rate, in sorted order.
func (b Balance) SortedItems() []database.ItemID {
	return slices.Sorted(maps.Keys(b.Items))
}

// IsZero reports whether the balance has no power and no item rates.
func (b Balance) IsZero() bool {
	return b.Power == 0 && len(b.Items) == 0
}

func sumBalances(children []Node) Balance {
	var total Balance
	for _, c := range children {
		total = total.Add(c.Balance())
	}
	return total
}

// buildingBalance computes the balance of a single building. Unset or unknown
// identifiers and settings that do not match the building kind contribute
// nothing.
func buildingBalance(db database.Lookup, id database.BuildingID, settings BuildingSettings) Balance {
	if !id.IsSet() || settings == nil {
		return Balance{}
	}
	bt, ok := db.Building(id)
	if !ok || bt.Kind == nil || !IsShapedFor(settings, bt.Kind.KindID()) {
		return Balance{}
	}
	clock := settings.Clock()

	switch kind := bt.Kind.(type) {
	case database.Manufacturer:
		s := settings.(ManufacturerSettings)
		out := Balance{Power: -consumedPower(kind.PowerConsumption, clock)}
		recipe, ok := db.Recipe(s.Recipe)
		if !ok || recipe.Time <= 0 {
			return out
		}
		runs := 60 / recipe.Time * clock
		out.Items = make(map[database.ItemID]float64, len(recipe.Ingredients)+len(recipe.Products))
		for _, in := range recipe.Ingredients {
			out.Items[in.Item] -= in.Amount * runs
		}
		for _, p := range recipe.Products {
			out.Items[p.Item] += p.Amount * runs
		}
		return out

	case database.Miner:
		s := settings.(MinerSettings)
		return extractorBalance(s.Resource, kind.ItemsPerCycle, kind.CycleTime, kind.PowerConsumption, clock)

	case database.Pump:
		s := settings.(PumpSettings)
		return extractorBalance(s.Resource, kind.UnitsPerCycle, kind.CycleTime, kind.PowerConsumption, clock)

	case database.Generator:
		s := settings.(GeneratorSettings)
		if !s.Fuel.IsSet() {
			return Balance{}
		}
		produced := kind.PowerProduction * clock
		out := Balance{Power: produced}
		if fuel, ok := db.Item(s.Fuel); ok && fuel.Energy > 0 {
			out.Items = map[database.ItemID]float64{s.Fuel: -produced / fuel.Energy * 60}
		}
		return out
	}

	return Balance{}
}

func extractorBalance(resource database.ItemID, perCycle, cycle, power, clock float64) Balance {
	out := Balance{Power: -consumedPower(power, clock)}
	if !resource.IsSet() || cycle <= 0 {
		return out
	}
	out.Items = map[database.ItemID]float64{resource: perCycle * 60 / cycle * clock}
	return out
}

func consumedPower(base, clock float64) float64 {
	if base == 0 {
		return 0
	}
	return base * math.Pow(clock, powerExponent)
}
