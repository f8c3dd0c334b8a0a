package accounting

import (
	"fmt"

	"github.com/roach88/factoryledger/internal/database"
)

// Violation codes reported by CheckTree.
const (
	ViolationShape     = "SHAPE_MISMATCH"     // settings kind differs from building kind
	ViolationUnknown   = "UNKNOWN_BUILDING"   // building id not in the catalog
	ViolationSelection = "INVALID_SELECTION"  // recipe, resource or fuel not allowed
	ViolationClock     = "CLOCK_OUT_OF_RANGE" // clock speed outside [MinClockSpeed, MaxClockSpeed]
)

// Violation is one problem found by CheckTree.
type Violation struct {
	Path    []int
	Code    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%v: %s: %s", v.Path, v.Code, v.Message)
}

// CheckTree walks the tree and reports every building whose settings break
// the shape invariant or reference something the catalog does not allow.
// Results are in depth-first order.
func CheckTree(db database.Lookup, root Node) []Violation {
	var out []Violation
	Walk(root, func(path []int, n Node) bool {
		b, ok := n.(Building)
		if !ok {
			return true
		}
		for _, v := range CheckBuilding(db, b) {
			v.Path = append([]int(nil), path...)
			out = append(out, v)
		}
		return true
	})
	return out
}

// CheckBuilding checks a single building; Path is left empty.
func CheckBuilding(db database.Lookup, b Building) []Violation {
	if !b.Building.IsSet() {
		if b.Settings != nil {
			return []Violation{{Code: ViolationShape, Message: fmt.Sprintf("unset building has %s settings", b.Settings.Kind())}}
		}
		return nil
	}

	bt, ok := db.Building(b.Building)
	if !ok || bt.Kind == nil {
		return []Violation{{Code: ViolationUnknown, Message: fmt.Sprintf("building %q not in catalog", b.Building)}}
	}

	kind := bt.Kind.KindID()
	if !IsShapedFor(b.Settings, kind) {
		got := "no"
		if b.Settings != nil {
			got = b.Settings.Kind().String()
		}
		return []Violation{{Code: ViolationShape, Message: fmt.Sprintf("%s %q has %s settings", kind, b.Building, got)}}
	}

	var out []Violation
	if c := b.Settings.Clock(); !ValidClockSpeed(c) {
		out = append(out, Violation{Code: ViolationClock, Message: fmt.Sprintf("clock speed %v", c)})
	}
	if msg := selectionProblem(bt.Kind, b.Settings); msg != "" {
		out = append(out, Violation{Code: ViolationSelection, Message: msg})
	}
	return out
}

func selectionProblem(kind database.BuildingKind, s BuildingSettings) string {
	switch k := kind.(type) {
	case database.Manufacturer:
		r := s.(ManufacturerSettings).Recipe
		if r.IsSet() && !k.HasRecipe(r) {
			return fmt.Sprintf("recipe %q not available", r)
		}
	case database.Miner:
		r := s.(MinerSettings).Resource
		if r.IsSet() && !k.AllowsResource(r) {
			return fmt.Sprintf("resource %q not allowed", r)
		}
	case database.Generator:
		f := s.(GeneratorSettings).Fuel
		if f.IsSet() && !k.AllowsFuel(f) {
			return fmt.Sprintf("fuel %q not allowed", f)
		}
	case database.Pump:
		r := s.(PumpSettings).Resource
		if r.IsSet() && !k.AllowsResource(r) {
			return fmt.Sprintf("resource %q not allowed", r)
		}
	}
	return ""
}
