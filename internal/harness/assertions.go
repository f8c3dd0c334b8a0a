package harness

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/database"
	"github.com/roach88/factoryledger/internal/edit"
)

// rateTolerance absorbs float rounding in balance comparisons.
const rateTolerance = 1e-9

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Path     string // Node the assertion looked at
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s at %s\n  Expected: %s\n  Actual: %s",
		e.Type, e.Path, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the final tree and
// returns the failure messages, in assertion order.
func EvaluateAssertions(db database.Lookup, initial, final accounting.Node, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(db, initial, final, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(db database.Lookup, initial, final accounting.Node, a Assertion) error {
	if a.Type == AssertUnchanged {
		return assertUnchanged(initial, final)
	}

	path, err := edit.ParsePath(a.Path)
	if err != nil {
		return err
	}
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Path: path.String(), Expected: expected, Actual: actual}
	}

	node, err := edit.Resolve(final, path)
	if err != nil {
		return fail("a node", err.Error())
	}

	switch a.Type {
	case AssertNodeName:
		g, ok := node.(accounting.Group)
		if !ok {
			return fail(fmt.Sprintf("group named %q", a.Equals), "a building")
		}
		if g.Name != a.Equals {
			return fail(fmt.Sprintf("%q", a.Equals), fmt.Sprintf("%q", g.Name))
		}

	case AssertBuilding:
		b, ok := node.(accounting.Building)
		if !ok {
			return fail(fmt.Sprintf("building %q", a.Equals), "a group")
		}
		if string(b.Building) != a.Equals {
			return fail(fmt.Sprintf("%q", a.Equals), fmt.Sprintf("%q", b.Building))
		}

	case AssertBuildingKind:
		b, ok := node.(accounting.Building)
		if !ok {
			return fail(fmt.Sprintf("%s building", a.Equals), "a group")
		}
		if got := kindName(db, b); got != a.Equals {
			return fail(a.Equals, got)
		}

	case AssertSettings:
		b, ok := node.(accounting.Building)
		if !ok {
			return fail("a building", "a group")
		}
		want, err := a.Settings.Settings()
		if err != nil {
			return fmt.Errorf("settings assertion: %w", err)
		}
		if want != b.Settings {
			return fail(settingsString(want), settingsString(b.Settings))
		}

	case AssertLeafCount:
		if got := len(accounting.Leaves(node)); got != *a.Count {
			return fail(fmt.Sprintf("%d buildings", *a.Count), fmt.Sprintf("%d buildings", got))
		}

	case AssertChildCount:
		g, ok := node.(accounting.Group)
		if !ok {
			return fail(fmt.Sprintf("group with %d children", *a.Count), "a building")
		}
		if g.Len() != *a.Count {
			return fail(fmt.Sprintf("%d children", *a.Count), fmt.Sprintf("%d children", g.Len()))
		}

	case AssertBalance:
		bal := node.Balance()
		if a.Power != nil && !approxEqual(bal.Power, *a.Power) {
			return fail(fmt.Sprintf("power %g", *a.Power), fmt.Sprintf("power %g", bal.Power))
		}
		if a.Item != "" {
			got := bal.Rate(database.ItemID(a.Item))
			if !approxEqual(got, *a.Rate) {
				return fail(fmt.Sprintf("%s %g/min", a.Item, *a.Rate), fmt.Sprintf("%s %g/min", a.Item, got))
			}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertUnchanged(initial, final accounting.Node) error {
	want, err := accounting.MarshalCanonical(initial)
	if err != nil {
		return err
	}
	got, err := accounting.MarshalCanonical(final)
	if err != nil {
		return err
	}
	if string(want) != string(got) {
		return &AssertionError{Type: AssertUnchanged, Path: "/", Expected: string(want), Actual: string(got)}
	}
	return nil
}

// kindName names the kind of b's building type: "none" when unset and
// "unknown" when the catalog lacks it.
func kindName(db database.Lookup, b accounting.Building) string {
	if !b.Building.IsSet() {
		return "none"
	}
	kind, ok := database.KindOf(db, b.Building)
	if !ok {
		return "unknown"
	}
	return kind.String()
}

func settingsString(s accounting.BuildingSettings) string {
	data, err := json.Marshal(accounting.SettingsToDoc(s))
	if err != nil {
		return fmt.Sprintf("%v", s)
	}
	return string(data)
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= rateTolerance*math.Max(1, math.Abs(b))
}
