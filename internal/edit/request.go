package edit

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/factoryledger/internal/accounting"
	"github.com/roach88/factoryledger/internal/database"
)

// Request is an edit addressed to one node. Tagged union; only the types in
// this file implement it.
type Request interface {
	RequestType() string
	requestSeal()
}

// Rename sets a group's name. Surrounding whitespace is trimmed.
type Rename struct {
	Name string `json:"name"`
}

// AddChild appends a node to a group.
type AddChild struct {
	Child accounting.Node `json:"-"`
}

// DeleteChild removes a group's child.
type DeleteChild struct {
	Index int `json:"index"`
}

// CopyChild inserts a duplicate of a child directly after it.
type CopyChild struct {
	Index int `json:"index"`
}

// ReplaceChild swaps a group's child for another node.
type ReplaceChild struct {
	Index int             `json:"index"`
	Child accounting.Node `json:"-"`
}

// MoveNode moves the subtree at Src to Dest. Both are root-relative and
// Dest is read against the tree before the source is removed.
type MoveNode struct {
	Src  Path `json:"src"`
	Dest Path `json:"dest"`
}

// ChangeBuilding sets a building's type, reconciling its settings.
type ChangeBuilding struct {
	Building database.BuildingID `json:"building"`
}

// ChangeRecipe selects a manufacturer's recipe.
type ChangeRecipe struct {
	Recipe database.RecipeID `json:"recipe"`
}

// ChangeItem selects the resource of a miner or pump, or a generator's fuel.
type ChangeItem struct {
	Item database.ItemID `json:"item"`
}

// SetClockSpeed sets a building's clock speed, keeping its selection.
type SetClockSpeed struct {
	ClockSpeed float64 `json:"clock_speed"`
}

func (Rename) RequestType() string         { return "rename" }
func (AddChild) RequestType() string       { return "add_child" }
func (DeleteChild) RequestType() string    { return "delete_child" }
func (CopyChild) RequestType() string      { return "copy_child" }
func (ReplaceChild) RequestType() string   { return "replace_child" }
func (MoveNode) RequestType() string       { return "move_node" }
func (ChangeBuilding) RequestType() string { return "change_building" }
func (ChangeRecipe) RequestType() string   { return "change_recipe" }
func (ChangeItem) RequestType() string     { return "change_item" }
func (SetClockSpeed) RequestType() string  { return "set_clock_speed" }

func (Rename) requestSeal()         {}
func (AddChild) requestSeal()       {}
func (DeleteChild) requestSeal()    {}
func (CopyChild) requestSeal()      {}
func (ReplaceChild) requestSeal()   {}
func (MoveNode) requestSeal()       {}
func (ChangeBuilding) requestSeal() {}
func (ChangeRecipe) requestSeal()   {}
func (ChangeItem) requestSeal()     {}
func (SetClockSpeed) requestSeal()  {}

// childJSON is the wire format of the node-carrying requests.
type childJSON struct {
	Type  string              `json:"type"`
	Index *int                `json:"index,omitempty"`
	Child *accounting.NodeDoc `json:"child"`
}

// noCatalog builds request payloads before a catalog is known. The
// processor rebuilds inserted nodes against its own catalog.
var noCatalog = database.New(nil, nil, nil)

// MarshalRequest serializes a Request with a "type" discriminator field.
func MarshalRequest(r Request) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("cannot marshal nil request")
	}

	switch v := r.(type) {
	case AddChild:
		return marshalChild(v.RequestType(), nil, v.Child)
	case ReplaceChild:
		return marshalChild(v.RequestType(), &v.Index, v.Child)
	default:
		return marshalTagged(r.RequestType(), r)
	}
}

// UnmarshalRequest deserializes a Request from JSON with a "type" discriminator.
func UnmarshalRequest(data []byte) (Request, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal request type: %w", err)
	}

	switch envelope.Type {
	case "rename":
		var r Rename
		return r, json.Unmarshal(data, &r)
	case "add_child":
		_, child, err := unmarshalChild(data, false)
		return AddChild{Child: child}, err
	case "delete_child":
		var r DeleteChild
		return r, json.Unmarshal(data, &r)
	case "copy_child":
		var r CopyChild
		return r, json.Unmarshal(data, &r)
	case "replace_child":
		idx, child, err := unmarshalChild(data, true)
		return ReplaceChild{Index: idx, Child: child}, err
	case "move_node":
		var r MoveNode
		return r, json.Unmarshal(data, &r)
	case "change_building":
		var r ChangeBuilding
		return r, json.Unmarshal(data, &r)
	case "change_recipe":
		var r ChangeRecipe
		return r, json.Unmarshal(data, &r)
	case "change_item":
		var r ChangeItem
		return r, json.Unmarshal(data, &r)
	case "set_clock_speed":
		var r SetClockSpeed
		return r, json.Unmarshal(data, &r)
	default:
		return nil, fmt.Errorf("unknown request type: %q", envelope.Type)
	}
}

// marshalTagged marshals a struct with an injected "type" field.
func marshalTagged(typeName string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	typeJSON, _ := json.Marshal(typeName)
	m["type"] = typeJSON
	return json.Marshal(m)
}

func marshalChild(typeName string, index *int, child accounting.Node) ([]byte, error) {
	if child == nil {
		return nil, fmt.Errorf("%s: child is required", typeName)
	}
	doc := accounting.ToDoc(child)
	return json.Marshal(childJSON{Type: typeName, Index: index, Child: &doc})
}

func unmarshalChild(data []byte, wantIndex bool) (int, accounting.Node, error) {
	var j childJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return 0, nil, err
	}
	if j.Child == nil {
		return 0, nil, fmt.Errorf("%s: child is required", j.Type)
	}
	if wantIndex && j.Index == nil {
		return 0, nil, fmt.Errorf("%s: index is required", j.Type)
	}
	child, err := j.Child.Build(noCatalog)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", j.Type, err)
	}
	idx := 0
	if j.Index != nil {
		idx = *j.Index
	}
	return idx, child, nil
}

// Describe renders a request for logs and edit history.
func Describe(r Request) string {
	switch v := r.(type) {
	case Rename:
		return fmt.Sprintf("rename %q", v.Name)
	case AddChild:
		return "add_child " + describeNode(v.Child)
	case DeleteChild:
		return fmt.Sprintf("delete_child %d", v.Index)
	case CopyChild:
		return fmt.Sprintf("copy_child %d", v.Index)
	case ReplaceChild:
		return fmt.Sprintf("replace_child %d with %s", v.Index, describeNode(v.Child))
	case MoveNode:
		return fmt.Sprintf("move_node %s -> %s", v.Src, v.Dest)
	case ChangeBuilding:
		return fmt.Sprintf("change_building %q", v.Building)
	case ChangeRecipe:
		return fmt.Sprintf("change_recipe %q", v.Recipe)
	case ChangeItem:
		return fmt.Sprintf("change_item %q", v.Item)
	case SetClockSpeed:
		return fmt.Sprintf("set_clock_speed %g", v.ClockSpeed)
	case nil:
		return "<nil>"
	default:
		return r.RequestType()
	}
}

func describeNode(n accounting.Node) string {
	switch v := n.(type) {
	case accounting.Group:
		return fmt.Sprintf("group %q", v.Name)
	case accounting.Building:
		if !v.Building.IsSet() {
			return "empty building"
		}
		return fmt.Sprintf("building %q", v.Building)
	default:
		return "<nil>"
	}
}
