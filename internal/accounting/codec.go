package accounting

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/factoryledger/internal/database"
)

// NodeDoc is the wire form of a Node. Exactly one of Group and Building is
// set. The same struct decodes from JSON and YAML.
type NodeDoc struct {
	Group    *GroupDoc    `json:"group,omitempty" yaml:"group,omitempty"`
	Building *BuildingDoc `json:"building,omitempty" yaml:"building,omitempty"`
}

// GroupDoc is the wire form of a Group.
type GroupDoc struct {
	Name     string    `json:"name" yaml:"name"`
	Children []NodeDoc `json:"children" yaml:"children"`
}

// BuildingDoc is the wire form of a Building.
type BuildingDoc struct {
	Building database.BuildingID `json:"building,omitempty" yaml:"building,omitempty"`
	Settings *SettingsDoc        `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// SettingsDoc is the wire form of BuildingSettings. At most one variant is set.
type SettingsDoc struct {
	Manufacturer *ManufacturerDoc `json:"manufacturer,omitempty" yaml:"manufacturer,omitempty"`
	Miner        *ResourceDoc     `json:"miner,omitempty" yaml:"miner,omitempty"`
	Generator    *GeneratorDoc    `json:"generator,omitempty" yaml:"generator,omitempty"`
	Pump         *ResourceDoc     `json:"pump,omitempty" yaml:"pump,omitempty"`
}

// ManufacturerDoc is the wire form of ManufacturerSettings.
type ManufacturerDoc struct {
	Recipe     database.RecipeID `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	ClockSpeed *float64          `json:"clock_speed,omitempty" yaml:"clock_speed,omitempty"`
}

// ResourceDoc is the wire form of MinerSettings and PumpSettings.
type ResourceDoc struct {
	Resource   database.ItemID `json:"resource,omitempty" yaml:"resource,omitempty"`
	ClockSpeed *float64        `json:"clock_speed,omitempty" yaml:"clock_speed,omitempty"`
}

// GeneratorDoc is the wire form of GeneratorSettings.
type GeneratorDoc struct {
	Fuel       database.ItemID `json:"fuel,omitempty" yaml:"fuel,omitempty"`
	ClockSpeed *float64        `json:"clock_speed,omitempty" yaml:"clock_speed,omitempty"`
}

// ToDoc converts a node to its wire form. Children are always non-nil so
// empty groups encode as "children":[].
func ToDoc(n Node) NodeDoc {
	switch v := n.(type) {
	case Group:
		children := make([]NodeDoc, len(v.Children))
		for i, c := range v.Children {
			children[i] = ToDoc(c)
		}
		return NodeDoc{Group: &GroupDoc{Name: v.Name, Children: children}}
	case Building:
		return NodeDoc{Building: &BuildingDoc{
			Building: v.Building,
			Settings: SettingsToDoc(v.Settings),
		}}
	default:
		return NodeDoc{}
	}
}

// SettingsToDoc converts settings to their wire form; nil stays nil.
func SettingsToDoc(s BuildingSettings) *SettingsDoc {
	switch v := s.(type) {
	case ManufacturerSettings:
		return &SettingsDoc{Manufacturer: &ManufacturerDoc{Recipe: v.Recipe, ClockSpeed: ptr(v.ClockSpeed)}}
	case MinerSettings:
		return &SettingsDoc{Miner: &ResourceDoc{Resource: v.Resource, ClockSpeed: ptr(v.ClockSpeed)}}
	case GeneratorSettings:
		return &SettingsDoc{Generator: &GeneratorDoc{Fuel: v.Fuel, ClockSpeed: ptr(v.ClockSpeed)}}
	case PumpSettings:
		return &SettingsDoc{Pump: &ResourceDoc{Resource: v.Resource, ClockSpeed: ptr(v.ClockSpeed)}}
	default:
		return nil
	}
}

// Build converts a document into a node, computing balances against db.
// Settings are taken as written; use a settings check to find shapes that
// disagree with the catalog.
func (d NodeDoc) Build(db database.Lookup) (Node, error) {
	switch {
	case d.Group != nil && d.Building != nil:
		return nil, fmt.Errorf("node has both group and building")
	case d.Group != nil:
		children := make([]Node, len(d.Group.Children))
		for i, c := range d.Group.Children {
			child, err := c.Build(db)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", d.Group.Name, i, err)
			}
			children[i] = child
		}
		return Group{Name: d.Group.Name}.WithChildren(children), nil
	case d.Building != nil:
		settings, err := d.Building.Settings.Settings()
		if err != nil {
			return nil, err
		}
		if !d.Building.Building.IsSet() && settings != nil {
			return nil, fmt.Errorf("building without a type cannot have settings")
		}
		return NewBuilding(db, d.Building.Building, settings), nil
	default:
		return nil, fmt.Errorf("node has neither group nor building")
	}
}

// Settings converts the document to BuildingSettings. A nil document yields
// nil settings; a missing clock speed defaults to DefaultClockSpeed.
func (d *SettingsDoc) Settings() (BuildingSettings, error) {
	if d == nil {
		return nil, nil
	}

	var (
		out   BuildingSettings
		count int
	)
	if m := d.Manufacturer; m != nil {
		out = ManufacturerSettings{Recipe: m.Recipe, ClockSpeed: clockOrDefault(m.ClockSpeed)}
		count++
	}
	if m := d.Miner; m != nil {
		out = MinerSettings{Resource: m.Resource, ClockSpeed: clockOrDefault(m.ClockSpeed)}
		count++
	}
	if g := d.Generator; g != nil {
		out = GeneratorSettings{Fuel: g.Fuel, ClockSpeed: clockOrDefault(g.ClockSpeed)}
		count++
	}
	if p := d.Pump; p != nil {
		out = PumpSettings{Resource: p.Resource, ClockSpeed: clockOrDefault(p.ClockSpeed)}
		count++
	}
	if count > 1 {
		return nil, fmt.Errorf("settings must have exactly one kind, found %d", count)
	}
	if out != nil && !ValidClockSpeed(out.Clock()) {
		return nil, fmt.Errorf("clock speed %v out of range [%v, %v]", out.Clock(), MinClockSpeed, MaxClockSpeed)
	}
	return out, nil
}

// MarshalNode encodes a node as JSON (without its cached balance).
func MarshalNode(n Node) ([]byte, error) {
	return json.Marshal(ToDoc(n))
}

// UnmarshalNode decodes a JSON node and computes balances against db.
func UnmarshalNode(data []byte, db database.Lookup) (Node, error) {
	var doc NodeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal node: %w", err)
	}
	n, err := doc.Build(db)
	if err != nil {
		return nil, fmt.Errorf("unmarshal node: %w", err)
	}
	return n, nil
}

func clockOrDefault(c *float64) float64 {
	if c == nil {
		return DefaultClockSpeed
	}
	return *c
}

func ptr[T any](v T) *T { return &v }
