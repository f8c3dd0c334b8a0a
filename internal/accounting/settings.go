package accounting

import (
	"github.com/roach88/factoryledger/internal/database"
)

// Clock speed bounds. 1.0 is 100%.
const (
	DefaultClockSpeed = 1.0
	MinClockSpeed     = 0.01
	MaxClockSpeed     = 2.5
)

// BuildingSettings is a sealed interface for kind-specific building
// configuration. Only ManufacturerSettings, MinerSettings, GeneratorSettings
// and PumpSettings implement it. A nil BuildingSettings is the kind-less
// configuration of a building whose type is unset.
type BuildingSettings interface {
	Kind() database.BuildingKindID
	Clock() float64
	buildingSettings()
}

// ManufacturerSettings configures a manufacturer.
type ManufacturerSettings struct {
	Recipe     database.RecipeID
	ClockSpeed float64
}

// MinerSettings configures a miner.
type MinerSettings struct {
	Resource   database.ItemID
	ClockSpeed float64
}

// GeneratorSettings configures a generator.
type GeneratorSettings struct {
	Fuel       database.ItemID
	ClockSpeed float64
}

// PumpSettings configures a pump.
type PumpSettings struct {
	Resource   database.ItemID
	ClockSpeed float64
}

func (ManufacturerSettings) Kind() database.BuildingKindID { return database.KindManufacturer }
func (MinerSettings) Kind() database.BuildingKindID        { return database.KindMiner }
func (GeneratorSettings) Kind() database.BuildingKindID    { return database.KindGenerator }
func (PumpSettings) Kind() database.BuildingKindID         { return database.KindPump }

func (s ManufacturerSettings) Clock() float64 { return s.ClockSpeed }
func (s MinerSettings) Clock() float64        { return s.ClockSpeed }
func (s GeneratorSettings) Clock() float64    { return s.ClockSpeed }
func (s PumpSettings) Clock() float64         { return s.ClockSpeed }

func (ManufacturerSettings) buildingSettings() {}
func (MinerSettings) buildingSettings()        {}
func (GeneratorSettings) buildingSettings()    {}
func (PumpSettings) buildingSettings()         {}

// ClockSpeedOf returns the clock speed of s, or DefaultClockSpeed for nil
// settings.
func ClockSpeedOf(s BuildingSettings) float64 {
	if s == nil {
		return DefaultClockSpeed
	}
	return s.Clock()
}

// ValidClockSpeed reports whether c is within [MinClockSpeed, MaxClockSpeed].
func ValidClockSpeed(c float64) bool {
	return c >= MinClockSpeed && c <= MaxClockSpeed
}
