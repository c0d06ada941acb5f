// Package hangar is the read-only catalog of ship kinds and their physical
// constants: mass, thrust, rotation rate, and the derived acceleration.
package hangar

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ShipKind names one entry in the hangar table.
type ShipKind string

// Spec is a ship kind's physical constants.
type Spec struct {
	Mass         float64 `yaml:"mass"`
	Thrust       float64 `yaml:"thrust"`
	RotationRate float64 `yaml:"rotation_rate"`
}

// Acceleration returns the ship's linear acceleration under full thrust.
func (s Spec) Acceleration() float64 {
	return s.Thrust / s.Mass
}

// Table is the read-only ship-kind catalog.
type Table map[ShipKind]Spec

// Get returns a ship kind's spec, or an error if the kind is unknown.
func (t Table) Get(kind ShipKind) (Spec, error) {
	spec, ok := t[kind]
	if !ok {
		return Spec{}, fmt.Errorf("hangar: unknown ship kind %q", kind)
	}
	return spec, nil
}

// Default ship kind used when a location cache entry has no ship info.
const Shuttle ShipKind = "Shuttle"

type descriptionFile struct {
	Hangar Table `yaml:"hangar"`
}

// Load reads the "hangar" top-level key of a universe description file.
func Load(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hangar: read %s: %w", path, err)
	}

	var doc descriptionFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("hangar: parse %s: %w", path, err)
	}
	if doc.Hangar == nil {
		return nil, fmt.Errorf("hangar: %s has no hangar table", path)
	}
	return doc.Hangar, nil
}
