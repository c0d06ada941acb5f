package flight

import "github.com/cosmicverge/tickengine/internal/domain/hangar"

// PilotID is the 64-bit signed pilot identifier.
type PilotID int64

// ShipInfo is a pilot's ship kind and current cargo mass, used to look up
// hangar constants.
type ShipInfo struct {
	Kind      hangar.ShipKind `json:"kind"`
	CargoMass float64         `json:"cargo_mass"`
}

// Ship is the kernel's per-pilot input/output: the action the pilot has
// requested, its ship spec, and the physics/flight plan mutated in place
// each step.
type Ship struct {
	PilotID PilotID
	Action  PilotAction
	Info    ShipInfo
	Physics *Physics
	Plan    *FlightPlan
}
