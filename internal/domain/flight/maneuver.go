package flight

import "github.com/cosmicverge/tickengine/internal/domain/universe"

// ManeuverKind distinguishes a Movement maneuver (interpolated physics) from
// a Jump (instantaneous inter-system traversal held for a fixed duration).
type ManeuverKind int

const (
	ManeuverMovement ManeuverKind = iota
	ManeuverJump
)

// JumpDuration is the fixed duration of every Jump maneuver.
const JumpDuration = 1.0

// Maneuver is one atomic segment of a flight plan.
type Maneuver struct {
	Kind           ManeuverKind      `json:"kind"`
	TargetSystem   universe.SystemID `json:"target_system,omitempty"` // only meaningful for Jump
	Duration       float64           `json:"duration"`
	TargetPosition Vector2           `json:"target_position"`
	TargetHeading  float64           `json:"target_heading"`
	TargetVelocity Vector2           `json:"target_velocity"`
}

// Effect is the transient tag carried on Physics while a maneuver of a
// particular kind is active.
type Effect int

const (
	EffectNone Effect = iota
	EffectThrusting
	EffectJumping
)

// Physics is a pilot's current system, position, heading, velocity, and
// transient effect.
type Physics struct {
	System   universe.SystemID `json:"system"`
	Position Vector2           `json:"position"`
	Heading  float64           `json:"heading"`
	Velocity Vector2           `json:"velocity"`
	Effect   Effect            `json:"effect,omitempty"`
}

// FlightPlan records the state a maneuver sequence started from, the action
// it was built to satisfy, and the maneuvers themselves.
type FlightPlan struct {
	InitialSystem   universe.SystemID `json:"initial_system"`
	InitialPosition Vector2           `json:"initial_position"`
	InitialVelocity Vector2           `json:"initial_velocity"`
	InitialHeading  float64           `json:"initial_heading"`

	MadeFor PilotAction `json:"made_for"`

	ElapsedInCurrentManeuver float64    `json:"elapsed_in_current_maneuver"`
	Maneuvers                []Maneuver `json:"maneuvers"`
}

// Done reports whether every maneuver in the plan has completed.
func (p *FlightPlan) Done() bool {
	return len(p.Maneuvers) == 0
}
