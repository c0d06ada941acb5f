// Package flight is the deterministic flight-plan simulation kernel: a pure
// function that steps a set of ships' physics and flight plans forward by an
// elapsed duration. It takes all state by mutable reference, performs no
// I/O, and touches no globals except the read-only hangar and universe
// catalogs and log/slog's default logger (one warning in plan.go), so the
// same code runs on the server and in a client for prediction.
package flight

import (
	"math/rand"

	"github.com/cosmicverge/tickengine/internal/domain/hangar"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
)

// Simulate steps every ship in ships by elapsed seconds, in the context of
// systemID (the system whose pilots these are, this tick). Never panics on
// a ship kind: a missing or unknown kind is stepped with the Shuttle spec
// (see specFor), and nothing logs the substitution.
func Simulate(ships []*Ship, systemID universe.SystemID, elapsed float64, uni *universe.Universe, specs hangar.Table, rng *rand.Rand) {
	for _, ship := range ships {
		Step(ship, systemID, elapsed, uni, specs, rng)
	}
}

// Step runs the per-ship algorithm once: advance any existing plan by
// elapsed seconds, rebuild it if the pilot's action has changed, and
// otherwise interpolate the partially-completed current maneuver.
func Step(ship *Ship, systemID universe.SystemID, elapsed float64, uni *universe.Universe, specs hangar.Table, rng *rand.Rand) {
	spec := specFor(ship, specs)

	if ship.Plan != nil {
		if stoppedAtJump := advance(ship, elapsed); stoppedAtJump {
			return
		}
		if ship.Plan.Done() && ship.Plan.MadeFor.Equal(ship.Action) {
			ship.Plan = nil
			return
		}
	}

	if ship.Plan == nil || !ship.Plan.MadeFor.Equal(ship.Action) {
		ship.Plan = buildPlan(ship, spec, uni, rng)
		return
	}

	interpolateCurrent(ship)
}

// specFor resolves a ship's hangar spec, substituting the Shuttle default if
// the kind is missing or unknown (a decode/default-field concern handled by
// the caller's location-cache layer; the kernel just needs something).
func specFor(ship *Ship, specs hangar.Table) hangar.Spec {
	kind := ship.Info.Kind
	if kind == "" {
		kind = hangar.Shuttle
	}
	spec, err := specs.Get(kind)
	if err != nil {
		spec, _ = specs.Get(hangar.Shuttle)
	}
	return spec
}

// interpolateCurrent applies the current maneuver's partial-completion state
// to the ship's physics.
func interpolateCurrent(ship *Ship) {
	plan := ship.Plan
	m := plan.Maneuvers[0]
	percent := 0.0
	if m.Duration > 0 {
		percent = plan.ElapsedInCurrentManeuver / m.Duration
	}
	if percent > 1 {
		percent = 1
	}

	position, velocity, heading := interpolateManeuver(plan, m, percent)
	ship.Physics.Position = position
	ship.Physics.Velocity = velocity
	ship.Physics.Heading = heading

	if m.Kind == ManeuverJump {
		ship.Physics.Effect = EffectJumping
	} else if !approxEqualVector(velocity, m.TargetVelocity) {
		ship.Physics.Effect = EffectThrusting
	} else {
		ship.Physics.Effect = EffectNone
	}
}
