package flight

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/cosmicverge/tickengine/internal/domain/hangar"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
)

// buildPlan constructs a fresh flight plan for a ship's current action,
// replacing whatever plan (if any) it had before.
func buildPlan(ship *Ship, spec hangar.Spec, uni *universe.Universe, rng *rand.Rand) *FlightPlan {
	phys := ship.Physics
	plan := &FlightPlan{
		InitialSystem:   phys.System,
		InitialPosition: phys.Position,
		InitialVelocity: phys.Velocity,
		InitialHeading:  phys.Heading,
		MadeFor:         ship.Action,
	}

	switch ship.Action.Kind {
	case ActionIdle:
		plan.Maneuvers = stopManeuvers(phys.Position, phys.Velocity, phys.Heading, spec)
	case ActionNavigateTo:
		dest := ship.Action.Destination
		if dest.System == phys.System {
			destPoint := resolveDestinationPoint(dest, uni)
			plan.Maneuvers = stopAndTravel(phys.Position, phys.Velocity, phys.Heading, destPoint, spec)
		} else {
			plan.Maneuvers = crossSystemManeuvers(phys, dest, spec, uni, rng)
		}
	}
	return plan
}

// resolveDestinationPoint resolves a Location to an absolute point in its
// system: direct if in-space, or the docked object's orbital position at
// the time the maneuver was planned (not re-targeted mid-flight; see
// docking-arrival design note).
//
// TODO: rebuild plans whose docked target has since moved noticeably, if
// client-side drift from this ever becomes visible.
func resolveDestinationPoint(location Location, uni *universe.Universe) Vector2 {
	if !location.IsDocked() {
		return location.Point
	}
	orbits := uni.OrbitsFor(location.System)
	return toFlightVector(orbits[*location.DockedObject])
}

func toFlightVector(v universe.Vector2) Vector2 {
	return Vector2{X: v.X, Y: v.Y}
}

// stopManeuvers builds the Idle "stop" sequence: rotate to face opposite the
// current velocity while drifting, then decelerate to zero along that
// direction. Returns nil if velocity is already approximately zero.
func stopManeuvers(position, velocity Vector2, heading float64, spec hangar.Spec) []Maneuver {
	if approxEqualVector(velocity, Vector2{}) {
		return nil
	}

	targetHeading := velocity.Scale(-1).Angle()
	rotateDuration := math.Abs(angleDelta(heading, targetHeading)) / spec.RotationRate
	rotatePosition := position.Add(velocity.Scale(rotateDuration))

	rotate := Maneuver{
		Kind:           ManeuverMovement,
		Duration:       rotateDuration,
		TargetPosition: rotatePosition,
		TargetHeading:  targetHeading,
		TargetVelocity: velocity,
	}

	speed := velocity.Length()
	decelDuration := speed / spec.Acceleration()
	decelDistance := (speed * speed) / (2 * spec.Acceleration())
	decelPosition := rotatePosition.Add(velocity.Normalized().Scale(decelDistance))

	decel := Maneuver{
		Kind:           ManeuverMovement,
		Duration:       decelDuration,
		TargetPosition: decelPosition,
		TargetHeading:  targetHeading,
		TargetVelocity: Vector2{},
	}

	return []Maneuver{rotate, decel}
}

// stopAndTravel builds the full same-system navigate sequence: a stop
// sequence (empty if already at rest), a rotation to face the destination,
// an acceleration burn to the midpoint, a 180-degree turnaround, and a
// mirror-image deceleration that terminates exactly at the destination.
func stopAndTravel(position, velocity Vector2, heading float64, destination Vector2, spec hangar.Spec) []Maneuver {
	maneuvers := stopManeuvers(position, velocity, heading, spec)

	restPosition, restHeading := position, heading
	if len(maneuvers) > 0 {
		last := maneuvers[len(maneuvers)-1]
		restPosition, restHeading = last.TargetPosition, last.TargetHeading
	}

	toDestination := destination.Sub(restPosition)
	distance := toDestination.Length()
	if distance < epsilon {
		return maneuvers
	}
	direction := toDestination.Angle()
	directionUnit := toDestination.Normalized()

	rotateDuration := math.Abs(angleDelta(restHeading, direction)) / spec.RotationRate
	rotate := Maneuver{
		Kind:           ManeuverMovement,
		Duration:       rotateDuration,
		TargetPosition: restPosition,
		TargetHeading:  direction,
		TargetVelocity: Vector2{},
	}

	tMid, ok := timeToTravelDistance(distance/2, spec.Acceleration())
	if !ok {
		tMid = 0
	}
	turnaroundDuration := math.Pi / spec.RotationRate
	tAccel := tMid - turnaroundDuration/2
	if tAccel < 0 {
		tAccel = 0
	}

	accelVelocity := directionUnit.Scale(spec.Acceleration() * tAccel)
	accelPosition := restPosition.Add(directionUnit.Scale(0.5 * spec.Acceleration() * tAccel * tAccel))
	accelerate := Maneuver{
		Kind:           ManeuverMovement,
		Duration:       tAccel,
		TargetPosition: accelPosition,
		TargetHeading:  direction,
		TargetVelocity: accelVelocity,
	}

	turnaroundHeading := normalizeAngle(direction + math.Pi)
	turnaroundPosition := accelPosition.Add(accelVelocity.Scale(turnaroundDuration))
	turnaround := Maneuver{
		Kind:           ManeuverMovement,
		Duration:       turnaroundDuration,
		TargetPosition: turnaroundPosition,
		TargetHeading:  turnaroundHeading,
		TargetVelocity: accelVelocity,
	}

	decelerate := Maneuver{
		Kind:           ManeuverMovement,
		Duration:       tAccel,
		TargetPosition: destination,
		TargetHeading:  turnaroundHeading,
		TargetVelocity: Vector2{},
	}

	return append(maneuvers, rotate, accelerate, turnaround, decelerate)
}

// crossSystemManeuvers builds a stop sequence, a rotation to face the
// destination system's galactic direction, a Jump maneuver to a jittered
// point near the destination sun, and the same-system travel sequence from
// there to the final destination.
func crossSystemManeuvers(phys *Physics, dest Location, spec hangar.Spec, uni *universe.Universe, rng *rand.Rand) []Maneuver {
	maneuvers := stopManeuvers(phys.Position, phys.Velocity, phys.Heading, spec)

	restPosition, restHeading := phys.Position, phys.Heading
	if len(maneuvers) > 0 {
		last := maneuvers[len(maneuvers)-1]
		restPosition, restHeading = last.TargetPosition, last.TargetHeading
	}

	originSystem, _ := uni.Get(phys.System)
	destSystem, _ := uni.Get(dest.System)
	direction := toFlightVector(destSystem.GalacticPosition).Sub(toFlightVector(originSystem.GalacticPosition))
	directionAngle := direction.Angle()

	rotateDuration := math.Abs(angleDelta(restHeading, directionAngle)) / spec.RotationRate
	rotate := Maneuver{
		Kind:           ManeuverMovement,
		Duration:       rotateDuration,
		TargetPosition: restPosition,
		TargetHeading:  directionAngle,
		TargetVelocity: Vector2{},
	}

	sun := destSystem.RootObject()
	sunPosition := toFlightVector(uni.OrbitsFor(dest.System)[sun.ID])
	jitterRadius := rng.Float64() * 2 * sun.Radius
	jitterAngle := rng.Float64() * 2 * math.Pi
	jumpTarget := sunPosition.Add(Vector2{X: jitterRadius * math.Cos(jitterAngle), Y: jitterRadius * math.Sin(jitterAngle)})

	jump := Maneuver{
		Kind:           ManeuverJump,
		TargetSystem:   dest.System,
		Duration:       JumpDuration,
		TargetPosition: jumpTarget,
		TargetHeading:  directionAngle,
		TargetVelocity: Vector2{},
	}

	destinationPoint := resolveDestinationPoint(dest, uni)
	travel := stopAndTravel(jumpTarget, Vector2{}, directionAngle, destinationPoint, spec)

	maneuvers = append(maneuvers, rotate, jump)
	return append(maneuvers, travel...)
}

// timeToTravelDistance solves distance = ½·a·t² for t. Returns ok=false if
// distance or acceleration make both roots non-positive; callers treat that
// as zero and keep running rather than panicking.
func timeToTravelDistance(distance, acceleration float64) (float64, bool) {
	if distance <= 0 || acceleration <= 0 {
		slog.Warn("flight: invalid time_to_travel_distance, treating as zero",
			"distance", distance, "acceleration", acceleration)
		return 0, false
	}
	return math.Sqrt(2 * distance / acceleration), true
}
