package flight

// advance consumes maneuvers off the front of the plan in order, for up to
// elapsed seconds. Each fully-consumed maneuver applies its terminal state as
// the new initial state, and time left once the current maneuver can no
// longer be finished is added to ElapsedInCurrentManeuver. Returns whether
// advancement stopped early because a Jump maneuver completed; elapsed time
// remaining after that jump is dropped.
func advance(ship *Ship, elapsed float64) (stoppedAtJump bool) {
	plan := ship.Plan
	phys := ship.Physics

	for elapsed > 0 && len(plan.Maneuvers) > 0 {
		current := plan.Maneuvers[0]
		remaining := current.Duration - plan.ElapsedInCurrentManeuver
		if elapsed < remaining {
			plan.ElapsedInCurrentManeuver += elapsed
			return false
		}

		elapsed -= remaining
		applyManeuverTerminal(phys, plan, current)
		plan.Maneuvers = plan.Maneuvers[1:]
		plan.ElapsedInCurrentManeuver = 0

		if current.Kind == ManeuverJump {
			return true
		}
	}
	return false
}

// applyManeuverTerminal applies a completed maneuver's target state as the
// new initial state of both the plan and the ship's physics.
func applyManeuverTerminal(phys *Physics, plan *FlightPlan, m Maneuver) {
	plan.InitialPosition = m.TargetPosition
	plan.InitialVelocity = m.TargetVelocity
	plan.InitialHeading = m.TargetHeading
	if m.Kind == ManeuverJump {
		plan.InitialSystem = m.TargetSystem
		phys.System = m.TargetSystem
	}
	phys.Position = plan.InitialPosition
	phys.Velocity = plan.InitialVelocity
	phys.Heading = plan.InitialHeading
	phys.Effect = EffectNone
}
