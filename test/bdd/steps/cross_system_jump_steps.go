// Package steps holds godog step definitions for end-to-end tick engine
// scenarios that are easier to read as Gherkin than as table-driven Go.
package steps

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/cucumber/godog"

	"github.com/cosmicverge/tickengine/internal/domain/flight"
	"github.com/cosmicverge/tickengine/internal/domain/hangar"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
)

// systemSpec buffers a Given-step description of a system until every
// object belonging to it is known, since universe.NewSystem resolves the
// object ownership order once at construction and never revisits it.
type systemSpec struct {
	galacticPosition universe.Vector2
	sunRadius        float64
	orbiters         map[string]orbiterSpec
}

type orbiterSpec struct {
	distance   float64
	periodDays float64
}

type crossSystemJumpContext struct {
	specs   map[universe.SystemID]*systemSpec
	objects map[string]universe.ObjectID

	uni       *universe.Universe
	hangarTbl hangar.Table
	ship      *flight.Ship
	home      universe.SystemID

	labels     []string
	jumpTarget *flight.Maneuver
}

func (c *crossSystemJumpContext) reset() {
	c.specs = make(map[universe.SystemID]*systemSpec)
	c.objects = make(map[string]universe.ObjectID)
	c.uni = nil
	c.hangarTbl = hangar.Table{hangar.Shuttle: hangar.Spec{Mass: 10, Thrust: 50, RotationRate: 3.14159265 / 3}}
	c.ship = nil
	c.labels = nil
	c.jumpTarget = nil
}

func (c *crossSystemJumpContext) theSystemWithASunOfRadius(name string, radius float64) error {
	c.specs[universe.SystemID(name)] = &systemSpec{sunRadius: radius, orbiters: map[string]orbiterSpec{}}
	return nil
}

func (c *crossSystemJumpContext) theSystemAtGalacticPositionWithASunOfRadius(name string, x, y, radius float64) error {
	c.specs[universe.SystemID(name)] = &systemSpec{
		galacticPosition: universe.Vector2{X: x, Y: y},
		sunRadius:        radius,
		orbiters:         map[string]orbiterSpec{},
	}
	return nil
}

func (c *crossSystemJumpContext) systemHasAnObjectOrbitingTheSunAtDistanceWithAPeriodOfDays(systemName, objectName string, distance, periodDays float64) error {
	spec, ok := c.specs[universe.SystemID(systemName)]
	if !ok {
		return fmt.Errorf("unknown system %q", systemName)
	}
	spec.orbiters[objectName] = orbiterSpec{distance: distance, periodDays: periodDays}
	return nil
}

// buildSystems turns the buffered specs into real universe.System values,
// assigning object id 0 to every sun and sequential ids to its orbiters.
func (c *crossSystemJumpContext) buildSystems() map[universe.SystemID]*universe.System {
	systems := make(map[universe.SystemID]*universe.System, len(c.specs))
	for id, spec := range c.specs {
		sunID := universe.ObjectID(0)
		objects := map[universe.ObjectID]*universe.Object{
			sunID: {ID: sunID, Radius: spec.sunRadius},
		}
		nextID := universe.ObjectID(1)
		for name, orbiter := range spec.orbiters {
			objID := nextID
			nextID++
			objects[objID] = &universe.Object{
				ID:              objID,
				Radius:          5,
				OrbitParent:     &sunID,
				OrbitDistance:   orbiter.distance,
				OrbitPeriodDays: orbiter.periodDays,
			}
			c.objects[name] = objID
		}
		systems[id] = universe.NewSystem(id, spec.galacticPosition, "", objects)
	}
	return systems
}

func (c *crossSystemJumpContext) aShuttleInMovingAtVelocityWithHeading(systemName string, vx, vy, heading float64) error {
	c.home = universe.SystemID(systemName)
	c.ship = &flight.Ship{
		Action: flight.Idle(),
		Physics: &flight.Physics{
			System:   c.home,
			Velocity: flight.Vector2{X: vx, Y: vy},
			Heading:  heading,
		},
		Info: flight.ShipInfo{Kind: hangar.Shuttle},
	}
	return nil
}

func (c *crossSystemJumpContext) thePilotIsGivenTheOrderToNavigateToDockAtIn(objectName, systemName string) error {
	c.uni = universe.New(c.buildSystems())
	c.uni.UpdateOrbits(0)

	objectID, ok := c.objects[objectName]
	if !ok {
		return fmt.Errorf("unknown object %q", objectName)
	}
	c.ship.Action = flight.NavigateTo(flight.Docked(universe.SystemID(systemName), objectID))

	rng := rand.New(rand.NewSource(7))
	flight.Step(c.ship, c.home, 0.01, c.uni, c.hangarTbl, rng)
	if c.ship.Plan == nil {
		return fmt.Errorf("no plan was built")
	}
	c.labels = classifyManeuvers(c.ship.Physics.Velocity, c.ship.Plan.Maneuvers)
	for i, m := range c.ship.Plan.Maneuvers {
		if m.Kind == flight.ManeuverJump {
			jump := c.ship.Plan.Maneuvers[i]
			c.jumpTarget = &jump
		}
	}
	return nil
}

func (c *crossSystemJumpContext) thePlanShouldContainInOrder(expected string) error {
	want := splitCommaList(expected)
	if len(want) != len(c.labels) {
		return fmt.Errorf("expected %d maneuvers %v, got %d: %v", len(want), want, len(c.labels), c.labels)
	}
	for i := range want {
		if want[i] != c.labels[i] {
			return fmt.Errorf("maneuver %d: expected %q, got %q (full: %v)", i, want[i], c.labels[i], c.labels)
		}
	}
	return nil
}

func (c *crossSystemJumpContext) theJumpManeuverShouldTargetSystemWithDuration(systemName string, duration float64) error {
	if c.jumpTarget == nil {
		return fmt.Errorf("plan contains no jump maneuver")
	}
	if c.jumpTarget.TargetSystem != universe.SystemID(systemName) {
		return fmt.Errorf("expected jump target system %q, got %q", systemName, c.jumpTarget.TargetSystem)
	}
	if c.jumpTarget.Duration != duration {
		return fmt.Errorf("expected jump duration %v, got %v", duration, c.jumpTarget.Duration)
	}
	return nil
}

func (c *crossSystemJumpContext) runningThePlanToCompletionShouldLeaveTheShipInSystem(systemName string) error {
	c.runToCompletion()
	if c.ship.Physics.System != universe.SystemID(systemName) {
		return fmt.Errorf("expected ship in system %q, got %q", systemName, c.ship.Physics.System)
	}
	return nil
}

func (c *crossSystemJumpContext) runningThePlanToCompletionShouldLeaveTheShipWithinUnitsOfEarthsCurrentOrbitalPosition(tolerance float64) error {
	c.runToCompletion()
	earth := c.objects["Earth"]
	want := c.uni.OrbitsFor(c.ship.Physics.System)[earth]
	dx := c.ship.Physics.Position.X - want.X
	dy := c.ship.Physics.Position.Y - want.Y
	if math.Hypot(dx, dy) > tolerance {
		return fmt.Errorf("ship at (%v,%v), Earth at (%v,%v), delta exceeds %v", c.ship.Physics.Position.X, c.ship.Physics.Position.Y, want.X, want.Y, tolerance)
	}
	return nil
}

func (c *crossSystemJumpContext) runToCompletion() {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1_000_000 && c.ship.Plan != nil; i++ {
		flight.Step(c.ship, c.home, 0.05, c.uni, c.hangarTbl, rng)
	}
}

// classifyManeuvers collapses a raw maneuver list into the semantic labels
// used in scenario text: a leading rotate+decelerate-to-zero pair becomes a
// single "stop", a jump stays "jump", and every other movement maneuver is
// "rotate" if its target velocity is unchanged or "accelerate"/"decelerate"
// depending on whether speed rises or falls.
func classifyManeuvers(initialVelocity flight.Vector2, maneuvers []flight.Maneuver) []string {
	var labels []string
	prevVelocity := initialVelocity
	start := 0

	if len(maneuvers) >= 2 &&
		maneuvers[0].Kind == flight.ManeuverMovement &&
		maneuvers[1].Kind == flight.ManeuverMovement &&
		maneuvers[0].TargetVelocity == prevVelocity &&
		maneuvers[1].TargetVelocity == (flight.Vector2{}) {
		labels = append(labels, "stop")
		prevVelocity = flight.Vector2{}
		start = 2
	}

	for _, m := range maneuvers[start:] {
		switch m.Kind {
		case flight.ManeuverJump:
			labels = append(labels, "jump")
			prevVelocity = m.TargetVelocity
		case flight.ManeuverMovement:
			switch {
			case m.TargetVelocity == prevVelocity:
				labels = append(labels, "rotate")
			case m.TargetVelocity.Length() > prevVelocity.Length():
				labels = append(labels, "accelerate")
			default:
				labels = append(labels, "decelerate")
			}
			prevVelocity = m.TargetVelocity
		}
	}
	return labels
}

func splitCommaList(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			token := trimSpace(s[start:i])
			if token != "" {
				out = append(out, token)
			}
			start = i + 1
		}
	}
	return out
}

func trimSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

// InitializeCrossSystemJumpScenario registers the cross-system jump steps.
func InitializeCrossSystemJumpScenario(ctx *godog.ScenarioContext) {
	c := &crossSystemJumpContext{}

	ctx.Before(func(goCtx context.Context, sc *godog.Scenario) (context.Context, error) {
		c.reset()
		return goCtx, nil
	})

	ctx.Step(`^the system "([^"]*)" with a sun of radius (\d+)$`, c.theSystemWithASunOfRadius)
	ctx.Step(`^the system "([^"]*)" at galactic position ([0-9.]+),([0-9.]+) with a sun of radius (\d+)$`, c.theSystemAtGalacticPositionWithASunOfRadius)
	ctx.Step(`^"([^"]*)" has an object "([^"]*)" orbiting the sun at distance (\d+) with a period of (\d+) days$`, c.systemHasAnObjectOrbitingTheSunAtDistanceWithAPeriodOfDays)
	ctx.Step(`^a shuttle in "([^"]*)" moving at velocity ([\-0-9.]+),([\-0-9.]+) with heading ([\-0-9.]+)$`, c.aShuttleInMovingAtVelocityWithHeading)
	ctx.Step(`^the pilot is given the order to navigate to dock at "([^"]*)" in "([^"]*)"$`, c.thePilotIsGivenTheOrderToNavigateToDockAtIn)
	ctx.Step(`^the plan should contain, in order: (.+)$`, c.thePlanShouldContainInOrder)
	ctx.Step(`^the jump maneuver should target system "([^"]*)" with duration (\d+)$`, c.theJumpManeuverShouldTargetSystemWithDuration)
	ctx.Step(`^running the plan to completion should leave the ship in system "([^"]*)"$`, c.runningThePlanToCompletionShouldLeaveTheShipInSystem)
	ctx.Step(`^running the plan to completion should leave the ship within ([0-9.]+) units of Earth's current orbital position$`, c.runningThePlanToCompletionShouldLeaveTheShipWithinUnitsOfEarthsCurrentOrbitalPosition)
}
