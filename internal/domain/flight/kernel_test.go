package flight_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/domain/flight"
	"github.com/cosmicverge/tickengine/internal/domain/hangar"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
)

const testSystem universe.SystemID = "SM0A9F4"

func shuttleSpec() hangar.Spec {
	return hangar.Spec{Mass: 10, Thrust: 50, RotationRate: 3.14159265 / 3}
}

func shuttleTable() hangar.Table {
	return hangar.Table{hangar.Shuttle: shuttleSpec()}
}

func singleSystemUniverse() *universe.Universe {
	sun := universe.ObjectID(0)
	sys := universe.NewSystem(testSystem, universe.Vector2{X: 0, Y: 0}, "", map[universe.ObjectID]*universe.Object{
		sun: {ID: sun, Radius: 50},
	})
	u := universe.New(map[universe.SystemID]*universe.System{testSystem: sys})
	u.UpdateOrbits(0)
	return u
}

func runUntilPlanEmpty(t *testing.T, ship *flight.Ship, uni *universe.Universe, specs hangar.Table, step float64, maxSteps int) {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < maxSteps; i++ {
		flight.Step(ship, testSystem, step, uni, specs, rng)
		if ship.Plan == nil {
			return
		}
	}
	t.Fatalf("plan did not empty within %d steps", maxSteps)
}

func TestStep_IdleZeroVelocityIsUnchangedForever(t *testing.T) {
	// Arrange
	phys := &flight.Physics{System: testSystem, Position: flight.Vector2{X: 3, Y: 4}, Heading: 1.2}
	ship := &flight.Ship{Action: flight.Idle(), Physics: phys, Info: flight.ShipInfo{Kind: hangar.Shuttle}}
	uni := singleSystemUniverse()
	specs := shuttleTable()
	rng := rand.New(rand.NewSource(1))

	// Act
	for i := 0; i < 50; i++ {
		flight.Step(ship, testSystem, 0.1, uni, specs, rng)
	}

	// Assert
	assert.Equal(t, flight.Vector2{X: 3, Y: 4}, phys.Position)
	assert.Equal(t, flight.Vector2{}, phys.Velocity)
	assert.Equal(t, 1.2, phys.Heading)
	assert.Equal(t, testSystem, phys.System)
}

func TestStep_NavigateToSameSystemConverges(t *testing.T) {
	// Arrange
	destination := flight.Vector2{X: 1000, Y: 0}
	phys := &flight.Physics{System: testSystem}
	ship := &flight.Ship{
		Action:  flight.NavigateTo(flight.InSpace(testSystem, destination)),
		Physics: phys,
		Info:    flight.ShipInfo{Kind: hangar.Shuttle},
	}
	uni := singleSystemUniverse()
	specs := shuttleTable()

	// Act
	runUntilPlanEmpty(t, ship, uni, specs, 0.1, 100000)

	// Assert
	assert.InDelta(t, destination.X, phys.Position.X, 1e-3)
	assert.InDelta(t, destination.Y, phys.Position.Y, 1e-3)
	assert.Less(t, phys.Velocity.Length(), 1e-3)
}

func TestStep_StopFromMotion(t *testing.T) {
	// Arrange
	phys := &flight.Physics{System: testSystem, Velocity: flight.Vector2{X: 5, Y: 0}, Heading: 0}
	ship := &flight.Ship{Action: flight.Idle(), Physics: phys, Info: flight.ShipInfo{Kind: hangar.Shuttle}}
	uni := singleSystemUniverse()
	specs := shuttleTable()

	// Act
	runUntilPlanEmpty(t, ship, uni, specs, 0.1, 100000)

	// Assert
	assert.Less(t, phys.Velocity.Length(), 1e-3)
	assert.InDelta(t, 3.14159265, phys.Heading, 0.1)
}

func TestFlightPlan_NotRebuiltWhenActionUnchanged(t *testing.T) {
	// Arrange
	phys := &flight.Physics{System: testSystem}
	action := flight.NavigateTo(flight.InSpace(testSystem, flight.Vector2{X: 500, Y: 0}))
	ship := &flight.Ship{Action: action, Physics: phys, Info: flight.ShipInfo{Kind: hangar.Shuttle}}
	uni := singleSystemUniverse()
	specs := shuttleTable()
	rng := rand.New(rand.NewSource(1))

	// Act
	flight.Step(ship, testSystem, 0.01, uni, specs, rng)
	require.NotNil(t, ship.Plan)
	firstManeuverCount := len(ship.Plan.Maneuvers)
	flight.Step(ship, testSystem, 0.01, uni, specs, rng)

	// Assert: the plan advanced, it was not rebuilt from scratch.
	assert.LessOrEqual(t, len(ship.Plan.Maneuvers), firstManeuverCount)
}

func TestCrossSystemNavigate_PlanHasExactlyOneJump(t *testing.T) {
	// Arrange
	destSystem := universe.SystemID("System2")
	sun := universe.ObjectID(0)
	earth := universe.ObjectID(1)
	originSys := universe.NewSystem(testSystem, universe.Vector2{X: 0, Y: 0}, "", map[universe.ObjectID]*universe.Object{
		sun: {ID: sun, Radius: 50},
	})
	destSys := universe.NewSystem(destSystem, universe.Vector2{X: 100, Y: 100}, "", map[universe.ObjectID]*universe.Object{
		sun: {ID: sun, Radius: 60},
		earth: {
			ID: earth, Radius: 5, OrbitParent: &sun,
			OrbitDistance: 2000, OrbitPeriodDays: 365,
		},
	})
	u := universe.New(map[universe.SystemID]*universe.System{testSystem: originSys, destSystem: destSys})
	u.UpdateOrbits(0)

	phys := &flight.Physics{System: testSystem}
	ship := &flight.Ship{
		Action:  flight.NavigateTo(flight.Docked(destSystem, earth)),
		Physics: phys,
		Info:    flight.ShipInfo{Kind: hangar.Shuttle},
	}
	specs := shuttleTable()
	rng := rand.New(rand.NewSource(7))

	// Act
	flight.Step(ship, testSystem, 0.01, u, specs, rng)

	// Assert
	require.NotNil(t, ship.Plan)
	jumpCount := 0
	for _, m := range ship.Plan.Maneuvers {
		if m.Kind == flight.ManeuverJump {
			jumpCount++
			assert.Equal(t, flight.JumpDuration, m.Duration)
			assert.Equal(t, destSystem, m.TargetSystem)
		}
	}
	assert.Equal(t, 1, jumpCount)
}

func TestCrossSystemNavigate_ArrivesInDestinationSystem(t *testing.T) {
	// Arrange
	destSystem := universe.SystemID("System2")
	sun := universe.ObjectID(0)
	originSys := universe.NewSystem(testSystem, universe.Vector2{X: 0, Y: 0}, "", map[universe.ObjectID]*universe.Object{
		sun: {ID: sun, Radius: 50},
	})
	destSys := universe.NewSystem(destSystem, universe.Vector2{X: 50, Y: 0}, "", map[universe.ObjectID]*universe.Object{
		sun: {ID: sun, Radius: 20},
	})
	u := universe.New(map[universe.SystemID]*universe.System{testSystem: originSys, destSystem: destSys})
	u.UpdateOrbits(0)

	phys := &flight.Physics{System: testSystem}
	ship := &flight.Ship{
		Action:  flight.NavigateTo(flight.InSpace(destSystem, flight.Vector2{X: 30, Y: 0})),
		Physics: phys,
		Info:    flight.ShipInfo{Kind: hangar.Shuttle},
	}
	specs := shuttleTable()

	// Act
	runUntilPlanEmpty(t, ship, u, specs, 0.1, 100000)

	// Assert
	assert.Equal(t, destSystem, phys.System)
	assert.Less(t, phys.Velocity.Length(), 1e-2)
}
