package universe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/domain/universe"
)

func twoSystemUniverse() *universe.Universe {
	sun := universe.ObjectID(0)
	planet := universe.ObjectID(1)
	sys := universe.NewSystem("SM0A9F4", universe.Vector2{}, "", map[universe.ObjectID]*universe.Object{
		sun: {ID: sun, Radius: 50},
		planet: {
			ID: planet, Radius: 5, OrbitParent: &sun,
			OrbitDistance: 1000, OrbitPeriodDays: 10, OrbitSeed: 0,
		},
	})
	return universe.New(map[universe.SystemID]*universe.System{"SM0A9F4": sys})
}

func TestUniverse_OrbitPositionsArePeriodic(t *testing.T) {
	// Arrange
	u := twoSystemUniverse()
	periodSeconds := 10.0 * 86400

	// Act
	u.UpdateOrbits(1234.5)
	first := u.OrbitsFor("SM0A9F4")[1]
	u.UpdateOrbits(1234.5 + periodSeconds)
	second := u.OrbitsFor("SM0A9F4")[1]

	// Assert
	assert.InDelta(t, first.X, second.X, 1e-6)
	assert.InDelta(t, first.Y, second.Y, 1e-6)
}

func TestUniverse_RootObjectSitsAtOrigin(t *testing.T) {
	// Arrange
	u := twoSystemUniverse()

	// Act
	u.UpdateOrbits(0)
	positions := u.OrbitsFor("SM0A9F4")

	// Assert
	require.Contains(t, positions, universe.ObjectID(0))
	assert.Equal(t, universe.Vector2{}, positions[0])
}

func TestUniverse_ChildPositionIsRelativeToParent(t *testing.T) {
	// Arrange
	sun := universe.ObjectID(0)
	station := universe.ObjectID(1)
	moon := universe.ObjectID(2)
	sys := universe.NewSystem("SM0A9F4", universe.Vector2{}, "", map[universe.ObjectID]*universe.Object{
		sun:     {ID: sun, Radius: 50},
		station: {ID: station, OrbitParent: &sun, OrbitDistance: 500, OrbitPeriodDays: 5},
		moon:    {ID: moon, OrbitParent: &station, OrbitDistance: 20, OrbitPeriodDays: 1},
	})
	u := universe.New(map[universe.SystemID]*universe.System{"SM0A9F4": sys})

	// Act
	u.UpdateOrbits(42)
	positions := u.OrbitsFor("SM0A9F4")

	// Assert: the moon's absolute position is the station's absolute position
	// plus the moon's station-relative offset, taken here from the same orbit
	// around the origin-pinned sun of a second system.
	direct := universe.NewSystem("SM0A9F4", universe.Vector2{}, "", map[universe.ObjectID]*universe.Object{
		sun:  {ID: sun, Radius: 50},
		moon: {ID: moon, OrbitParent: &sun, OrbitDistance: 20, OrbitPeriodDays: 1},
	})
	du := universe.New(map[universe.SystemID]*universe.System{"SM0A9F4": direct})
	du.UpdateOrbits(42)
	offset := du.OrbitsFor("SM0A9F4")[moon]
	require.NotEqual(t, universe.Vector2{}, positions[station])
	assert.InDelta(t, positions[station].X+offset.X, positions[moon].X, 1e-9)
	assert.InDelta(t, positions[station].Y+offset.Y, positions[moon].Y, 1e-9)
}

func TestSystem_RootObjectPanicsWithoutOne(t *testing.T) {
	// Arrange & Act / Assert: a cyclic or parent-only graph never resolves a
	// root, so construction itself panics before RootObject is even called.
	parent := universe.ObjectID(1)
	assert.Panics(t, func() {
		universe.NewSystem("X", universe.Vector2{}, "", map[universe.ObjectID]*universe.Object{
			0: {ID: 0, OrbitParent: &parent},
		})
	})
}
