package cache_test

import (
	"context"
	"log/slog"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/application/cache"
	"github.com/cosmicverge/tickengine/internal/domain/flight"
)

type fakeStore struct {
	hashes map[string]map[string]string
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return f.hashes[key], nil
}

func (f *fakeStore) HKeys(_ context.Context, key string) ([]string, error) {
	keys := make([]string, 0, len(f.hashes[key]))
	for k := range f.hashes[key] {
		keys = append(keys, k)
	}
	return keys, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCache_RefreshMaterializesDefaultLocation(t *testing.T) {
	// Arrange: pilot 1 has an action but no location yet.
	s := &fakeStore{hashes: map[string]map[string]string{
		"pilot_actions": {"1": `{"kind":0}`},
	}}
	c := cache.New(testLogger())

	// Act
	err := c.Refresh(context.Background(), s)

	// Assert
	require.NoError(t, err)
	entry, ok := c.Get(flight.PilotID(1))
	require.True(t, ok)
	assert.Equal(t, flight.Location{}, entry.Location)
}

func TestCache_RefreshBuildsPerSystemIndex(t *testing.T) {
	// Arrange
	s := &fakeStore{hashes: map[string]map[string]string{
		"pilot_locations": {
			"1": `{"system":"SM0A9F4"}`,
			"2": `{"system":"System2"}`,
		},
	}}
	c := cache.New(testLogger())

	// Act
	require.NoError(t, c.Refresh(context.Background(), s))

	// Assert
	assert.ElementsMatch(t, []flight.PilotID{1}, c.PilotsInSystem("SM0A9F4"))
	assert.ElementsMatch(t, []flight.PilotID{2}, c.PilotsInSystem("System2"))
}

func TestCache_RefreshSubstitutesDefaultOnDecodeError(t *testing.T) {
	// Arrange
	s := &fakeStore{hashes: map[string]map[string]string{
		"pilot_actions": {"1": `not-json`},
	}}
	c := cache.New(testLogger())

	// Act
	require.NoError(t, c.Refresh(context.Background(), s))

	// Assert
	entry, ok := c.Get(flight.PilotID(1))
	require.True(t, ok)
	assert.Equal(t, flight.Idle(), entry.Action)
}

func TestWritebackLocation_PreservesDockedObject(t *testing.T) {
	// Arrange
	object := flight.Docked("SM0A9F4", 3)
	phys := flight.Physics{System: "SM0A9F4", Position: flight.Vector2{X: 1, Y: 2}}

	// Act
	result := cache.WritebackLocation(object, phys)

	// Assert
	require.True(t, result.IsDocked())
	assert.Equal(t, *object.DockedObject, *result.DockedObject)
}

func TestWritebackLocation_InSpaceFollowsPhysics(t *testing.T) {
	// Arrange
	previous := flight.InSpace("SM0A9F4", flight.Vector2{})
	phys := flight.Physics{System: "SM0A9F4", Position: flight.Vector2{X: 10, Y: 20}}

	// Act
	result := cache.WritebackLocation(previous, phys)

	// Assert
	assert.False(t, result.IsDocked())
	assert.Equal(t, phys.Position, result.Point)
}
