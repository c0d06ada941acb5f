package cache

import (
	"context"
	"strconv"

	"github.com/cosmicverge/tickengine/internal/domain/flight"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

// Pipeliner is the subset of the store's pipeline type used for writeback.
type Pipeliner = store.Pipeliner

// WritebackLocation derives a pilot's post-simulation Location from its
// updated physics. A pilot docked before simulation stays docked at the same
// object (this spec defines no in-kernel dock/undock transition); everyone
// else is InSpace at their new position, with location.system kept in sync
// with physics.system per the cache invariant.
func WritebackLocation(previous flight.Location, physics flight.Physics) flight.Location {
	if previous.IsDocked() {
		return flight.Docked(physics.System, *previous.DockedObject)
	}
	return flight.InSpace(physics.System, physics.Position)
}

// Writeback pipelines updated physics and location writes for a set of
// ships back to pilot_physics and pilot_locations in one round trip.
func Writeback(ctx context.Context, pipe Pipeliner, c *Cache, ships []*flight.Ship) error {
	for _, ship := range ships {
		entry, ok := c.Get(ship.PilotID)
		if !ok {
			continue
		}
		newLocation := WritebackLocation(entry.Location, *ship.Physics)

		physicsJSON, err := encodePhysics(*ship.Physics)
		if err != nil {
			continue
		}
		locationJSON, err := encodeLocation(newLocation)
		if err != nil {
			continue
		}

		pidField := pilotIDField(ship.PilotID)
		pipe.HSet(ctx, store.KeyPilotPhysics, pidField, physicsJSON)
		pipe.HSet(ctx, store.KeyPilotLocations, pidField, locationJSON)

		c.setLocation(ship.PilotID, newLocation)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func pilotIDField(id flight.PilotID) string {
	return strconv.FormatInt(int64(id), 10)
}
