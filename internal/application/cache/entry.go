// Package cache holds the authoritative per-pilot Location Cache: an
// in-process, read-mostly snapshot of pilot locations, actions, ship info,
// and physics, refreshed once per tick from the coordination store.
package cache

import (
	"github.com/cosmicverge/tickengine/internal/domain/flight"
	"github.com/cosmicverge/tickengine/internal/domain/hangar"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
)

// Entry is one pilot's cached state. Absent fields (never written, or
// decode failures) default to zero/Idle/Shuttle per the data model.
type Entry struct {
	PilotID  flight.PilotID
	Location flight.Location
	Action   flight.PilotAction
	Info     flight.ShipInfo
	Physics  flight.Physics
}

func defaultEntry(id flight.PilotID) *Entry {
	return &Entry{
		PilotID: id,
		Action:  flight.Idle(),
		Info:    flight.ShipInfo{Kind: hangar.Shuttle},
	}
}

// toShip adapts a cache entry into the kernel's Ship input. Physics is
// passed by pointer into the entry itself so kernel mutation lands directly
// in the cache's copy (the caller still owns writeback to the store).
func (e *Entry) toShip() *flight.Ship {
	return &flight.Ship{
		PilotID: e.PilotID,
		Action:  e.Action,
		Info:    e.Info,
		Physics: &e.Physics,
	}
}

// systemOf returns the system a pilot's location currently names, used to
// build the per-system inverted index.
func systemOf(e *Entry) universe.SystemID {
	return e.Location.System
}
