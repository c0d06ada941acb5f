package cache

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cosmicverge/tickengine/internal/domain/flight"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

// Store is the narrow slice of the coordination store client the cache
// needs to refresh itself.
type Store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HKeys(ctx context.Context, key string) ([]string, error)
}

// Cache is the in-process Location Cache. Refresh swaps in a freshly built
// snapshot under one lock; between refreshes entries are also changed in
// place: Writeback's setLocation updates locations under the lock, and the
// ships ShipsInSystem returns point at the entries' Physics, which the kernel
// writes to directly.
type Cache struct {
	logger *slog.Logger

	mu       sync.RWMutex
	entries  map[flight.PilotID]*Entry
	bySystem map[universe.SystemID][]flight.PilotID
}

// New builds an empty cache; call Refresh before reading from it.
func New(logger *slog.Logger) *Cache {
	return &Cache{
		logger:   logger,
		entries:  make(map[flight.PilotID]*Entry),
		bySystem: make(map[universe.SystemID][]flight.PilotID),
	}
}

// Refresh reads connected_pilots' keys and the pilot_locations/actions/
// physics/ships hashes with five separate store reads (not one pipeline, so
// they are not one atomic view of the store), decodes them, and atomically
// swaps in a freshly built snapshot. Every pilot id present in
// pilot_actions but not pilot_locations is materialized with a default
// location.
func (c *Cache) Refresh(ctx context.Context, s Store) error {
	connected, err := s.HKeys(ctx, store.KeyConnectedPilots)
	if err != nil {
		return err
	}
	locations, err := s.HGetAll(ctx, store.KeyPilotLocations)
	if err != nil {
		return err
	}
	actions, err := s.HGetAll(ctx, store.KeyPilotActions)
	if err != nil {
		return err
	}
	physics, err := s.HGetAll(ctx, store.KeyPilotPhysics)
	if err != nil {
		return err
	}
	ships, err := s.HGetAll(ctx, store.KeyPilotShips)
	if err != nil {
		return err
	}

	warned := decodeSet{}
	entries := make(map[flight.PilotID]*Entry)

	ensure := func(id flight.PilotID) *Entry {
		if e, ok := entries[id]; ok {
			return e
		}
		e := defaultEntry(id)
		entries[id] = e
		return e
	}

	for field, raw := range actions {
		id, ok := parsePilotID(field)
		if !ok {
			continue
		}
		e := ensure(id)
		action, err := decodeAction(raw)
		if err != nil {
			warned.warnOnce(c.logger, "pilot_actions", id, err)
			continue
		}
		e.Action = action
	}

	for field, raw := range locations {
		id, ok := parsePilotID(field)
		if !ok {
			continue
		}
		e := ensure(id)
		loc, err := decodeLocation(raw)
		if err != nil {
			warned.warnOnce(c.logger, "pilot_locations", id, err)
			continue
		}
		e.Location = loc
	}

	for field, raw := range physics {
		id, ok := parsePilotID(field)
		if !ok {
			continue
		}
		e := ensure(id)
		p, err := decodePhysics(raw)
		if err != nil {
			warned.warnOnce(c.logger, "pilot_physics", id, err)
			continue
		}
		e.Physics = p
	}

	for field, raw := range ships {
		id, ok := parsePilotID(field)
		if !ok {
			continue
		}
		e := ensure(id)
		info, err := decodeShipInfo(raw)
		if err != nil {
			warned.warnOnce(c.logger, "pilot_ships", id, err)
			continue
		}
		e.Info = info
	}
	_ = connected // presence is tracked by the connected-pilots manager, not the physics cache

	bySystem := make(map[universe.SystemID][]flight.PilotID, len(entries))
	for id, e := range entries {
		sys := systemOf(e)
		bySystem[sys] = append(bySystem[sys], id)
	}

	c.mu.Lock()
	c.entries = entries
	c.bySystem = bySystem
	c.mu.Unlock()
	return nil
}

// Get returns a pilot's cached entry, if any.
func (c *Cache) Get(id flight.PilotID) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	return e, ok
}

// PilotsInSystem returns the pilot ids whose location names the given
// system, as of the last refresh.
func (c *Cache) PilotsInSystem(id universe.SystemID) []flight.PilotID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.bySystem[id]
	out := make([]flight.PilotID, len(ids))
	copy(out, ids)
	return out
}

// ShipsInSystem builds the kernel Ship inputs for every pilot currently
// cached in the given system. Ships reference the cache's own Physics
// storage by pointer so an in-place kernel mutation is visible to Writeback.
func (c *Cache) ShipsInSystem(id universe.SystemID) []*flight.Ship {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.bySystem[id]
	ships := make([]*flight.Ship, 0, len(ids))
	for _, pid := range ids {
		ships = append(ships, c.entries[pid].toShip())
	}
	return ships
}

// setLocation updates one entry's location under the write lock, used by
// Writeback to keep the in-process snapshot in sync with what was just
// pipelined to the store without waiting for the next full Refresh.
func (c *Cache) setLocation(id flight.PilotID, location flight.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		e.Location = location
	}
}

// Snapshot returns every cached entry, for the session broadcaster's
// per-system ship list computation. Callers must not mutate the result.
func (c *Cache) Snapshot() map[flight.PilotID]*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[flight.PilotID]*Entry, len(c.entries))
	for id, e := range c.entries {
		out[id] = e
	}
	return out
}
