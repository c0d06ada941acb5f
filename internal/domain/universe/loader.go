package universe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// descriptionFile mirrors the on-disk universe description: a map of system
// id to its static catalog entry.
type descriptionFile struct {
	Systems map[SystemID]systemDescription `yaml:"systems"`
}

type systemDescription struct {
	GalacticPosition struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
	} `yaml:"galactic_position"`
	Background string                        `yaml:"background"`
	Objects    map[ObjectID]objectDescription `yaml:"objects"`
}

type objectDescription struct {
	Radius          float64 `yaml:"radius"`
	OrbitParent     *int    `yaml:"orbit_parent"`
	OrbitDistance   float64 `yaml:"orbit_distance"`
	OrbitPeriodDays float64 `yaml:"orbit_period_days"`
	OrbitSeed       float64 `yaml:"orbit_seed"`
	Image           string  `yaml:"image"`
}

// Load reads a universe description file (the YAML document under the
// "systems" key) and returns a fully resolved Universe. Panics if any
// system's object ownership graph is not a forest.
func Load(path string) (*Universe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("universe: read %s: %w", path, err)
	}

	var doc descriptionFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("universe: parse %s: %w", path, err)
	}

	systems := make(map[SystemID]*System, len(doc.Systems))
	for id, desc := range doc.Systems {
		systems[id] = buildSystem(id, desc)
	}

	return New(systems), nil
}

func buildSystem(id SystemID, desc systemDescription) *System {
	objects := make(map[ObjectID]*Object, len(desc.Objects))
	for objID, objDesc := range desc.Objects {
		obj := &Object{
			ID:              objID,
			Radius:          objDesc.Radius,
			OrbitDistance:   objDesc.OrbitDistance,
			OrbitPeriodDays: objDesc.OrbitPeriodDays,
			OrbitSeed:       objDesc.OrbitSeed,
			Image:           objDesc.Image,
		}
		if objDesc.OrbitParent != nil {
			parent := ObjectID(*objDesc.OrbitParent)
			obj.OrbitParent = &parent
		}
		objects[objID] = obj
	}

	return NewSystem(id, Vector2{X: desc.GalacticPosition.X, Y: desc.GalacticPosition.Y}, desc.Background, objects)
}

// topologicalOrder walks a system's ownership graph parent-first and panics
// if it is not a forest (a cycle, or a parent id that doesn't exist).
func topologicalOrder(systemID SystemID, objects map[ObjectID]*Object) []ObjectID {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[ObjectID]int, len(objects))
	order := make([]ObjectID, 0, len(objects))

	var visit func(id ObjectID)
	visit = func(id ObjectID) {
		switch state[id] {
		case visited:
			return
		case visiting:
			panic(fmt.Sprintf("universe: system %q has a cyclic orbit ownership graph at object %d", systemID, id))
		}
		obj, ok := objects[id]
		if !ok {
			panic(fmt.Sprintf("universe: system %q references unknown object %d", systemID, id))
		}
		state[id] = visiting
		if obj.OrbitParent != nil {
			visit(*obj.OrbitParent)
		}
		state[id] = visited
		order = append(order, id)
	}

	for id := range objects {
		visit(id)
	}
	return order
}
