package flight

import "github.com/cosmicverge/tickengine/internal/domain/universe"

// Location is {system, in-space point or docked object id}. Exactly one of
// Point or DockedObject is set; DockedObject non-nil means docked.
type Location struct {
	System       universe.SystemID  `json:"system"`
	Point        Vector2            `json:"point,omitempty"`
	DockedObject *universe.ObjectID `json:"docked_object,omitempty"`
}

// IsDocked reports whether this location names a docked object rather than
// an in-space point.
func (l Location) IsDocked() bool {
	return l.DockedObject != nil
}

// InSpace builds a Location for a free-floating point in a system.
func InSpace(system universe.SystemID, point Vector2) Location {
	return Location{System: system, Point: point}
}

// Docked builds a Location for a pilot docked at an object.
func Docked(system universe.SystemID, object universe.ObjectID) Location {
	return Location{System: system, DockedObject: &object}
}

// ActionKind distinguishes the two piloting action variants.
type ActionKind int

const (
	ActionIdle ActionKind = iota
	ActionNavigateTo
)

// PilotAction is either Idle or NavigateTo(destination).
type PilotAction struct {
	Kind        ActionKind `json:"kind"`
	Destination Location   `json:"destination,omitempty"`
}

// Idle is the zero-value piloting action: hold position.
func Idle() PilotAction {
	return PilotAction{Kind: ActionIdle}
}

// NavigateTo builds a piloting action that flies to destination.
func NavigateTo(destination Location) PilotAction {
	return PilotAction{Kind: ActionNavigateTo, Destination: destination}
}

func (a PilotAction) Equal(b PilotAction) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == ActionIdle {
		return true
	}
	if a.Destination.System != b.Destination.System {
		return false
	}
	if a.Destination.IsDocked() != b.Destination.IsDocked() {
		return false
	}
	if a.Destination.IsDocked() {
		return *a.Destination.DockedObject == *b.Destination.DockedObject
	}
	return approxEqualVector(a.Destination.Point, b.Destination.Point)
}
