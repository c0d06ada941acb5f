package session

import (
	"github.com/cosmicverge/tickengine/internal/domain/flight"
)

// Outbound frames the Broadcaster sends to a session. The websocket
// transport tags each one with its type name and sends it as a JSON text
// frame, not a binary one; this package only builds the values.

// Unauthenticated is sent immediately on connect, before any login.
type Unauthenticated struct{}

// ServerStatus reports the process-wide connected-pilot count.
type ServerStatus struct {
	ConnectedPilots int64 `json:"connected_pilots"`
}

// PilotSummary is the client-facing projection of a PilotRecord.
type PilotSummary struct {
	ID   flight.PilotID `json:"id"`
	Name string         `json:"name"`
}

// Authenticated is sent once a session's installation_login resolves to an
// account.
type Authenticated struct {
	Account Account        `json:"account"`
	Pilots  []PilotSummary `json:"pilots"`
}

// PilotChanged responds to a successful SelectPilot.
type PilotChanged struct {
	Pilot    PilotSummary    `json:"pilot"`
	Location flight.Location `json:"location"`
	Action   flight.PilotAction `json:"action"`
}

// ShipUpdate is one ship's broadcasted state within a SpaceUpdate.
type ShipUpdate struct {
	PilotID flight.PilotID    `json:"pilot_id"`
	Info    flight.ShipInfo   `json:"ship_info"`
	Action  flight.PilotAction `json:"action"`
	Physics flight.Physics    `json:"physics"`
}

// SpaceUpdate is the per-session, per-tick physics broadcast: the
// recipient's own location/action plus every ship in their system, their
// own included. Docked recipients get an empty Ships list (spec.md §4.E).
type SpaceUpdate struct {
	Timestamp float64             `json:"timestamp"`
	Location  flight.Location     `json:"location"`
	Action    flight.PilotAction  `json:"action"`
	Ships     []ShipUpdate        `json:"ships"`
}

// ErrorMessage carries a stable error key back to the client, per
// spec.md's classified error keys (pilot-error-invalid-name, not-found,
// pilot not found, pilot-error-name-already-taken, pilot-error-too-many-pilots).
type ErrorMessage struct {
	Key string `json:"key"`
}
