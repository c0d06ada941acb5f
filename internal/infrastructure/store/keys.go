package store

import "fmt"

// Hash and key names, exactly as enumerated in the coordination store layout.
const (
	KeyPilotLocations  = "pilot_locations"
	KeyPilotActions    = "pilot_actions"
	KeyPilotPhysics    = "pilot_physics"
	KeyPilotShips      = "pilot_ships"
	KeyConnectedPilots = "connected_pilots"
	KeySystemsToProcess = "systems_to_process"
	KeyWorldTimestamp  = "world_timestamp"
)

// Lease key names.
const (
	LeaseSystemQueuer            = "system_queuer"
	LeaseSystemUpdateCompleted   = "system_update_completed"
	LeaseConnectedPilotsCleaner  = "connected_pilots_cleaner"
	LeaseConnectedPilotsCounter  = "connected_pilots_counter"
)

// LeaseSystemUpdate names the per-system update lease for system id.
func LeaseSystemUpdate(systemID string) string {
	return fmt.Sprintf("system_update_%s", systemID)
}

// Pub/sub channel names.
const (
	ChannelSystemsReadyToProcess = "systems_ready_to_process"
	ChannelSystemUpdateComplete  = "system_update_complete"
	ChannelInstallationLogin     = "installation_login"
	ChannelConnectedPilotsCount  = "connected_pilots_count"
)
