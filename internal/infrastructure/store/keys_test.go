package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

func TestLeaseSystemUpdate_IncludesSystemID(t *testing.T) {
	// Act
	key := store.LeaseSystemUpdate("SM0A9F4")

	// Assert
	assert.Equal(t, "system_update_SM0A9F4", key)
}

func TestKeyNames_MatchCoordinationStoreLayout(t *testing.T) {
	assert.Equal(t, "pilot_locations", store.KeyPilotLocations)
	assert.Equal(t, "pilot_actions", store.KeyPilotActions)
	assert.Equal(t, "pilot_physics", store.KeyPilotPhysics)
	assert.Equal(t, "pilot_ships", store.KeyPilotShips)
	assert.Equal(t, "connected_pilots", store.KeyConnectedPilots)
	assert.Equal(t, "systems_to_process", store.KeySystemsToProcess)
	assert.Equal(t, "world_timestamp", store.KeyWorldTimestamp)
	assert.Equal(t, "systems_ready_to_process", store.ChannelSystemsReadyToProcess)
	assert.Equal(t, "system_update_complete", store.ChannelSystemUpdateComplete)
	assert.Equal(t, "installation_login", store.ChannelInstallationLogin)
	assert.Equal(t, "connected_pilots_count", store.ChannelConnectedPilotsCount)
}
