package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/infrastructure/config"
)

func TestSetDefaults_FillsEveryRequiredField(t *testing.T) {
	// Arrange
	cfg := &config.Config{}
	cfg.OAuth.ClientID = "client-id"
	cfg.OAuth.ClientSecret = "client-secret"

	// Act
	config.SetDefaults(cfg)

	// Assert: OAuth credentials have no sensible default and must be
	// supplied by the operator; everything else should be filled in.
	require.NoError(t, config.ValidateConfig(cfg))
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.URL)
	assert.Equal(t, "0.0.1", cfg.Session.ProtocolVersion)
}

func TestSetDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	// Arrange
	cfg := &config.Config{}
	cfg.Store.URL = "redis://store.internal:6380/1"

	// Act
	config.SetDefaults(cfg)

	// Assert
	assert.Equal(t, "redis://store.internal:6380/1", cfg.Store.URL)
}
