package hangar_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/domain/hangar"
)

func TestSpec_Acceleration(t *testing.T) {
	// Arrange
	spec := hangar.Spec{Mass: 10, Thrust: 50, RotationRate: 1}

	// Act
	accel := spec.Acceleration()

	// Assert
	assert.Equal(t, 5.0, accel)
}

func TestTable_GetUnknownKind(t *testing.T) {
	// Arrange
	table := hangar.Table{}

	// Act
	_, err := table.Get("Nonexistent")

	// Assert
	assert.Error(t, err)
}

func TestLoad_ReadsHangarTable(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hangar:
  Shuttle:
    mass: 10
    thrust: 50
    rotation_rate: 1.0471975511965976
systems: {}
`), 0o644))

	// Act
	table, err := hangar.Load(path)

	// Assert
	require.NoError(t, err)
	spec, err := table.Get(hangar.Shuttle)
	require.NoError(t, err)
	assert.Equal(t, 5.0, spec.Acceleration())
}
