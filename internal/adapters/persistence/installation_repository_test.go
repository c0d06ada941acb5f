package persistence_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/adapters/persistence"
	"github.com/cosmicverge/tickengine/internal/application/auth"
)

func TestGormInstallationStore_EnsureInstallation_CreatesOnFirstSeen(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormInstallationStore(db)

	// Act
	record, err := store.EnsureInstallation(context.Background(), "install-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, auth.InstallationID("install-1"), record.ID)
	assert.Nil(t, record.AccountID)
}

func TestGormInstallationStore_EnsureInstallation_IsIdempotent(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormInstallationStore(db)
	first, err := store.EnsureInstallation(context.Background(), "install-1")
	require.NoError(t, err)

	// Act
	second, err := store.EnsureInstallation(context.Background(), "install-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGormInstallationStore_Installation_ReturnsErrNotInstalled(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormInstallationStore(db)

	// Act
	_, err := store.Installation(context.Background(), "unknown")

	// Assert
	assert.True(t, errors.Is(err, auth.ErrNotInstalled))
}

func TestGormInstallationStore_LinkAccount_ResolvesViaAccountForInstallation(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	require.NoError(t, db.Create(&persistence.AccountModel{ID: 7}).Error)
	store := persistence.NewGormInstallationStore(db)
	_, err := store.EnsureInstallation(context.Background(), "install-1")
	require.NoError(t, err)

	// Act
	require.NoError(t, store.LinkAccount(context.Background(), "install-1", 7))
	accountID, found, err := store.AccountForInstallation(context.Background(), "install-1")

	// Assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 7, accountID)
}

func TestGormInstallationStore_AccountForInstallation_FalseWhenUnlinked(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormInstallationStore(db)
	_, err := store.EnsureInstallation(context.Background(), "install-1")
	require.NoError(t, err)

	// Act
	_, found, err := store.AccountForInstallation(context.Background(), "install-1")

	// Assert
	require.NoError(t, err)
	assert.False(t, found)
}
