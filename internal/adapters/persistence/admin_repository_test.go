package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/adapters/persistence"
	"github.com/cosmicverge/tickengine/internal/application/session"
)

func TestGormAccountStore_SetSuperUser_RoundTrips(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	require.NoError(t, db.Create(&persistence.AccountModel{ID: 1}).Error)
	store := persistence.NewGormAccountStore(db)

	// Act
	require.NoError(t, store.SetSuperUser(context.Background(), 1, true))
	record, err := store.LoadAccount(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.True(t, record.SuperUser)
}

func TestGormAccountStore_SetSuperUser_RejectsUnknownAccount(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormAccountStore(db)

	// Act
	err := store.SetSuperUser(context.Background(), 99, true)

	// Assert
	assert.Error(t, err)
}

func TestGormAccountStore_FindAccountByTwitchUsername_IsCaseInsensitive(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	require.NoError(t, db.Create(&persistence.AccountModel{ID: 1}).Error)
	require.NoError(t, db.Create(&persistence.TwitchProfileModel{ID: "t1", AccountID: 1, Username: "Picard"}).Error)
	store := persistence.NewGormAccountStore(db)

	// Act
	record, err := store.FindAccountByTwitchUsername(context.Background(), "picard")

	// Assert
	require.NoError(t, err)
	assert.EqualValues(t, 1, record.ID)
}

func TestGormPermissionGroupStore_CreateViewAddRemove(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormPermissionGroupStore(db)
	require.NoError(t, store.Create(context.Background(), "moderators"))

	// Act
	require.NoError(t, store.AddPermission(context.Background(), "moderators", "account:view"))
	afterAdd, err := store.View(context.Background(), "moderators")
	require.NoError(t, err)
	require.NoError(t, store.RemovePermission(context.Background(), "moderators", "account:view"))
	afterRemove, err := store.View(context.Background(), "moderators")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []session.Permission{"account:view"}, afterAdd.Permissions)
	assert.Empty(t, afterRemove.Permissions)
}

func TestGormPermissionGroupStore_AddServicePermissions_GrantsWholeCatalog(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormPermissionGroupStore(db)
	require.NoError(t, store.Create(context.Background(), "universe-readers"))

	// Act
	require.NoError(t, store.AddServicePermissions(context.Background(), "universe-readers", session.ServiceUniverse))
	group, err := store.View(context.Background(), "universe-readers")

	// Assert
	require.NoError(t, err)
	assert.ElementsMatch(t, []session.Permission{"universe:list", "universe:view"}, group.Permissions)
}

func TestGormPermissionGroupStore_RemoveServicePermissions_RevokesWholeCatalog(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormPermissionGroupStore(db)
	require.NoError(t, store.Create(context.Background(), "universe-readers"))
	require.NoError(t, store.AddServicePermissions(context.Background(), "universe-readers", session.ServiceUniverse))

	// Act
	require.NoError(t, store.RemoveServicePermissions(context.Background(), "universe-readers", session.ServiceUniverse))
	group, err := store.View(context.Background(), "universe-readers")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, group.Permissions)
}

func TestGormPermissionGroupStore_View_RejectsUnknownGroup(t *testing.T) {
	// Arrange
	db := openTestDB(t)
	store := persistence.NewGormPermissionGroupStore(db)

	// Act
	_, err := store.View(context.Background(), "ghosts")

	// Assert
	assert.Error(t, err)
}
