package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cosmicverge/tickengine/internal/application/auth"
	"github.com/cosmicverge/tickengine/internal/application/session"
)

// GormInstallationStore implements both auth.InstallationStore and
// session.InstallationStore using GORM: the two packages need slightly
// different views of the same installations table.
type GormInstallationStore struct {
	db *gorm.DB
}

// NewGormInstallationStore creates a new GORM-backed installation store.
func NewGormInstallationStore(db *gorm.DB) *GormInstallationStore {
	return &GormInstallationStore{db: db}
}

// Installation loads an installation record by id.
func (r *GormInstallationStore) Installation(ctx context.Context, id auth.InstallationID) (auth.InstallationRecord, error) {
	var model InstallationModel
	result := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return auth.InstallationRecord{}, auth.ErrNotInstalled
		}
		return auth.InstallationRecord{}, fmt.Errorf("persistence: load installation %s: %w", id, result.Error)
	}
	return modelToInstallation(&model), nil
}

// EnsureInstallation returns the existing installation record for id, or
// creates a fresh unlinked one if this is the first time id has been seen.
func (r *GormInstallationStore) EnsureInstallation(ctx context.Context, id auth.InstallationID) (auth.InstallationRecord, error) {
	record, err := r.Installation(ctx, id)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, auth.ErrNotInstalled) {
		return auth.InstallationRecord{}, err
	}

	model := InstallationModel{ID: string(id), CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return auth.InstallationRecord{}, fmt.Errorf("persistence: create installation %s: %w", id, err)
	}
	return modelToInstallation(&model), nil
}

// LinkAccount records that installationID completed an OAuth callback as
// accountID, called by the HTTP OAuth callback handler (out of scope here).
func (r *GormInstallationStore) LinkAccount(ctx context.Context, installationID auth.InstallationID, accountID auth.AccountID) error {
	result := r.db.WithContext(ctx).Model(&InstallationModel{}).
		Where("id = ?", string(installationID)).
		Update("account_id", int64(accountID))
	if result.Error != nil {
		return fmt.Errorf("persistence: link installation %s to account %d: %w", installationID, accountID, result.Error)
	}
	return nil
}

// AccountForInstallation resolves the account behind an installation id,
// for session.Broadcaster's installation_login handling.
func (r *GormInstallationStore) AccountForInstallation(ctx context.Context, id auth.InstallationID) (session.AccountID, bool, error) {
	record, err := r.Installation(ctx, id)
	if err != nil {
		if errors.Is(err, auth.ErrNotInstalled) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if record.AccountID == nil {
		return 0, false, nil
	}
	return session.AccountID(*record.AccountID), true, nil
}

func modelToInstallation(m *InstallationModel) auth.InstallationRecord {
	record := auth.InstallationRecord{ID: auth.InstallationID(m.ID)}
	if m.AccountID != nil {
		accountID := auth.AccountID(*m.AccountID)
		record.AccountID = &accountID
	}
	return record
}
