package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cosmicverge/tickengine/internal/application/session"
)

// AccountRecord is the account admin CLI's view of an account row.
type AccountRecord struct {
	ID        session.AccountID
	SuperUser bool
	CreatedAt time.Time
}

// GormAccountStore backs the `account` CLI command: load by id or Twitch
// username, flip the super-user flag.
type GormAccountStore struct {
	db *gorm.DB
}

// NewGormAccountStore builds a GormAccountStore over db.
func NewGormAccountStore(db *gorm.DB) *GormAccountStore {
	return &GormAccountStore{db: db}
}

// LoadAccount loads an account by id.
func (s *GormAccountStore) LoadAccount(ctx context.Context, id session.AccountID) (AccountRecord, error) {
	var model AccountModel
	if err := s.db.WithContext(ctx).First(&model, "id = ?", int64(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return AccountRecord{}, fmt.Errorf("persistence: account %d not found", id)
		}
		return AccountRecord{}, fmt.Errorf("persistence: load account %d: %w", id, err)
	}
	return accountModelToRecord(model), nil
}

// FindAccountByTwitchUsername resolves the account whose linked Twitch
// profile matches username, case-insensitively.
func (s *GormAccountStore) FindAccountByTwitchUsername(ctx context.Context, username string) (AccountRecord, error) {
	var profile TwitchProfileModel
	if err := s.db.WithContext(ctx).
		Where("lower(username) = lower(?)", username).
		First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return AccountRecord{}, fmt.Errorf("persistence: no account linked to twitch user %q", username)
		}
		return AccountRecord{}, fmt.Errorf("persistence: find twitch profile %q: %w", username, err)
	}
	return s.LoadAccount(ctx, session.AccountID(profile.AccountID))
}

// SetSuperUser flips an account's super-user flag.
func (s *GormAccountStore) SetSuperUser(ctx context.Context, id session.AccountID, superUser bool) error {
	result := s.db.WithContext(ctx).Model(&AccountModel{}).
		Where("id = ?", int64(id)).
		Update("super_user", superUser)
	if result.Error != nil {
		return fmt.Errorf("persistence: set super_user on account %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("persistence: account %d not found", id)
	}
	return nil
}

func accountModelToRecord(m AccountModel) AccountRecord {
	return AccountRecord{ID: session.AccountID(m.ID), SuperUser: m.SuperUser, CreatedAt: m.CreatedAt}
}

// PermissionGroupRecord is the admin CLI's view of a permission group and
// its current grant list.
type PermissionGroupRecord struct {
	Name        string
	Permissions []session.Permission
}

// GormPermissionGroupStore backs the `permission-group` CLI command.
type GormPermissionGroupStore struct {
	db *gorm.DB
}

// NewGormPermissionGroupStore builds a GormPermissionGroupStore over db.
func NewGormPermissionGroupStore(db *gorm.DB) *GormPermissionGroupStore {
	return &GormPermissionGroupStore{db: db}
}

// Create inserts a new, empty permission group.
func (s *GormPermissionGroupStore) Create(ctx context.Context, name string) error {
	model := PermissionGroupModel{Name: name, Permissions: "[]"}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("persistence: create permission group %q: %w", name, err)
	}
	return nil
}

// View loads a permission group and its current grants.
func (s *GormPermissionGroupStore) View(ctx context.Context, name string) (PermissionGroupRecord, error) {
	perms, err := s.load(ctx, name)
	if err != nil {
		return PermissionGroupRecord{}, err
	}
	return PermissionGroupRecord{Name: name, Permissions: perms}, nil
}

// AddPermission grants a single permission to the group, if not already
// present.
func (s *GormPermissionGroupStore) AddPermission(ctx context.Context, name string, perm session.Permission) error {
	perms, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	for _, p := range perms {
		if p == perm {
			return nil
		}
	}
	return s.save(ctx, name, append(perms, perm))
}

// RemovePermission revokes a single permission from the group.
func (s *GormPermissionGroupStore) RemovePermission(ctx context.Context, name string, perm session.Permission) error {
	perms, err := s.load(ctx, name)
	if err != nil {
		return err
	}
	kept := perms[:0]
	for _, p := range perms {
		if p != perm {
			kept = append(kept, p)
		}
	}
	return s.save(ctx, name, kept)
}

// AddServicePermissions grants every known permission for svc at once.
func (s *GormPermissionGroupStore) AddServicePermissions(ctx context.Context, name string, svc session.Service) error {
	grants, ok := session.PermissionsForService(svc)
	if !ok {
		return fmt.Errorf("persistence: unknown service %q", svc)
	}
	for _, perm := range grants {
		if err := s.AddPermission(ctx, name, perm); err != nil {
			return err
		}
	}
	return nil
}

// RemoveServicePermissions revokes every known permission for svc at once.
func (s *GormPermissionGroupStore) RemoveServicePermissions(ctx context.Context, name string, svc session.Service) error {
	grants, ok := session.PermissionsForService(svc)
	if !ok {
		return fmt.Errorf("persistence: unknown service %q", svc)
	}
	for _, perm := range grants {
		if err := s.RemovePermission(ctx, name, perm); err != nil {
			return err
		}
	}
	return nil
}

func (s *GormPermissionGroupStore) load(ctx context.Context, name string) ([]session.Permission, error) {
	var model PermissionGroupModel
	if err := s.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("persistence: permission group %q not found", name)
		}
		return nil, fmt.Errorf("persistence: load permission group %q: %w", name, err)
	}
	var perms []session.Permission
	if err := json.Unmarshal([]byte(model.Permissions), &perms); err != nil {
		return nil, fmt.Errorf("persistence: decode permissions for group %q: %w", name, err)
	}
	return perms, nil
}

func (s *GormPermissionGroupStore) save(ctx context.Context, name string, perms []session.Permission) error {
	if perms == nil {
		perms = []session.Permission{}
	}
	encoded, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("persistence: encode permissions for group %q: %w", name, err)
	}
	result := s.db.WithContext(ctx).Model(&PermissionGroupModel{}).
		Where("name = ?", name).
		Update("permissions", string(encoded))
	if result.Error != nil {
		return fmt.Errorf("persistence: save permissions for group %q: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("persistence: permission group %q not found", name)
	}
	return nil
}
