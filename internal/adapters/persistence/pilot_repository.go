package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cosmicverge/tickengine/internal/application/session"
	"github.com/cosmicverge/tickengine/internal/domain/flight"
)

// GormPilotStore implements session.PilotStore using GORM.
type GormPilotStore struct {
	db *gorm.DB
}

// NewGormPilotStore creates a new GORM-backed pilot store.
func NewGormPilotStore(db *gorm.DB) *GormPilotStore {
	return &GormPilotStore{db: db}
}

// LoadPilot retrieves a pilot by id.
func (r *GormPilotStore) LoadPilot(ctx context.Context, id flight.PilotID) (session.PilotRecord, error) {
	var model PilotModel
	result := r.db.WithContext(ctx).Where("id = ?", int64(id)).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return session.PilotRecord{}, fmt.Errorf("persistence: pilot %d not found", id)
		}
		return session.PilotRecord{}, fmt.Errorf("persistence: load pilot %d: %w", id, result.Error)
	}
	return modelToPilot(&model), nil
}

// ListPilotsByAccount lists every pilot belonging to an account.
func (r *GormPilotStore) ListPilotsByAccount(ctx context.Context, account session.AccountID) ([]session.PilotRecord, error) {
	var models []PilotModel
	result := r.db.WithContext(ctx).Where("account_id = ?", int64(account)).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("persistence: list pilots for account %d: %w", account, result.Error)
	}

	pilots := make([]session.PilotRecord, len(models))
	for i, model := range models {
		pilots[i] = modelToPilot(&model)
	}
	return pilots, nil
}

// FindPilotByName looks up a pilot by case-insensitive name, server-wide.
func (r *GormPilotStore) FindPilotByName(ctx context.Context, name string) (session.PilotRecord, bool, error) {
	var model PilotModel
	result := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return session.PilotRecord{}, false, nil
		}
		return session.PilotRecord{}, false, fmt.Errorf("persistence: find pilot by name %q: %w", name, result.Error)
	}
	return modelToPilot(&model), true, nil
}

// InsertPilot creates a new pilot for the given account. The pilots.name
// unique index compares names exactly, so it rejects only an exact-case
// duplicate; case-insensitive uniqueness is checked beforehand through
// FindPilotByName. A colliding insert is mapped to session.ErrUniqueViolation
// so CreatePilotHandler doesn't need to know gorm/SQL error shapes.
func (r *GormPilotStore) InsertPilot(ctx context.Context, account session.AccountID, name string) (session.PilotRecord, error) {
	model := PilotModel{
		AccountID: int64(account),
		Name:      name,
		CreatedAt: time.Now(),
	}
	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return session.PilotRecord{}, session.ErrUniqueViolation
		}
		return session.PilotRecord{}, fmt.Errorf("persistence: insert pilot %q: %w", name, result.Error)
	}
	return modelToPilot(&model), nil
}

// AccountPermissions returns every permission granted to the account across
// all of the groups it belongs to, deduplicated.
func (r *GormPilotStore) AccountPermissions(ctx context.Context, account session.AccountID) ([]session.Permission, error) {
	var links []AccountPermissionGroupModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", int64(account)).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("persistence: load permission groups for account %d: %w", account, err)
	}
	if len(links) == 0 {
		return nil, nil
	}

	groupNames := make([]string, len(links))
	for i, l := range links {
		groupNames[i] = l.GroupName
	}

	var groups []PermissionGroupModel
	if err := r.db.WithContext(ctx).Where("name IN ?", groupNames).Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("persistence: load permission group definitions: %w", err)
	}

	seen := make(map[session.Permission]struct{})
	var permissions []session.Permission
	for _, g := range groups {
		var names []string
		if err := json.Unmarshal([]byte(g.Permissions), &names); err != nil {
			continue
		}
		for _, n := range names {
			p := session.Permission(n)
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			permissions = append(permissions, p)
		}
	}
	return permissions, nil
}

func modelToPilot(m *PilotModel) session.PilotRecord {
	return session.PilotRecord{
		ID:        flight.PilotID(m.ID),
		AccountID: session.AccountID(m.AccountID),
		Name:      m.Name,
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
