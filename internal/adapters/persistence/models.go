package persistence

import (
	"time"
)

// AccountModel represents the accounts table: an authenticated identity,
// independent of which OAuth provider was used to create it.
type AccountModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SuperUser   bool      `gorm:"column:super_user;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// InstallationModel represents the installations table: one row per client
// installation id, optionally linked to the account an OAuth callback
// resolved it to.
type InstallationModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	AccountID *int64    `gorm:"column:account_id;index"`
	Account   *AccountModel `gorm:"foreignKey:AccountID;references:ID"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (InstallationModel) TableName() string {
	return "installations"
}

// PilotModel represents the pilots table.
type PilotModel struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	AccountID int64  `gorm:"column:account_id;not null;index:idx_pilots_account"`
	Account   AccountModel `gorm:"foreignKey:AccountID;references:ID"`
	Name      string `gorm:"column:name;not null;uniqueIndex:idx_pilots_name_ci"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (PilotModel) TableName() string {
	return "pilots"
}

// TwitchProfileModel links an account to the Twitch identity its OAuth
// login resolved to. Populated by the out-of-scope OAuth callback handler;
// read here only so the account admin CLI can resolve "--twitch <name>".
type TwitchProfileModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	AccountID int64  `gorm:"column:account_id;not null;index"`
	Username  string `gorm:"column:username;not null;uniqueIndex:idx_twitch_username_ci"`
}

func (TwitchProfileModel) TableName() string {
	return "twitch_profiles"
}

// PermissionGroupModel represents a named bundle of permissions that can be
// granted to an account.
type PermissionGroupModel struct {
	Name        string `gorm:"column:name;primaryKey"`
	Permissions string `gorm:"column:permissions;type:text"` // JSON array of strings
}

func (PermissionGroupModel) TableName() string {
	return "permission_groups"
}

// AccountPermissionGroupModel is the join table granting a permission
// group to an account.
type AccountPermissionGroupModel struct {
	AccountID int64  `gorm:"column:account_id;primaryKey"`
	GroupName string `gorm:"column:group_name;primaryKey"`
}

func (AccountPermissionGroupModel) TableName() string {
	return "account_permission_groups"
}
