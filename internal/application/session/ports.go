// Package session holds the per-connection Session Broadcaster: session
// state, inbound request handlers, and the pub/sub-driven fan-out of
// SpaceUpdate frames.
package session

import (
	"context"
	"errors"

	"github.com/cosmicverge/tickengine/internal/application/auth"
	"github.com/cosmicverge/tickengine/internal/domain/flight"
)

// AccountID identifies an authenticated account in the external persistent
// store.
type AccountID = auth.AccountID

// Permission is one granted capability on an account.
type Permission string

// Account is the authenticated identity attached to a session.
type Account struct {
	ID          AccountID
	Permissions []Permission
}

// HasPermission reports whether the account was granted perm.
func (a Account) HasPermission(perm Permission) bool {
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// PilotRecord is the external persistent store's view of a pilot, distinct
// from the cache's in-flight physics Entry.
type PilotRecord struct {
	ID        flight.PilotID
	AccountID AccountID
	Name      string
}

// ErrUniqueViolation is returned by PilotStore.InsertPilot when the
// requested name collides with an existing pilot, distinguished from other
// insert failures so CreatePilot can classify it as
// pilot-error-name-already-taken rather than a generic failure.
var ErrUniqueViolation = errors.New("session: unique constraint violated")

// PilotStore is the external persistent store contract this package needs:
// pilot load/list/insert and account permission lookup. No schema is
// prescribed; adapters/persistence provides one concrete implementation.
type PilotStore interface {
	LoadPilot(ctx context.Context, id flight.PilotID) (PilotRecord, error)
	ListPilotsByAccount(ctx context.Context, account AccountID) ([]PilotRecord, error)
	// FindPilotByName looks up a pilot by case-insensitive name across every
	// account: pilot names are unique server-wide, not just within one
	// account's own roster.
	FindPilotByName(ctx context.Context, name string) (PilotRecord, bool, error)
	InsertPilot(ctx context.Context, account AccountID, name string) (PilotRecord, error)
	AccountPermissions(ctx context.Context, account AccountID) ([]Permission, error)
}

// MaxPilotsPerAccount bounds how many pilots CreatePilot allows one account
// to hold.
const MaxPilotsPerAccount = 2
