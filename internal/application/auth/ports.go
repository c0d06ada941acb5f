package auth

import (
	"context"
	"errors"
)

// Provider identifies an external identity provider a session can
// authenticate against.
type Provider string

const (
	ProviderTwitch Provider = "twitch"
)

// InstallationID identifies one client installation, independent of any
// account it may later be linked to.
type InstallationID string

// AccountID identifies an authenticated account in the external persistent
// store.
type AccountID int64

// ErrNotInstalled is returned by InstallationStore.Installation when an installation id has no
// corresponding install record yet, so no provider callback can be bound to
// it.
var ErrNotInstalled = errors.New("auth: installation id is not registered")

// URLBuilder mints a provider login URL bound to an installation id. The
// OAuth/Twitch flow itself, and the HTTP handler that serves the provider's
// callback, are genuinely out of scope here: this is the narrow port the
// session layer calls to answer an AuthenticationUrl request, mirroring how
// the rest of this codebase defines a ports.go interface for every external
// system it doesn't own rather than reaching into that system directly.
type URLBuilder interface {
	AuthenticationURL(ctx context.Context, installationID InstallationID, provider Provider) (string, error)
}

// InstallationRecord is what the external collaborator persists per
// installation: which account (if any) it has been linked to by a completed
// OAuth callback.
type InstallationRecord struct {
	ID        InstallationID
	AccountID *AccountID
}

// InstallationStore is the installation-record contract the session layer
// needs from the external collaborator: look up the record a session's
// installation_login message refers to, and upsert one once an installation
// is first seen.
type InstallationStore interface {
	Installation(ctx context.Context, id InstallationID) (InstallationRecord, error)
	EnsureInstallation(ctx context.Context, id InstallationID) (InstallationRecord, error)
}
