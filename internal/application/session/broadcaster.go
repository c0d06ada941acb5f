package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cosmicverge/tickengine/internal/application/auth"
	"github.com/cosmicverge/tickengine/internal/application/cache"
)

// InstallationStore resolves the account behind an installation_login
// message; the account/installation relationship itself lives in the
// external persistent store.
type InstallationStore interface {
	AccountForInstallation(ctx context.Context, id auth.InstallationID) (AccountID, bool, error)
}

// Broadcaster owns the Manager and reacts to the three pub/sub channels the
// session layer subscribes to: installation_login, connected_pilots_count,
// and system_update_complete.
type Broadcaster struct {
	manager       *Manager
	cache         *cache.Cache
	pilots        PilotStore
	installations InstallationStore
	logger        *slog.Logger
}

// NewBroadcaster builds a Broadcaster over the given session manager.
func NewBroadcaster(manager *Manager, c *cache.Cache, pilots PilotStore, installations InstallationStore, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{manager: manager, cache: c, pilots: pilots, installations: installations, logger: logger}
}

// HandleInstallationLogin re-looks-up the account behind installationID,
// attaches it and the account's pilot list to the session, and responds
// Authenticated{account, pilots}.
func (b *Broadcaster) HandleInstallationLogin(ctx context.Context, installationID auth.InstallationID) error {
	sess, ok := b.manager.Get(installationID)
	if !ok {
		return nil
	}

	accountID, found, err := b.installations.AccountForInstallation(ctx, installationID)
	if err != nil {
		return fmt.Errorf("session: resolve account for installation %s: %w", installationID, err)
	}
	if !found {
		return nil
	}

	permissions, err := b.pilots.AccountPermissions(ctx, accountID)
	if err != nil {
		return fmt.Errorf("session: account permissions for %v: %w", accountID, err)
	}
	account := Account{ID: accountID, Permissions: permissions}
	sess.SetAccount(account)

	records, err := b.pilots.ListPilotsByAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("session: list pilots for account %v: %w", accountID, err)
	}
	summaries := make([]PilotSummary, len(records))
	for i, r := range records {
		summaries[i] = PilotSummary{ID: r.ID, Name: r.Name}
	}

	sess.Send(Authenticated{Account: account, Pilots: summaries})
	return nil
}

// HandleConnectedPilotsCount broadcasts the process-wide connection count to
// every session.
func (b *Broadcaster) HandleConnectedPilotsCount(n int64) {
	status := ServerStatus{ConnectedPilots: n}
	b.manager.Each(func(s *Session) {
		s.Send(status)
	})
}

// HandleSystemUpdateComplete builds the per-system ship list from the
// cache's latest snapshot, then sends each session with a selected pilot
// its own SpaceUpdate: the pilot's location/action plus every ship in that
// pilot's system (its own included), replaced by an empty list when the
// pilot is docked.
func (b *Broadcaster) HandleSystemUpdateComplete(timestamp float64) {
	snapshot := b.cache.Snapshot()

	bySystem := make(map[string][]ShipUpdate)
	for _, e := range snapshot {
		update := ShipUpdate{PilotID: e.PilotID, Info: e.Info, Action: e.Action, Physics: e.Physics}
		bySystem[string(e.Location.System)] = append(bySystem[string(e.Location.System)], update)
	}

	b.manager.Each(func(s *Session) {
		pilot, ok := s.SelectedPilot()
		if !ok {
			return
		}
		entry, ok := snapshot[pilot.ID]
		if !ok {
			return
		}

		var ships []ShipUpdate
		if !entry.Location.IsDocked() {
			ships = bySystem[string(entry.Location.System)]
		}

		s.Send(SpaceUpdate{
			Timestamp: timestamp,
			Location:  entry.Location,
			Action:    entry.Action,
			Ships:     ships,
		})
	})
}
