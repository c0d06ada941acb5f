package session

import (
	"sync"

	"github.com/cosmicverge/tickengine/internal/application/auth"
)

// Session holds per-connection state: the installation id it was minted
// for, the account it has authenticated as (if any), and the pilot it has
// selected (if any). Mutated under its own lock so the Manager's map lock
// is never held across a session state change.
type Session struct {
	InstallationID auth.InstallationID
	Outbound       chan any

	mu            sync.RWMutex
	account       *Account
	selectedPilot *PilotRecord
}

// NewSession builds a session with a buffered outbound channel; the
// transport drains it into the socket.
func NewSession(installationID auth.InstallationID, outboundBuffer int) *Session {
	return &Session{
		InstallationID: installationID,
		Outbound:       make(chan any, outboundBuffer),
	}
}

// Account returns the session's authenticated account, if any.
func (s *Session) Account() (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return Account{}, false
	}
	return *s.account, true
}

// SetAccount attaches an authenticated account to the session.
func (s *Session) SetAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = &a
}

// SelectedPilot returns the session's currently selected pilot, if any.
func (s *Session) SelectedPilot() (PilotRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedPilot == nil {
		return PilotRecord{}, false
	}
	return *s.selectedPilot, true
}

// SelectPilot attaches the given pilot to the session.
func (s *Session) SelectPilot(p PilotRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedPilot = &p
}

// Send enqueues an outbound frame, dropping it if the session's buffer is
// full rather than blocking the caller (a slow/dead connection shouldn't
// stall the broadcast fan-out for every other session).
func (s *Session) Send(frame any) {
	select {
	case s.Outbound <- frame:
	default:
	}
}

// Manager tracks every connected session, keyed by installation id. The map
// itself is guarded by one lock for add/remove; each Session's own fields
// are guarded independently, per spec.md's "guarded per-entry" requirement.
type Manager struct {
	mu       sync.RWMutex
	sessions map[auth.InstallationID]*Session
}

// NewManager builds an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[auth.InstallationID]*Session)}
}

// Add registers a new session, replacing any prior session for the same
// installation id (a reconnect supersedes the old connection).
func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.InstallationID] = s
}

// Remove drops a session on disconnect.
func (m *Manager) Remove(installationID auth.InstallationID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, installationID)
}

// Get returns the session for an installation id, if connected.
func (m *Manager) Get(installationID auth.InstallationID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[installationID]
	return s, ok
}

// Each calls fn for every currently connected session. fn must not call
// back into Manager.Add/Remove.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		fn(s)
	}
}
