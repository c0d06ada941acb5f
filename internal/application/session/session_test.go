package session_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/application/session"
)

func discardSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSession_SetAccount_IsVisibleToLaterReaders(t *testing.T) {
	// Arrange
	s := session.NewSession("install-1", 4)

	// Act
	s.SetAccount(session.Account{ID: 7})

	// Assert
	account, ok := s.Account()
	require.True(t, ok)
	assert.Equal(t, session.AccountID(7), account.ID)
}

func TestSession_SelectedPilot_AbsentBeforeSelection(t *testing.T) {
	// Arrange
	s := session.NewSession("install-1", 4)

	// Act
	_, ok := s.SelectedPilot()

	// Assert
	assert.False(t, ok)
}

func TestSession_Send_DropsWhenBufferFull(t *testing.T) {
	// Arrange
	s := session.NewSession("install-1", 1)
	s.Send("first")

	// Act
	s.Send("second")

	// Assert
	assert.Len(t, s.Outbound, 1)
	assert.Equal(t, "first", <-s.Outbound)
}

func TestManager_AddGetRemove_RoundTrips(t *testing.T) {
	// Arrange
	m := session.NewManager()
	s := session.NewSession("install-1", 4)

	// Act
	m.Add(s)
	found, ok := m.Get("install-1")

	// Assert
	require.True(t, ok)
	assert.Same(t, s, found)

	// Act
	m.Remove("install-1")
	_, ok = m.Get("install-1")

	// Assert
	assert.False(t, ok)
}

func TestManager_Add_ReplacesPriorSessionForSameInstallation(t *testing.T) {
	// Arrange
	m := session.NewManager()
	first := session.NewSession("install-1", 4)
	second := session.NewSession("install-1", 4)

	// Act
	m.Add(first)
	m.Add(second)
	found, ok := m.Get("install-1")

	// Assert
	require.True(t, ok)
	assert.Same(t, second, found)
}

func TestManager_Each_VisitsEveryConnectedSession(t *testing.T) {
	// Arrange
	m := session.NewManager()
	m.Add(session.NewSession("install-1", 4))
	m.Add(session.NewSession("install-2", 4))

	// Act
	var count int
	m.Each(func(*session.Session) { count++ })

	// Assert
	assert.Equal(t, 2, count)
}
