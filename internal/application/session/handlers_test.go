package session_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmicverge/tickengine/internal/application/cache"
	"github.com/cosmicverge/tickengine/internal/application/session"
	"github.com/cosmicverge/tickengine/internal/domain/flight"
)

type fakePilotStore struct {
	byID     map[flight.PilotID]session.PilotRecord
	byAcc    map[session.AccountID][]session.PilotRecord
	nextID   flight.PilotID
	insertEr error
	perms    []session.Permission
}

func newFakePilotStore() *fakePilotStore {
	return &fakePilotStore{
		byID:   make(map[flight.PilotID]session.PilotRecord),
		byAcc:  make(map[session.AccountID][]session.PilotRecord),
		nextID: 1,
	}
}

func (f *fakePilotStore) LoadPilot(_ context.Context, id flight.PilotID) (session.PilotRecord, error) {
	p, ok := f.byID[id]
	if !ok {
		return session.PilotRecord{}, assertErr
	}
	return p, nil
}

func (f *fakePilotStore) ListPilotsByAccount(_ context.Context, account session.AccountID) ([]session.PilotRecord, error) {
	return f.byAcc[account], nil
}

func (f *fakePilotStore) FindPilotByName(_ context.Context, name string) (session.PilotRecord, bool, error) {
	for _, p := range f.byID {
		if strings.EqualFold(p.Name, name) {
			return p, true, nil
		}
	}
	return session.PilotRecord{}, false, nil
}

func (f *fakePilotStore) InsertPilot(_ context.Context, account session.AccountID, name string) (session.PilotRecord, error) {
	if f.insertEr != nil {
		return session.PilotRecord{}, f.insertEr
	}
	p := session.PilotRecord{ID: f.nextID, AccountID: account, Name: name}
	f.nextID++
	f.byID[p.ID] = p
	f.byAcc[account] = append(f.byAcc[account], p)
	return p, nil
}

func (f *fakePilotStore) AccountPermissions(context.Context, session.AccountID) ([]session.Permission, error) {
	return f.perms, nil
}

var assertErr = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

func TestCreatePilotHandler_Handle_RejectsInvalidName(t *testing.T) {
	// Arrange
	store := newFakePilotStore()
	h := session.NewCreatePilotHandler(store)
	sess := session.NewSession("install-1", 4)
	sess.SetAccount(session.Account{ID: 1})
	ctx := session.WithSession(context.Background(), sess)

	// Act
	resp, err := h.Handle(ctx, session.CreatePilotRequest{Name: "###"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, session.ErrorMessage{Key: "pilot-error-invalid-name"}, resp)
}

func TestCreatePilotHandler_Handle_CollapsesWhitespaceAndSucceeds(t *testing.T) {
	// Arrange
	store := newFakePilotStore()
	h := session.NewCreatePilotHandler(store)
	sess := session.NewSession("install-1", 4)
	sess.SetAccount(session.Account{ID: 1})
	ctx := session.WithSession(context.Background(), sess)

	// Act
	resp, err := h.Handle(ctx, session.CreatePilotRequest{Name: "  Jean   Luc  "})

	// Assert
	require.NoError(t, err)
	changed, ok := resp.(session.PilotChanged)
	require.True(t, ok)
	assert.Equal(t, "Jean Luc", changed.Pilot.Name)
}

func TestCreatePilotHandler_Handle_RejectsDuplicateNameCaseInsensitive(t *testing.T) {
	// Arrange
	store := newFakePilotStore()
	existing := session.PilotRecord{ID: 1, AccountID: 1, Name: "Jean Luc"}
	store.byAcc[1] = []session.PilotRecord{existing}
	store.byID[1] = existing
	h := session.NewCreatePilotHandler(store)
	sess := session.NewSession("install-1", 4)
	sess.SetAccount(session.Account{ID: 1})
	ctx := session.WithSession(context.Background(), sess)

	// Act
	resp, err := h.Handle(ctx, session.CreatePilotRequest{Name: "jean luc"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, session.ErrorMessage{Key: "pilot-error-name-already-taken"}, resp)
}

func TestCreatePilotHandler_Handle_RejectsTooManyPilots(t *testing.T) {
	// Arrange
	store := newFakePilotStore()
	store.byAcc[1] = []session.PilotRecord{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	h := session.NewCreatePilotHandler(store)
	sess := session.NewSession("install-1", 4)
	sess.SetAccount(session.Account{ID: 1})
	ctx := session.WithSession(context.Background(), sess)

	// Act
	resp, err := h.Handle(ctx, session.CreatePilotRequest{Name: "Fresh Name"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, session.ErrorMessage{Key: "pilot-error-too-many-pilots"}, resp)
}

func TestSelectPilotHandler_Handle_AttachesOwnedPilot(t *testing.T) {
	// Arrange
	store := newFakePilotStore()
	store.byID[1] = session.PilotRecord{ID: 1, AccountID: 1, Name: "Jean Luc"}
	c := cache.New(discardSlog())
	h := session.NewSelectPilotHandler(store, c)
	sess := session.NewSession("install-1", 4)
	sess.SetAccount(session.Account{ID: 1})
	ctx := session.WithSession(context.Background(), sess)

	// Act
	resp, err := h.Handle(ctx, session.SelectPilotRequest{PilotID: 1})

	// Assert
	require.NoError(t, err)
	changed, ok := resp.(session.PilotChanged)
	require.True(t, ok)
	assert.Equal(t, flight.PilotID(1), changed.Pilot.ID)
	selected, ok := sess.SelectedPilot()
	require.True(t, ok)
	assert.Equal(t, flight.PilotID(1), selected.ID)
}

func TestSelectPilotHandler_Handle_RejectsUnownedPilot(t *testing.T) {
	// Arrange
	store := newFakePilotStore()
	store.byID[1] = session.PilotRecord{ID: 1, AccountID: 99, Name: "Someone Else"}
	c := cache.New(discardSlog())
	h := session.NewSelectPilotHandler(store, c)
	sess := session.NewSession("install-1", 4)
	sess.SetAccount(session.Account{ID: 1})
	ctx := session.WithSession(context.Background(), sess)

	// Act
	resp, err := h.Handle(ctx, session.SelectPilotRequest{PilotID: 1})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, session.ErrorMessage{Key: "not-found"}, resp)
}

type fakeActionWriter struct {
	fields map[string]string
}

func (f *fakeActionWriter) HSet(_ context.Context, _, field, value string) error {
	if f.fields == nil {
		f.fields = make(map[string]string)
	}
	f.fields[field] = value
	return nil
}

func TestFlyHandler_Handle_RequiresSelectedPilot(t *testing.T) {
	// Arrange
	w := &fakeActionWriter{}
	h := session.NewFlyHandler(w)
	sess := session.NewSession("install-1", 4)
	ctx := session.WithSession(context.Background(), sess)

	// Act
	_, err := h.Handle(ctx, session.FlyRequest{Action: flight.Idle()})

	// Assert
	assert.Error(t, err)
}

func TestFlyHandler_Handle_WritesActionForSelectedPilot(t *testing.T) {
	// Arrange
	w := &fakeActionWriter{}
	h := session.NewFlyHandler(w)
	sess := session.NewSession("install-1", 4)
	sess.SelectPilot(session.PilotRecord{ID: 7})
	ctx := session.WithSession(context.Background(), sess)

	// Act
	_, err := h.Handle(ctx, session.FlyRequest{Action: flight.Idle()})

	// Assert
	require.NoError(t, err)
	assert.Contains(t, w.fields, "7")
}

func TestGetPilotInformationHandler_Handle_ReturnsNotFoundKey(t *testing.T) {
	// Arrange
	store := newFakePilotStore()
	h := session.NewGetPilotInformationHandler(store)

	// Act
	resp, err := h.Handle(context.Background(), session.GetPilotInformationRequest{PilotID: 42})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, session.ErrorMessage{Key: "pilot not found"}, resp)
}
