package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cosmicverge/tickengine/internal/application/cache"
	"github.com/cosmicverge/tickengine/internal/application/common"
	"github.com/cosmicverge/tickengine/internal/domain/flight"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

// Context keys for carrying the calling session through a mediator request,
// mirroring auth.WithInstallationID.
type sessionContextKey int

const sessionKey sessionContextKey = iota

// WithSession injects the requesting session into ctx so handlers can read
// its authenticated account / selected pilot.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext extracts the session a request arrived on.
func SessionFromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(sessionKey).(*Session)
	if !ok || s == nil {
		return nil, fmt.Errorf("session: no session in context")
	}
	return s, nil
}

// ActionWriter is the narrow slice of the coordination store Fly needs:
// writing a pilot's requested action into pilot_actions.
type ActionWriter interface {
	HSet(ctx context.Context, key, field, value string) error
}

// --- SelectPilot ---

// SelectPilotRequest asks to attach an owned pilot to the calling session.
type SelectPilotRequest struct {
	PilotID flight.PilotID
}

// SelectPilotHandler implements SelectPilot(pilot_id).
type SelectPilotHandler struct {
	pilots PilotStore
	cache  *cache.Cache
}

func NewSelectPilotHandler(pilots PilotStore, c *cache.Cache) *SelectPilotHandler {
	return &SelectPilotHandler{pilots: pilots, cache: c}
}

func (h *SelectPilotHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	req, ok := request.(SelectPilotRequest)
	if !ok {
		return nil, fmt.Errorf("session: unexpected request type %T", request)
	}

	sess, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	account, ok := sess.Account()
	if !ok {
		return ErrorMessage{Key: "not-found"}, nil
	}

	pilot, err := h.pilots.LoadPilot(ctx, req.PilotID)
	if err != nil {
		return ErrorMessage{Key: "not-found"}, nil
	}
	if pilot.AccountID != account.ID {
		return ErrorMessage{Key: "not-found"}, nil
	}

	sess.SelectPilot(pilot)

	entry, _ := h.cache.Get(pilot.ID)
	resp := PilotChanged{Pilot: PilotSummary{ID: pilot.ID, Name: pilot.Name}}
	if entry != nil {
		resp.Location = entry.Location
		resp.Action = entry.Action
	}
	return resp, nil
}

// --- CreatePilot ---

// CreatePilotRequest asks to create a new pilot for the calling account.
type CreatePilotRequest struct {
	Name string
}

// CreatePilotHandler implements CreatePilot{name}.
type CreatePilotHandler struct {
	pilots PilotStore
}

func NewCreatePilotHandler(pilots PilotStore) *CreatePilotHandler {
	return &CreatePilotHandler{pilots: pilots}
}

var validPilotName = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]| (?: ?[A-Za-z0-9]))*$`)

// cleanPilotName trims, collapses runs of spaces to one, per spec.md
// CreatePilot validation.
func cleanPilotName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	return strings.Join(strings.Fields(trimmed), " ")
}

func (h *CreatePilotHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	req, ok := request.(CreatePilotRequest)
	if !ok {
		return nil, fmt.Errorf("session: unexpected request type %T", request)
	}

	sess, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	account, ok := sess.Account()
	if !ok {
		return ErrorMessage{Key: "not-found"}, nil
	}

	name := cleanPilotName(req.Name)
	if name == "" || len(name) > 40 || !validPilotName.MatchString(name) {
		return ErrorMessage{Key: "pilot-error-invalid-name"}, nil
	}

	existing, err := h.pilots.ListPilotsByAccount(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("session: list pilots for account %v: %w", account.ID, err)
	}
	if len(existing) >= MaxPilotsPerAccount {
		return ErrorMessage{Key: "pilot-error-too-many-pilots"}, nil
	}

	if _, found, err := h.pilots.FindPilotByName(ctx, name); err != nil {
		return nil, fmt.Errorf("session: find pilot by name %q: %w", name, err)
	} else if found {
		return ErrorMessage{Key: "pilot-error-name-already-taken"}, nil
	}

	pilot, err := h.pilots.InsertPilot(ctx, account.ID, name)
	if err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return ErrorMessage{Key: "pilot-error-name-already-taken"}, nil
		}
		return nil, fmt.Errorf("session: insert pilot: %w", err)
	}

	return PilotChanged{Pilot: PilotSummary{ID: pilot.ID, Name: pilot.Name}}, nil
}

// --- Fly ---

// FlyRequest carries the piloting action a selected pilot wants to take.
type FlyRequest struct {
	Action flight.PilotAction
}

// FlyHandler implements Fly(action): requires a selected pilot, writes the
// action into pilot_actions. No immediate response, per spec.md.
type FlyHandler struct {
	store ActionWriter
}

func NewFlyHandler(s ActionWriter) *FlyHandler {
	return &FlyHandler{store: s}
}

func (h *FlyHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	req, ok := request.(FlyRequest)
	if !ok {
		return nil, fmt.Errorf("session: unexpected request type %T", request)
	}

	sess, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	pilot, ok := sess.SelectedPilot()
	if !ok {
		return nil, &authorizationError{key: "no-pilot-selected"}
	}

	encoded, err := json.Marshal(req.Action)
	if err != nil {
		return nil, fmt.Errorf("session: encode action: %w", err)
	}
	field := strconv.FormatInt(int64(pilot.ID), 10)
	if err := h.store.HSet(ctx, store.KeyPilotActions, field, string(encoded)); err != nil {
		return nil, fmt.Errorf("session: write pilot action: %w", err)
	}
	return nil, nil
}

type authorizationError struct{ key string }

func (e *authorizationError) Error() string { return e.key }

// --- GetPilotInformation ---

// GetPilotInformationRequest asks for a pilot's public profile.
type GetPilotInformationRequest struct {
	PilotID flight.PilotID
}

// GetPilotInformationHandler implements GetPilotInformation(id).
type GetPilotInformationHandler struct {
	pilots PilotStore
}

func NewGetPilotInformationHandler(pilots PilotStore) *GetPilotInformationHandler {
	return &GetPilotInformationHandler{pilots: pilots}
}

func (h *GetPilotInformationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	req, ok := request.(GetPilotInformationRequest)
	if !ok {
		return nil, fmt.Errorf("session: unexpected request type %T", request)
	}

	pilot, err := h.pilots.LoadPilot(ctx, req.PilotID)
	if err != nil {
		return ErrorMessage{Key: "pilot not found"}, nil
	}
	return PilotSummary{ID: pilot.ID, Name: pilot.Name}, nil
}
