package ws

import (
	"encoding/json"
	"fmt"

	"github.com/cosmicverge/tickengine/internal/application/auth"
	"github.com/cosmicverge/tickengine/internal/application/common"
	"github.com/cosmicverge/tickengine/internal/application/session"
)

// envelope is the tagged-union wire shape for inbound client messages:
// {"type": "...", "payload": {...}}. The payload schema depends on type.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// decodeRequest maps an inbound envelope onto the mediator request it
// names, so the transport never has to know how each request is handled.
func decodeRequest(raw []byte) (common.Request, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("ws: decode envelope: %w", err)
	}

	switch env.Type {
	case "AuthenticationUrl":
		var req auth.AuthenticationURLRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return nil, fmt.Errorf("ws: decode AuthenticationUrl payload: %w", err)
		}
		return req, nil
	case "SelectPilot":
		var req session.SelectPilotRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return nil, fmt.Errorf("ws: decode SelectPilot payload: %w", err)
		}
		return req, nil
	case "CreatePilot":
		var req session.CreatePilotRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return nil, fmt.Errorf("ws: decode CreatePilot payload: %w", err)
		}
		return req, nil
	case "Fly":
		var req session.FlyRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return nil, fmt.Errorf("ws: decode Fly payload: %w", err)
		}
		return req, nil
	case "GetPilotInformation":
		var req session.GetPilotInformationRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			return nil, fmt.Errorf("ws: decode GetPilotInformation payload: %w", err)
		}
		return req, nil
	default:
		return nil, fmt.Errorf("ws: unrecognized request type %q", env.Type)
	}
}

// encodeResponse wraps an outbound frame the same way, tagging it with its
// concrete Go type name so the client can dispatch on it.
func encodeResponse(frame any) ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Payload any    `json:"payload"`
	}{
		Type:    responseType(frame),
		Payload: frame,
	})
}

func responseType(frame any) string {
	switch frame.(type) {
	case session.Unauthenticated:
		return "Unauthenticated"
	case session.ServerStatus:
		return "ServerStatus"
	case session.Authenticated:
		return "Authenticated"
	case session.PilotChanged:
		return "PilotChanged"
	case session.SpaceUpdate:
		return "SpaceUpdate"
	case session.PilotSummary:
		return "PilotSummary"
	case session.ErrorMessage:
		return "ErrorMessage"
	case auth.AuthenticationURLResponse:
		return "AuthenticationUrlResponse"
	default:
		return fmt.Sprintf("%T", frame)
	}
}
