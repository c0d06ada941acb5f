package auth

import (
	"context"
	"fmt"

	"github.com/cosmicverge/tickengine/internal/application/common"
)

// Context keys for carrying the caller's installation id through a request.
type authContextKey int

const (
	installationIDKey authContextKey = iota + 1000
)

// WithInstallationID injects the calling session's installation id into ctx.
func WithInstallationID(ctx context.Context, id InstallationID) context.Context {
	return context.WithValue(ctx, installationIDKey, id)
}

// InstallationIDFromContext extracts the installation id a session request
// carries. Of the inbound request handlers only AuthenticationURLHandler
// reads it, since AuthenticationUrl binds to the caller's installation rather
// than to any argument in the request body.
func InstallationIDFromContext(ctx context.Context) (InstallationID, error) {
	id, ok := ctx.Value(installationIDKey).(InstallationID)
	if !ok || id == "" {
		return "", fmt.Errorf("auth: installation id not found in context")
	}
	return id, nil
}

// AuthenticationURLRequest is the mediator request backing the session
// layer's AuthenticationUrl(provider) call.
type AuthenticationURLRequest struct {
	Provider Provider
}

// AuthenticationURLResponse carries the minted login URL back to the caller.
type AuthenticationURLResponse struct {
	URL string
}

// AuthenticationURLHandler answers AuthenticationUrl requests by resolving
// the caller's installation id from context, ensuring an install record
// exists for it, and delegating URL minting to the external URLBuilder.
type AuthenticationURLHandler struct {
	installations InstallationStore
	urls          URLBuilder
}

// NewAuthenticationURLHandler builds a handler backed by the given
// installation store and URL builder.
func NewAuthenticationURLHandler(installations InstallationStore, urls URLBuilder) *AuthenticationURLHandler {
	return &AuthenticationURLHandler{installations: installations, urls: urls}
}

// Handle implements common.RequestHandler.
func (h *AuthenticationURLHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	req, ok := request.(AuthenticationURLRequest)
	if !ok {
		return nil, fmt.Errorf("auth: unexpected request type %T", request)
	}

	installationID, err := InstallationIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := h.installations.EnsureInstallation(ctx, installationID); err != nil {
		return nil, fmt.Errorf("auth: ensure installation %s: %w", installationID, err)
	}

	url, err := h.urls.AuthenticationURL(ctx, installationID, req.Provider)
	if err != nil {
		return nil, fmt.Errorf("auth: build authentication url for %s/%s: %w", installationID, req.Provider, err)
	}

	return AuthenticationURLResponse{URL: url}, nil
}
