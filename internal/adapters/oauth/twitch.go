// Package oauth builds provider login URLs for auth.URLBuilder. It does not
// implement the OAuth callback exchange itself (a bound HTTP endpoint,
// genuinely out of this core's scope) — only the outbound authorize URL a
// session needs to start the flow.
package oauth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cosmicverge/tickengine/internal/application/auth"
)

// TwitchURLBuilder implements auth.URLBuilder for the Twitch identity
// provider, grounded on khonsulabs/cosmicverge's authorization_url: a
// query-parameterized redirect to id.twitch.tv/oauth2/authorize with the
// installation id carried through as the OAuth state parameter.
type TwitchURLBuilder struct {
	authorizeURL string
	clientID     string
	redirectURI  string
}

// NewTwitchURLBuilder builds a URL builder for the given OAuth client
// registration and callback redirect URI.
func NewTwitchURLBuilder(clientID, redirectURI string) *TwitchURLBuilder {
	return &TwitchURLBuilder{
		authorizeURL: "https://id.twitch.tv/oauth2/authorize",
		clientID:     clientID,
		redirectURI:  redirectURI,
	}
}

// AuthenticationURL implements auth.URLBuilder.
func (b *TwitchURLBuilder) AuthenticationURL(_ context.Context, installationID auth.InstallationID, provider auth.Provider) (string, error) {
	if provider != auth.ProviderTwitch {
		return "", fmt.Errorf("oauth: unsupported provider %q", provider)
	}

	u, err := url.Parse(b.authorizeURL)
	if err != nil {
		return "", fmt.Errorf("oauth: parse authorize url: %w", err)
	}

	q := u.Query()
	q.Set("client_id", b.clientID)
	q.Set("scope", "openid")
	q.Set("response_type", "code")
	q.Set("redirect_uri", b.redirectURI)
	q.Set("state", string(installationID))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
