package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/SAP-F-2025/classroom-service/internal/config"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// ExternalIdentity is the profile an identity provider vouches for
type ExternalIdentity struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// IdentityProvider runs the OAuth authorization code flow
type IdentityProvider interface {
	// AuthCodeURL is where the browser goes to sign in; state comes back on the callback
	AuthCodeURL(state string) (string, error)
	Exchange(ctx context.Context, code, state string) (*ExternalIdentity, error)
}

type casdoorProvider struct {
	client      *casdoorsdk.Client
	redirectURL string
}

// NewCasdoorProvider returns nil when Casdoor is not configured
func NewCasdoorProvider(cfg config.CasdoorConfig) IdentityProvider {
	if !cfg.Enabled() {
		return nil
	}
	return &casdoorProvider{
		client: casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Certificate,
			cfg.Organization,
			cfg.Application,
		),
		redirectURL: cfg.RedirectURL,
	}
}

// AuthCodeURL swaps the SDK's fixed application-name state for the caller's
func (p *casdoorProvider) AuthCodeURL(state string) (string, error) {
	signin, err := url.Parse(p.client.GetSigninUrl(p.redirectURL))
	if err != nil {
		return "", fmt.Errorf("failed to build sign-in url: %w", err)
	}
	query := signin.Query()
	query.Set("state", state)
	signin.RawQuery = query.Encode()
	return signin.String(), nil
}

func (p *casdoorProvider) Exchange(ctx context.Context, code, state string) (*ExternalIdentity, error) {
	token, err := p.client.GetOAuthToken(code, state)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	claims, err := p.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify access token: %w", err)
	}

	identity := &ExternalIdentity{
		ID:        claims.User.Id,
		Email:     claims.User.Email,
		FirstName: claims.User.FirstName,
		LastName:  claims.User.LastName,
	}
	if identity.FirstName == "" && identity.LastName == "" {
		identity.FirstName = claims.User.DisplayName
	}
	return identity, nil
}
