package identity

import (
	"context"
	"fmt"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/config"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// Identity is the authenticated caller as reported by the identity
// provider. UID is the provider's stable unique id and is the only key
// the service derives role records from.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Provider resolves a bearer token to the current authenticated identity.
// The core only reads the current identity; registration and the
// authentication protocol itself live entirely in the provider.
type Provider interface {
	CurrentIdentity(ctx context.Context, token string) (*Identity, error)
}

type casdoorProvider struct {
	client *casdoorsdk.Client
}

// NewCasdoorProvider creates a Provider backed by a Casdoor deployment.
func NewCasdoorProvider(cfg *config.Config) Provider {
	client := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
	return &casdoorProvider{client: client}
}

func (p *casdoorProvider) CurrentIdentity(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("missing bearer token")
	}

	claims, err := p.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity token: %w", err)
	}

	return &Identity{
		UID:         claims.User.Id,
		DisplayName: claims.User.DisplayName,
		Email:       claims.User.Email,
	}, nil
}

// StaticProvider returns a fixed identity for every token. Used in tests
// and local development without a Casdoor deployment.
type StaticProvider struct {
	Identity Identity
}

func (p *StaticProvider) CurrentIdentity(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("missing bearer token")
	}
	id := p.Identity
	return &id, nil
}
