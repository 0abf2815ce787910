package casdoor

import (
	"context"
	"fmt"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/SAP-F-2025/learning-portal-service/internal/config"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

// casdoorAPI is the subset of the SDK client used here.
type casdoorAPI interface {
	AddUser(user *casdoorsdk.User) (bool, error)
	GetUser(name string) (*casdoorsdk.User, error)
	GetUserByUserId(userId string) (*casdoorsdk.User, error)
	DeleteUser(user *casdoorsdk.User) (bool, error)
}

// IdentityCasdoor creates portal accounts in a Casdoor organization.
type IdentityCasdoor struct {
	client casdoorAPI
	config config.CasdoorConfig
}

func NewIdentityCasdoor(cfg config.CasdoorConfig) *IdentityCasdoor {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return newIdentityCasdoor(client, cfg)
}

func newIdentityCasdoor(client casdoorAPI, cfg config.CasdoorConfig) *IdentityCasdoor {
	return &IdentityCasdoor{client: client, config: cfg}
}

// NewIdentityProvider returns the Casdoor provider when an endpoint is
// configured and the local provider otherwise.
func NewIdentityProvider(cfg config.CasdoorConfig) repositories.IdentityProvider {
	if cfg.Enabled() {
		return NewIdentityCasdoor(cfg)
	}
	return NewIdentityLocal()
}

func (p *IdentityCasdoor) Name() string { return "casdoor" }

func (p *IdentityCasdoor) CreateIdentity(ctx context.Context, spec repositories.IdentitySpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	user := &casdoorsdk.User{
		Owner:       p.config.Organization,
		Name:        spec.Username,
		DisplayName: spec.DisplayName,
		Email:       spec.Email,
		Password:    spec.Password,
		Type:        "normal-user",
		CreatedTime: time.Now().UTC().Format(time.RFC3339),
	}

	ok, err := p.client.AddUser(user)
	if err != nil {
		return "", fmt.Errorf("%w: add user: %v", repositories.ErrIdentityUnavailable, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: user %q was not created", repositories.ErrIdentityRejected, spec.Username)
	}

	// Casdoor assigns the id server-side; read it back.
	created, err := p.client.GetUser(spec.Username)
	if err != nil {
		return "", fmt.Errorf("%w: get user: %v", repositories.ErrIdentityUnavailable, err)
	}
	if created == nil {
		return "", fmt.Errorf("%w: created user %q not found", repositories.ErrIdentityUnavailable, spec.Username)
	}
	if created.Id != "" {
		return created.Id, nil
	}
	return fmt.Sprintf("%s/%s", created.Owner, created.Name), nil
}

func (p *IdentityCasdoor) DeleteIdentity(ctx context.Context, authID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	user, err := p.client.GetUserByUserId(authID)
	if err != nil {
		return fmt.Errorf("%w: get user: %v", repositories.ErrIdentityUnavailable, err)
	}
	if user == nil {
		return nil
	}

	if _, err := p.client.DeleteUser(user); err != nil {
		return fmt.Errorf("%w: delete user: %v", repositories.ErrIdentityUnavailable, err)
	}
	return nil
}
