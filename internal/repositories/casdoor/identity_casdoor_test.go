package casdoor

import (
	"context"
	"errors"
	"testing"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/learning-portal-service/internal/config"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type fakeCasdoor struct {
	users   map[string]*casdoorsdk.User
	addErr  error
	addOK   bool
	deleted []string
}

func newFakeCasdoor() *fakeCasdoor {
	return &fakeCasdoor{users: map[string]*casdoorsdk.User{}, addOK: true}
}

func (f *fakeCasdoor) AddUser(user *casdoorsdk.User) (bool, error) {
	if f.addErr != nil {
		return false, f.addErr
	}
	if !f.addOK {
		return false, nil
	}
	stored := *user
	stored.Id = "cd-" + user.Name
	f.users[user.Name] = &stored
	return true, nil
}

func (f *fakeCasdoor) GetUser(name string) (*casdoorsdk.User, error) {
	return f.users[name], nil
}

func (f *fakeCasdoor) GetUserByUserId(id string) (*casdoorsdk.User, error) {
	for _, u := range f.users {
		if u.Id == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeCasdoor) DeleteUser(user *casdoorsdk.User) (bool, error) {
	f.deleted = append(f.deleted, user.Id)
	delete(f.users, user.Name)
	return true, nil
}

func TestIdentityCasdoor_CreateAndDelete(t *testing.T) {
	fake := newFakeCasdoor()
	p := newIdentityCasdoor(fake, config.CasdoorConfig{Organization: "portal"})
	ctx := context.Background()

	id, err := p.CreateIdentity(ctx, repositories.IdentitySpec{
		Username: "ada", DisplayName: "Ada Lovelace", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "cd-ada", id)
	assert.Equal(t, "portal", fake.users["ada"].Owner)
	assert.Equal(t, "Ada Lovelace", fake.users["ada"].DisplayName)

	require.NoError(t, p.DeleteIdentity(ctx, id))
	assert.Equal(t, []string{"cd-ada"}, fake.deleted)

	// Unknown ids are ignored.
	require.NoError(t, p.DeleteIdentity(ctx, "missing"))
}

func TestIdentityCasdoor_Errors(t *testing.T) {
	ctx := context.Background()

	down := newFakeCasdoor()
	down.addErr = errors.New("connection refused")
	_, err := newIdentityCasdoor(down, config.CasdoorConfig{}).CreateIdentity(ctx, repositories.IdentitySpec{Username: "x"})
	assert.True(t, errors.Is(err, repositories.ErrIdentityUnavailable))

	refusing := newFakeCasdoor()
	refusing.addOK = false
	_, err = newIdentityCasdoor(refusing, config.CasdoorConfig{}).CreateIdentity(ctx, repositories.IdentitySpec{Username: "x"})
	assert.True(t, errors.Is(err, repositories.ErrIdentityRejected))
}

func TestNewIdentityProvider(t *testing.T) {
	assert.Equal(t, "local", NewIdentityProvider(config.CasdoorConfig{}).Name())
	assert.Equal(t, "casdoor", NewIdentityProvider(config.CasdoorConfig{Endpoint: "http://localhost:8000"}).Name())

	id, err := NewIdentityLocal().CreateIdentity(context.Background(), repositories.IdentitySpec{})
	require.NoError(t, err)
	assert.Len(t, id, 36)
}
