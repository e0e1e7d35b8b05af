package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterIsIdempotentByName(t *testing.T) {
	r := New(nil)
	u1, err := r.Register("alice")
	require.NoError(t, err)

	u2, err := r.Register("alice")
	require.NoError(t, err)

	assert.Equal(t, u1.ID, u2.ID)
	assert.Equal(t, u1.APIKey, u2.APIKey)
}

func TestRegistry_AdminBootstrap(t *testing.T) {
	r := New(nil, WithAdminNames("root"))
	admin, err := r.Register("root")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, admin.Role)

	user, err := r.Register("regular")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, user.Role)
}

func TestRegistry_ByAPIKey(t *testing.T) {
	r := New(nil)
	u, err := r.Register("bob")
	require.NoError(t, err)

	found, ok := r.ByAPIKey(u.APIKey)
	require.True(t, ok)
	assert.Equal(t, u.ID, found.ID)

	_, ok = r.ByAPIKey("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Delete(t *testing.T) {
	r := New(nil)
	u, err := r.Register("carol")
	require.NoError(t, err)

	require.NoError(t, r.Delete(u.ID))
	_, ok := r.ByID(u.ID)
	assert.False(t, ok)

	err = r.Delete(u.ID)
	require.Error(t, err)
}
