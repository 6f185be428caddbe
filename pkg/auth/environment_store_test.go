package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentStoreRetrieve(t *testing.T) {
	t.Setenv("ASSOCFEED_USERNAME", "env-user")
	t.Setenv("ASSOCFEED_PASSWORD", "env-pass")

	store := NewEnvironmentStore()
	require.True(t, store.Exists())

	creds, err := store.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "env-user", creds.Username)
	assert.Equal(t, "env-pass", creds.Password)
}

func TestEnvironmentStoreMissing(t *testing.T) {
	t.Setenv("ASSOCFEED_USERNAME", "")
	t.Setenv("ASSOCFEED_PASSWORD", "")

	store := NewEnvironmentStore()
	assert.False(t, store.Exists())

	_, err := store.Retrieve()
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEnvironmentStoreIsReadOnly(t *testing.T) {
	store := NewEnvironmentStore()
	assert.ErrorIs(t, store.Store(&Credentials{Username: "u", Password: "p"}), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete(), ErrStoreUnavailable)
}

func TestManagerRejectsIncompleteCredentials(t *testing.T) {
	m := &Manager{stores: []CredentialStore{NewEnvironmentStore()}}

	assert.ErrorIs(t, m.Store(nil), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(&Credentials{Username: "u"}), ErrInvalidCredentials)
	assert.ErrorIs(t, m.Store(&Credentials{Password: "p"}), ErrInvalidCredentials)
}

func TestManagerFallsBackToEnvironment(t *testing.T) {
	t.Setenv("ASSOCFEED_USERNAME", "env-user")
	t.Setenv("ASSOCFEED_PASSWORD", "env-pass")

	m := &Manager{stores: []CredentialStore{NewEnvironmentStore()}}
	require.True(t, m.Exists())

	creds, err := m.Retrieve()
	require.NoError(t, err)
	assert.Equal(t, "env-user", creds.Username)
}
